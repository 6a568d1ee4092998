// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package cacao

import (
	"fmt"
	"net/url"
	"strings"
)

// CAIP-10 `iss` field position indices after splitting on ':'.
// did : pkh : eip155 : <reference> : <address>
//  0     1      2            3            4
const (
	issPositionOfNamespace = 2
	issPositionOfReference = 3
	issPositionOfAddress   = 4
)

// Namespace returns the CAIP-2 namespace embedded in iss (e.g. "eip155").
func (p Payload) Namespace() (string, error) {
	parts := strings.Split(p.Iss, ":")
	if len(parts) <= issPositionOfNamespace {
		return "", fmt.Errorf("cacao: iss missing namespace segment: %q", p.Iss)
	}
	return parts[issPositionOfNamespace], nil
}

// ChainIDReference returns the chain reference embedded in iss (e.g. "1").
func (p Payload) ChainIDReference() (string, error) {
	parts := strings.Split(p.Iss, ":")
	if len(parts) <= issPositionOfReference {
		return "", fmt.Errorf("cacao: iss missing chain reference segment: %q", p.Iss)
	}
	return parts[issPositionOfReference], nil
}

// ChainID returns the full CAIP-2 chain id, "<namespace>:<reference>".
func (p Payload) ChainID() (string, error) {
	ns, err := p.Namespace()
	if err != nil {
		return "", err
	}
	ref, err := p.ChainIDReference()
	if err != nil {
		return "", err
	}
	return ns + ":" + ref, nil
}

// Address returns the account address embedded in iss.
func (p Payload) Address() (string, error) {
	parts := strings.Split(p.Iss, ":")
	if len(parts) <= issPositionOfAddress {
		return "", fmt.Errorf("cacao: iss missing address segment: %q", p.Iss)
	}
	return parts[issPositionOfAddress], nil
}

// CAIP10Address returns "<chainID>:<address>".
func (p Payload) CAIP10Address() (string, error) {
	chainID, err := p.ChainID()
	if err != nil {
		return "", err
	}
	addr, err := p.Address()
	if err != nil {
		return "", err
	}
	return chainID + ":" + addr, nil
}

const didKeyMethodPrefix = "did:key:"
const identityTokenQueryParam = "walletconnect_identity_token"

// IdentityKey extracts the did:key identity key bound to this CACAO, first
// inspecting `aud` (either directly, or as a URL carrying
// walletconnect_identity_token=<did:key> in its query string), then falling
// back to the first entry of `resources`.
func (p Payload) IdentityKey() (string, error) {
	if key, ok := identityKeyFromAudience(p.Aud); ok {
		return key, nil
	}
	if len(p.Resources) > 0 {
		if strings.HasPrefix(p.Resources[0], didKeyMethodPrefix) {
			return p.Resources[0], nil
		}
	}
	return "", fmt.Errorf("cacao: no did:key identity found in aud or resources")
}

func identityKeyFromAudience(aud string) (string, bool) {
	if strings.HasPrefix(aud, didKeyMethodPrefix) {
		return aud, true
	}

	u, err := url.Parse(aud)
	if err != nil {
		return "", false
	}
	token := u.Query().Get(identityTokenQueryParam)
	if token == "" {
		return "", false
	}
	if !strings.HasPrefix(token, didKeyMethodPrefix) {
		return "", false
	}
	return token, true
}

// SIWEMessage reconstructs the exact byte-for-byte SIWE message that was
// signed, for the given human chain name (e.g. "Ethereum").
func (p Payload) SIWEMessage(chainName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s wants you to sign in with your %s account:\n%s\n", p.Domain, chainName, mustAddress(p))

	if p.Statement != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Statement)
	}

	fmt.Fprintf(&b, "\nURI: %s\nVersion: %s\nChain ID: %s\nNonce: %s\nIssued At: %s",
		p.Aud, p.Version, mustChainIDReference(p), p.Nonce, p.IssuedAt)

	if p.ExpiryTime != "" {
		fmt.Fprintf(&b, "\nExpiration Time: %s", p.ExpiryTime)
	}
	if p.NotBefore != "" {
		fmt.Fprintf(&b, "\nNot Before: %s", p.NotBefore)
	}
	if p.RequestID != "" {
		fmt.Fprintf(&b, "\nRequest ID: %s", p.RequestID)
	}
	if len(p.Resources) > 0 {
		b.WriteString("\nResources:")
		for _, r := range p.Resources {
			fmt.Fprintf(&b, "\n- %s", r)
		}
	}

	return b.String()
}

func mustAddress(p Payload) string {
	addr, err := p.Address()
	if err != nil {
		return ""
	}
	return addr
}

func mustChainIDReference(p Payload) string {
	ref, err := p.ChainIDReference()
	if err != nil {
		return ""
	}
	return ref
}
