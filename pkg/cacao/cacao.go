// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package cacao verifies Chain-Agnostic CApability Objects: SIWE-style
// payloads binding an identity key to a blockchain account, signed via
// EIP-191, EIP-1271 or EIP-6492.
package cacao

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// HeaderType is the only value a CACAO header's "t" field may carry.
const HeaderType = "eip4361"

// SignatureType distinguishes the three verification pipelines.
type SignatureType string

const (
	SignatureEIP191  SignatureType = "eip191"
	SignatureEIP1271 SignatureType = "eip1271"
	SignatureEIP6492 SignatureType = "eip6492"
)

// Header is the CACAO's type tag.
type Header struct {
	T string `json:"t"`
}

// IsValid reports whether the header carries the fixed eip4361 type.
func (h Header) IsValid() bool { return h.T == HeaderType }

// Payload is the SIWE-style message content that gets signed.
type Payload struct {
	Domain      string   `json:"domain"`
	Iss         string   `json:"iss"` // did:pkh:eip155:<chain>:<address>
	Statement   string   `json:"statement,omitempty"`
	Aud         string   `json:"aud"`
	Version     string   `json:"version"`
	Nonce       string   `json:"nonce"`
	IssuedAt    string   `json:"iat"`
	ExpiryTime  string   `json:"exp,omitempty"`
	NotBefore   string   `json:"nbf,omitempty"`
	RequestID   string   `json:"requestId,omitempty"`
	Resources   []string `json:"resources,omitempty"`
}

// Signature carries the signing method tag and raw signature bytes.
type Signature struct {
	T string `json:"t"`
	S string `json:"s"` // hex-encoded signature
}

// Cacao is the full {h,p,s} envelope.
type Cacao struct {
	H Header    `json:"h"`
	P Payload   `json:"p"`
	S Signature `json:"s"`
}

// Errors surfaced by the verification pipeline.
var (
	// ErrVerification means the signature did not validate — a definite
	// negative result, distinct from a transport/internal failure.
	ErrVerification = errors.New("cacao: signature verification failed")
	ErrInvalidHeader = errors.New("cacao: invalid header type")
	ErrInvalidPayload = errors.New("cacao: invalid payload")
	ErrUnsupportedSignatureType = errors.New("cacao: unsupported signature type")

	// ErrBytecodeNotConfigured is returned by VerifyEIP6492 when
	// ValidateSigOffchainBytecode has not been set to a verified
	// ValidateSigOffchain creation-bytecode artifact. It precedes any RPC
	// call: a host must configure this before eip6492 verification can run.
	ErrBytecodeNotConfigured = errors.New("cacao: eip6492 ValidateSigOffchainBytecode not configured")
)

// Eip1271InternalError wraps a transport/RPC failure encountered while
// calling isValidSignature, distinct from a verification failure.
type Eip1271InternalError struct{ Cause error }

func (e *Eip1271InternalError) Error() string { return fmt.Sprintf("cacao: eip1271 rpc error: %v", e.Cause) }
func (e *Eip1271InternalError) Unwrap() error  { return e.Cause }

// Eip6492InternalError wraps a transport/RPC failure encountered while
// calling the ValidateSigOffchain helper contract.
type Eip6492InternalError struct{ Cause error }

func (e *Eip6492InternalError) Error() string { return fmt.Sprintf("cacao: eip6492 rpc error: %v", e.Cause) }
func (e *Eip6492InternalError) Unwrap() error  { return e.Cause }

// RPCProvider resolves a CAIP-2 chain id (e.g. "eip155:1") to an RPC
// endpoint and performs the eth_call needed by the EIP-1271/6492 pipelines.
// Production code backs this with ethclient.Client; tests can point it at a
// local devnet.
type RPCProvider interface {
	// Call performs an eth_call against `to` with the given calldata and
	// returns the raw return bytes.
	Call(ctx context.Context, chainID, to string, data []byte) ([]byte, error)
}

// Verify runs the full CACAO verification pipeline: header validity, payload
// validity, and the signature-type-specific check.
func Verify(ctx context.Context, c Cacao, provider RPCProvider) error {
	if !c.H.IsValid() {
		return ErrInvalidHeader
	}
	if err := validatePayload(c.P); err != nil {
		return err
	}

	address, err := c.P.Address()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	message := c.P.SIWEMessage("Ethereum")
	sigBytes, err := decodeHexSignature(c.S.S)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch SignatureType(c.S.T) {
	case SignatureEIP191:
		return VerifyEIP191(sigBytes, address, message)
	case SignatureEIP1271:
		if provider == nil {
			return fmt.Errorf("cacao: eip1271 verification requires an RPC provider")
		}
		chainID, err := c.P.ChainID()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return VerifyEIP1271(ctx, provider, chainID, sigBytes, address, message)
	case SignatureEIP6492:
		if provider == nil {
			return fmt.Errorf("cacao: eip6492 verification requires an RPC provider")
		}
		chainID, err := c.P.ChainID()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return VerifyEIP6492(ctx, provider, chainID, sigBytes, address, message)
	default:
		return ErrUnsupportedSignatureType
	}
}

func validatePayload(p Payload) error {
	if p.Domain == "" || p.Iss == "" || p.Aud == "" || p.Version == "" || p.Nonce == "" || p.IssuedAt == "" {
		return ErrInvalidPayload
	}
	return nil
}

func decodeHexSignature(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}
