// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package signapi

import "encoding/json"

// Relay describes the transport a pairing or session wants to use; "irn" is
// the only protocol this module's relay client speaks.
type Relay struct {
	Protocol string `json:"protocol"`
	Data     string `json:"data,omitempty"`
}

// Metadata is the dapp/wallet self-description carried by Proposer and
// Controller.
type Metadata struct {
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icons       []string `json:"icons"`
	Name        string   `json:"name"`
}

// Proposer identifies the session-proposing side on wc_sessionPropose.
type Proposer struct {
	PublicKey string   `json:"publicKey"`
	Metadata  Metadata `json:"metadata"`
}

// WireNamespace is the CAIP-2-keyed, wire-shaped namespace entry used by
// both the propose (chains) and settle (accounts) request bodies.
type WireNamespace struct {
	Chains     []string        `json:"chains,omitempty"`
	Accounts   []string        `json:"accounts,omitempty"`
	Methods    []string        `json:"methods"`
	Events     []string        `json:"events"`
	Extensions []WireNamespace `json:"extensions,omitempty"`
}

// WireNamespaces is a namespace-key → WireNamespace map, as carried on the
// wire by both requiredNamespaces (propose) and namespaces (settle).
type WireNamespaces map[string]WireNamespace

// ToNamespaces converts a wire namespace map (propose-side, keyed by
// chains) into the validator's Namespaces shape.
func (w WireNamespaces) ToNamespaces() Namespaces {
	out := make(Namespaces, len(w))
	for key, ns := range w {
		out[key] = Namespace{
			Chains:     ns.Chains,
			Methods:    ns.Methods,
			Events:     ns.Events,
			Extensions: toExtensions(ns.Extensions),
		}
	}
	return out
}

func toExtensions(wire []WireNamespace) []Namespace {
	if len(wire) == 0 {
		return nil
	}
	out := make([]Namespace, len(wire))
	for i, ns := range wire {
		out[i] = Namespace{Chains: ns.Chains, Methods: ns.Methods, Events: ns.Events}
	}
	return out
}

// SessionProposeRequest is wc_sessionPropose's request payload.
type SessionProposeRequest struct {
	Relays             []Relay        `json:"relays"`
	Proposer           Proposer       `json:"proposer"`
	RequiredNamespaces WireNamespaces `json:"requiredNamespaces"`
}

// SessionProposeResponse is wc_sessionPropose's response payload.
type SessionProposeResponse struct {
	Relay              Relay  `json:"relay"`
	ResponderPublicKey string `json:"responderPublicKey"`
}

// Controller identifies the settling side on wc_sessionSettle.
type Controller struct {
	PublicKey string   `json:"publicKey"`
	Metadata  Metadata `json:"metadata"`
}

// SessionSettleRequest is wc_sessionSettle's request payload.
type SessionSettleRequest struct {
	Relay      Relay          `json:"relay"`
	Controller Controller     `json:"controller"`
	Namespaces WireNamespaces `json:"namespaces"`
	Expiry     uint64         `json:"expiry"`
}

// SessionUpdateRequest is wc_sessionUpdate's request payload.
type SessionUpdateRequest struct {
	Namespaces WireNamespaces `json:"namespaces"`
}

// SessionExtendRequest is wc_sessionExtend's request payload.
type SessionExtendRequest struct {
	Expiry uint64 `json:"expiry"`
}

// JSONRPCRequest is a blockchain-RPC method call embedded in
// wc_sessionRequest, e.g. eth_sendTransaction. Params is left opaque:
// parsing it is the concern of blockchain-RPC-aware code above this layer.
type JSONRPCRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Expiry *uint64         `json:"expiry,omitempty"`
}

// SessionRequestRequest is wc_sessionRequest's request payload.
type SessionRequestRequest struct {
	Request JSONRPCRequest `json:"request"`
	ChainID string         `json:"chainId"`
}

// SessionEvent is a single chain-originated event embedded in
// wc_sessionEvent, e.g. accountsChanged/chainChanged.
type SessionEvent struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// SessionEventRequest is wc_sessionEvent's request payload.
type SessionEventRequest struct {
	Event   SessionEvent `json:"event"`
	ChainID string       `json:"chainId"`
}

// SessionDeleteRequest is wc_sessionDelete's request payload: the reason a
// session or pairing was torn down.
type SessionDeleteRequest struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// SessionPingRequest is wc_sessionPing's request payload: always empty.
type SessionPingRequest struct{}
