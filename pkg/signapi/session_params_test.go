// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package signapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireNamespaces_ToNamespaces(t *testing.T) {
	wire := WireNamespaces{
		"eip155": {
			Chains:  []string{"eip155:1", "eip155:137"},
			Methods: []string{"eth_sendTransaction"},
			Events:  []string{"accountsChanged"},
			Extensions: []WireNamespace{
				{Chains: []string{"eip155:10"}, Methods: []string{"eth_sign"}, Events: []string{"chainChanged"}},
			},
		},
	}

	got := wire.ToNamespaces()
	require.Contains(t, got, "eip155")
	ns := got["eip155"]
	assert.Equal(t, []string{"eip155:1", "eip155:137"}, ns.Chains)
	assert.Equal(t, []string{"eth_sendTransaction"}, ns.Methods)
	require.Len(t, ns.Extensions, 1)
	assert.Equal(t, []string{"eip155:10"}, ns.Extensions[0].Chains)
}

func TestWireNamespaces_ToNamespaces_NoExtensions(t *testing.T) {
	wire := WireNamespaces{"eip155": {Chains: []string{"eip155:1"}}}
	got := wire.ToNamespaces()
	assert.Nil(t, got["eip155"].Extensions)
}

func TestSessionProposeRequest_JSONRoundTrip(t *testing.T) {
	req := SessionProposeRequest{
		Relays:   []Relay{{Protocol: "irn"}},
		Proposer: Proposer{PublicKey: "abcd", Metadata: Metadata{Name: "dapp", URL: "https://example.org"}},
		RequiredNamespaces: WireNamespaces{
			"eip155": {Chains: []string{"eip155:1"}, Methods: []string{"personal_sign"}, Events: []string{"accountsChanged"}},
		},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded SessionProposeRequest
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, req, decoded)
}

func TestSessionRequestRequest_OpaqueParams(t *testing.T) {
	raw := `{"request":{"method":"eth_sendTransaction","params":[{"from":"0x1"}]},"chainId":"eip155:1"}`

	var decoded SessionRequestRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "eth_sendTransaction", decoded.Request.Method)
	assert.Equal(t, "eip155:1", decoded.ChainID)
	assert.JSONEq(t, `[{"from":"0x1"}]`, string(decoded.Request.Params))
}
