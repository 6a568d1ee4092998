// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package cacao

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTestBytecode sets ValidateSigOffchainBytecode for the duration of a
// test and restores whatever was there before. VerifyEIP6492's only
// dependency on the real EIP-6492 creation bytecode is that it gets
// concatenated in front of the ABI-encoded constructor args and sent
// verbatim to the provider; a stub value is enough to exercise that wiring
// without a live EVM to deploy the genuine contract against.
func withTestBytecode(t *testing.T, code []byte) {
	t.Helper()
	prev := ValidateSigOffchainBytecode
	ValidateSigOffchainBytecode = code
	t.Cleanup(func() { ValidateSigOffchainBytecode = prev })
}

func TestVerifyEIP6492_BytecodeNotConfigured(t *testing.T) {
	withTestBytecode(t, nil)

	p := &fakeProvider{result: []byte{magicByteEIP6492}}
	err := VerifyEIP6492(context.Background(), p, "eip155:1", []byte{1, 2, 3}, "0x0000000000000000000000000000000000000001", "hello")

	assert.ErrorIs(t, err, ErrBytecodeNotConfigured)
	assert.Equal(t, 0, p.calls, "must fail closed before ever reaching the provider")
}

func TestVerifyEIP6492_MagicByte(t *testing.T) {
	withTestBytecode(t, []byte{0xde, 0xad, 0xbe, 0xef})

	p := &fakeProvider{result: []byte{magicByteEIP6492, 0, 0}}
	err := VerifyEIP6492(context.Background(), p, "eip155:1", []byte{1, 2, 3}, "0x0000000000000000000000000000000000000001", "hello")

	assert.NoError(t, err)
	assert.Equal(t, "eip155:1", p.gotChainID)
	assert.Equal(t, "", p.gotTo, "counterfactual deployment calls the zero/empty address")
}

func TestVerifyEIP6492_WrongMagicByte(t *testing.T) {
	withTestBytecode(t, []byte{0xde, 0xad, 0xbe, 0xef})

	p := &fakeProvider{result: []byte{0x00}}
	err := VerifyEIP6492(context.Background(), p, "eip155:1", []byte{1, 2, 3}, "0x0000000000000000000000000000000000000001", "hello")
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerifyEIP6492_EmptyResult(t *testing.T) {
	withTestBytecode(t, []byte{0xde, 0xad, 0xbe, 0xef})

	p := &fakeProvider{result: nil}
	err := VerifyEIP6492(context.Background(), p, "eip155:1", []byte{1, 2, 3}, "0x0000000000000000000000000000000000000001", "hello")
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerifyEIP6492_ExecutionReverted(t *testing.T) {
	withTestBytecode(t, []byte{0xde, 0xad, 0xbe, 0xef})

	p := &fakeProvider{err: errors.New("execution reverted")}
	err := VerifyEIP6492(context.Background(), p, "eip155:1", []byte{1, 2, 3}, "0x0000000000000000000000000000000000000001", "hello")
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerifyEIP6492_TransportError(t *testing.T) {
	withTestBytecode(t, []byte{0xde, 0xad, 0xbe, 0xef})

	p := &fakeProvider{err: errors.New("dial tcp: connection refused")}
	err := VerifyEIP6492(context.Background(), p, "eip155:1", []byte{1, 2, 3}, "0x0000000000000000000000000000000000000001", "hello")

	var internalErr *Eip6492InternalError
	require.ErrorAs(t, err, &internalErr)
}

func TestEncodeValidateSigOffchainConstructor_PrependsBytecode(t *testing.T) {
	withTestBytecode(t, []byte{0xde, 0xad, 0xbe, 0xef})

	hash := [32]byte{0xAA}
	sig := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	calldata, err := encodeValidateSigOffchainConstructor("0x0000000000000000000000000000000000000001", hash, sig)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(calldata, ValidateSigOffchainBytecode))
	packed := calldata[len(ValidateSigOffchainBytecode):]
	// address head + bytes32 head + bytes-offset head + bytes length word + padded data
	assert.Equal(t, 32+32+32+32+32, len(packed))
}
