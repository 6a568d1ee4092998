// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package cacao

import (
	"context"
	"encoding/binary"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// magicValueEIP1271 is the 4-byte return value isValidSignature must yield
// on success.
const magicValueEIP1271 uint32 = 0x1626ba7e

var isValidSignatureSelector = crypto.Keccak256([]byte("isValidSignature(bytes32,bytes)"))[:4]

// VerifyEIP1271 calls isValidSignature(hash, signature) on the contract at
// address over provider, and checks the returned selector against the
// EIP-1271 magic value.
func VerifyEIP1271(ctx context.Context, provider RPCProvider, chainID string, signature []byte, address, message string) error {
	hash := crypto.Keccak256Hash(eip191Bytes(message))

	data, err := encodeIsValidSignatureCall(hash, signature)
	if err != nil {
		return &Eip1271InternalError{Cause: err}
	}

	result, err := provider.Call(ctx, chainID, address, data)
	if err != nil {
		if strings.Contains(err.Error(), "execution reverted") {
			return ErrVerification
		}
		return &Eip1271InternalError{Cause: err}
	}

	if len(result) < 4 {
		return ErrVerification
	}
	if binary.BigEndian.Uint32(result[:4]) != magicValueEIP1271 {
		return ErrVerification
	}
	return nil
}

func encodeIsValidSignatureCall(hash [32]byte, signature []byte) ([]byte, error) {
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, err
	}
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		return nil, err
	}
	args := abi.Arguments{{Type: bytes32Type}, {Type: bytesType}}
	packed, err := args.Pack(hash, signature)
	if err != nil {
		return nil, err
	}

	call := make([]byte, 0, 4+len(packed))
	call = append(call, isValidSignatureSelector...)
	call = append(call, packed...)
	return call, nil
}
