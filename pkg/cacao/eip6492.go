// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package cacao

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// magicByteEIP6492 is the single byte ValidateSigOffchain returns on
// success.
const magicByteEIP6492 byte = 0x01

// ValidateSigOffchainBytecode is the creation bytecode of the
// constructor-only ValidateSigOffchain(address signer, bytes32 hash, bytes
// signature) helper contract from EIP-6492's reference implementation
// (spec.md: "the deploy-then-call helper's creation bytecode is embedded as
// a build artifact"). It is a package variable rather than a compiled-in
// constant: a host application sets it once at startup, typically via
// go:embed of the bytecode file the sibling Solidity project's forge build
// produces (`Eip6492.sol/ValidateSigOffchain.bytecode` in the original
// implementation), so this package never ships a guessed or stale value.
// VerifyEIP6492 fails closed with ErrBytecodeNotConfigured until it is set.
var ValidateSigOffchainBytecode []byte

// VerifyEIP6492 concatenates the ValidateSigOffchain creation bytecode with
// its ABI-encoded constructor arguments and performs an eth_call against the
// zero address (counterfactual deployment), expecting the returned first
// byte to equal the EIP-6492 magic byte.
func VerifyEIP6492(ctx context.Context, provider RPCProvider, chainID string, signature []byte, address, message string) error {
	if len(ValidateSigOffchainBytecode) == 0 {
		return ErrBytecodeNotConfigured
	}

	hash := crypto.Keccak256Hash(eip191Bytes(message))

	calldata, err := encodeValidateSigOffchainConstructor(address, hash, signature)
	if err != nil {
		return &Eip6492InternalError{Cause: err}
	}

	result, err := provider.Call(ctx, chainID, "", calldata)
	if err != nil {
		if strings.Contains(err.Error(), "execution reverted") {
			return ErrVerification
		}
		return &Eip6492InternalError{Cause: err}
	}

	if len(result) == 0 || result[0] != magicByteEIP6492 {
		return ErrVerification
	}
	return nil
}

func encodeValidateSigOffchainConstructor(signerAddr string, hash [32]byte, signature []byte) ([]byte, error) {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		return nil, err
	}
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{{Type: addressType}, {Type: bytes32Type}, {Type: bytesType}}
	signer := common.HexToAddress(signerAddr)

	packed, err := args.Pack(signer, hash, signature)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(ValidateSigOffchainBytecode)+len(packed))
	out = append(out, ValidateSigOffchainBytecode...)
	out = append(out, packed...)
	return out, nil
}
