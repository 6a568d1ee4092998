// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package cacao

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// eip191Bytes prefixes message the way personal_sign / EIP-191 does:
// "\x19Ethereum Signed Message:\n<len><message>".
func eip191Bytes(message string) []byte {
	return []byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message))
}

// VerifyEIP191 recovers the signer of message from signature (a 65-byte
// r||s||v signature, v in {0,1,27,28}) via Keccak256 + ECDSA recovery, and
// compares the recovered address (case-insensitively) to address.
func VerifyEIP191(signature []byte, address, message string) error {
	if len(signature) != 65 {
		return ErrVerification
	}

	hash := crypto.Keccak256(eip191Bytes(message))

	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return ErrVerification
	}
	recovered := crypto.PubkeyToAddress(*pubKey)

	want := strings.ToLower(strings.TrimPrefix(address, "0x"))
	got := strings.ToLower(strings.TrimPrefix(recovered.Hex(), "0x"))
	if want != got {
		return ErrVerification
	}
	return nil
}
