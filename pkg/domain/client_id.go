// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See identifiers.go for the full license notice.

package domain

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// did:key multicodec constants for Ed25519 public keys.
const (
	didKeyBase      = "z"
	didKeyPrefix    = "did:key:" + didKeyBase
	multicodecByte0 = 0xED
	multicodecByte1 = 0x01
	ed25519KeyLen   = 32
)

// DecodedClientID is the raw 32-byte Ed25519 public key identifying a relay
// client.
type DecodedClientID [ed25519KeyLen]byte

// ClientIDFromPublicKey builds a DecodedClientID from a raw Ed25519 public
// key.
func ClientIDFromPublicKey(pub ed25519.PublicKey) (DecodedClientID, error) {
	var id DecodedClientID
	if len(pub) != ed25519KeyLen {
		return id, newIdentifierError("DecodedClientID", fmt.Sprintf("%s: expected %d bytes", ErrInvalidLength, ed25519KeyLen))
	}
	copy(id[:], pub)
	return id, nil
}

// PublicKey returns the wrapped bytes as a standard library public key.
func (d DecodedClientID) PublicKey() ed25519.PublicKey {
	out := make(ed25519.PublicKey, ed25519KeyLen)
	copy(out, d[:])
	return out
}

// Encode renders the canonical did:key string:
// did:key:z<base58btc([0xED,0x01] || pubkey)>.
func (d DecodedClientID) Encode() string {
	payload := make([]byte, 0, 2+ed25519KeyLen)
	payload = append(payload, multicodecByte0, multicodecByte1)
	payload = append(payload, d[:]...)
	return didKeyPrefix + base58.Encode(payload)
}

// String implements fmt.Stringer via Encode.
func (d DecodedClientID) String() string {
	return d.Encode()
}

// ParseClientID decodes a did:key string into its raw Ed25519 public key,
// validating the multicodec header.
func ParseClientID(s string) (DecodedClientID, error) {
	var id DecodedClientID
	if !strings.HasPrefix(s, didKeyPrefix) {
		return id, newIdentifierError("DecodedClientID", ErrInvalidBase+": missing did:key:z prefix")
	}
	encoded := strings.TrimPrefix(s, didKeyPrefix)
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return id, newIdentifierError("DecodedClientID", ErrInvalidEncoding+": "+err.Error())
	}
	if len(decoded) != 2+ed25519KeyLen {
		return id, newIdentifierError("DecodedClientID", fmt.Sprintf("%s: expected %d bytes, got %d", ErrInvalidLength, 2+ed25519KeyLen, len(decoded)))
	}
	if decoded[0] != multicodecByte0 || decoded[1] != multicodecByte1 {
		return id, newIdentifierError("DecodedClientID", fmt.Sprintf("%s: expected multicodec [0x%02x,0x%02x], got [0x%02x,0x%02x]", ErrInvalidHeader, multicodecByte0, multicodecByte1, decoded[0], decoded[1]))
	}
	copy(id[:], decoded[2:])
	return id, nil
}
