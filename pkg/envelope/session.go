// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package envelope

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/wctool/relaycore/pkg/domain"
)

// SessionKey is the result of a session-bootstrap Diffie-Hellman: a
// 32-byte symmetric key plus the ephemeral public key the generating side
// must publish to the peer.
type SessionKey struct {
	SymKey    [32]byte
	PublicKey [32]byte
}

// Topic derives the session topic from this key's symmetric key:
// lowercase_hex(SHA-256(symkey)).
func (s SessionKey) Topic() domain.Topic {
	return domain.TopicFromSymKey(s.SymKey[:])
}

// DeriveSessionKey samples a fresh X25519 ephemeral keypair, computes the
// ECDH shared secret against peerPublicKey, and feeds it into
// HKDF-SHA256 (no salt, empty info) to produce the 32-byte session symmetric
// key. The ephemeral private key is never returned or retained past this
// call.
func DeriveSessionKey(peerPublicKey [32]byte) (SessionKey, error) {
	var out SessionKey

	curve := ecdh.X25519()
	priv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return out, fmt.Errorf("envelope: ephemeral key generation failed: %w", err)
	}

	peerKey, err := curve.NewPublicKey(peerPublicKey[:])
	if err != nil {
		return out, fmt.Errorf("envelope: invalid peer public key: %w", err)
	}

	shared, err := priv.ECDH(peerKey)
	if err != nil {
		return out, fmt.Errorf("envelope: ECDH failed: %w", err)
	}

	symKey, err := expandHKDF(shared)
	if err != nil {
		return out, err
	}

	copy(out.SymKey[:], symKey)
	copy(out.PublicKey[:], priv.PublicKey().Bytes())
	return out, nil
}

// expandHKDF runs HKDF-SHA256 over ikm with no salt and empty info,
// producing a 32-byte output — exactly the derivation the original Sign API
// session bootstrap uses.
func expandHKDF(ikm []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, nil, nil)
	out := make([]byte, symKeyLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("envelope: HKDF expand failed: %w", err)
	}
	return out, nil
}
