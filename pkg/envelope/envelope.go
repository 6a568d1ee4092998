// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package envelope implements the type-0/type-1 ChaCha20-Poly1305 envelopes
// carried inside pairing and session messages, plus the X25519+HKDF session
// key derivation that produces the symmetric keys they use.
package envelope

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/wctool/relaycore/internal/metrics"
)

// Envelope type bytes.
const (
	Type0 byte = 0x00
	Type1 byte = 0x01

	nonceLen  = 12
	pubKeyLen = 32
	symKeyLen = 32
)

// Errors returned while parsing or decrypting an envelope.
var (
	ErrBase64Decode           = errors.New("envelope: base64 decoding failed")
	ErrDecryption             = errors.New("envelope: AEAD decryption failed")
	ErrEncryption             = errors.New("envelope: AEAD encryption failed")
	ErrSymKeyLen              = errors.New("envelope: symmetric key must be 32 bytes")
	ErrTooShort               = errors.New("envelope: truncated envelope bytes")
	ErrUnsupportedEnvelopeType = errors.New("envelope: unsupported envelope type byte")
	ErrUnexpectedEnvelopeType = errors.New("envelope: unexpected envelope type")
)

// Decoded is the parsed, not-yet-decrypted form of an envelope.
type Decoded struct {
	Type      byte
	SenderPub []byte // only set for Type1
	Nonce     []byte
	Sealed    []byte // ciphertext || tag
}

// Encrypt seals plaintext with symKey under ChaCha20-Poly1305 (empty AAD),
// producing the base64-standard-encoded type-0 envelope:
// 0x00 || nonce[12] || ciphertext || tag[16].
func Encrypt(plaintext, symKey []byte) (string, error) {
	return encrypt(Type0, nil, plaintext, symKey)
}

// EncryptType1 is Encrypt's type-1 counterpart, prepending the sender's
// ephemeral public key ahead of the nonce:
// 0x01 || sender_pub[32] || nonce[12] || ciphertext || tag[16].
func EncryptType1(plaintext, symKey, senderPub []byte) (string, error) {
	if len(senderPub) != pubKeyLen {
		return "", fmt.Errorf("envelope: sender public key must be %d bytes", pubKeyLen)
	}
	return encrypt(Type1, senderPub, plaintext, symKey)
}

func encrypt(envType byte, senderPub, plaintext, symKey []byte) (string, error) {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("encrypt", "chacha20poly1305").Observe(time.Since(start).Seconds())
	}()

	if len(symKey) != symKeyLen {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", ErrSymKeyLen
	}
	aead, err := chacha20poly1305.New(symKey)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	metrics.CryptoOperations.WithLabelValues("encrypt", "chacha20poly1305").Inc()

	out := make([]byte, 0, 1+len(senderPub)+nonceLen+len(sealed))
	out = append(out, envType)
	out = append(out, senderPub...)
	out = append(out, nonce...)
	out = append(out, sealed...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// ParseDecoded base64-decodes an envelope and splits it into its
// type/sender-pub/nonce/sealed components without decrypting.
func ParseDecoded(encoded string) (Decoded, error) {
	var d Decoded
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return d, ErrBase64Decode
	}
	if len(raw) < 1 {
		return d, ErrTooShort
	}

	d.Type = raw[0]
	rest := raw[1:]

	switch d.Type {
	case Type0:
		if len(rest) < nonceLen {
			return d, ErrTooShort
		}
		d.Nonce = rest[:nonceLen]
		d.Sealed = rest[nonceLen:]
	case Type1:
		if len(rest) < pubKeyLen+nonceLen {
			return d, ErrTooShort
		}
		d.SenderPub = rest[:pubKeyLen]
		d.Nonce = rest[pubKeyLen : pubKeyLen+nonceLen]
		d.Sealed = rest[pubKeyLen+nonceLen:]
	default:
		return d, ErrUnsupportedEnvelopeType
	}
	return d, nil
}

// DecryptType0 decodes and decrypts a type-0 envelope, rejecting a type-1
// envelope with ErrUnexpectedEnvelopeType.
func DecryptType0(encoded string, symKey []byte) ([]byte, error) {
	d, err := ParseDecoded(encoded)
	if err != nil {
		return nil, err
	}
	if d.Type != Type0 {
		return nil, ErrUnexpectedEnvelopeType
	}
	return decrypt(d, symKey)
}

// DecryptType1 decodes and decrypts a type-1 envelope, returning the
// embedded sender public key alongside the plaintext.
func DecryptType1(encoded string, symKey []byte) (plaintext, senderPub []byte, err error) {
	d, err := ParseDecoded(encoded)
	if err != nil {
		return nil, nil, err
	}
	if d.Type != Type1 {
		return nil, nil, ErrUnexpectedEnvelopeType
	}
	plaintext, err = decrypt(d, symKey)
	return plaintext, d.SenderPub, err
}

func decrypt(d Decoded, symKey []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("decrypt", "chacha20poly1305").Observe(time.Since(start).Seconds())
	}()

	if len(symKey) != symKeyLen {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, ErrSymKeyLen
	}
	aead, err := chacha20poly1305.New(symKey)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	plaintext, err := aead.Open(nil, d.Nonce, d.Sealed, nil)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, ErrDecryption
	}
	metrics.CryptoOperations.WithLabelValues("decrypt", "chacha20poly1305").Inc()
	return plaintext, nil
}
