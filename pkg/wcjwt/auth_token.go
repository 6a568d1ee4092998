// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package wcjwt

import (
	"crypto/ed25519"
	"time"

	"github.com/wctool/relaycore/pkg/domain"
)

// AuthToken is a builder for the basic relay-admission JWT.
type AuthToken struct {
	sub string
	aud string
	iat *time.Time
	ttl *time.Duration
}

// NewAuthToken starts a builder for the given subject.
func NewAuthToken(sub string) *AuthToken {
	return &AuthToken{sub: sub}
}

// Aud overrides the audience (defaults to RelayWebsocketAddress).
func (t *AuthToken) Aud(aud string) *AuthToken {
	t.aud = aud
	return t
}

// Iat overrides the issued-at time (defaults to now).
func (t *AuthToken) Iat(iat time.Time) *AuthToken {
	t.iat = &iat
	return t
}

// TTL overrides the token lifetime (defaults to DefaultTokenTTL).
func (t *AuthToken) TTL(ttl time.Duration) *AuthToken {
	t.ttl = &ttl
	return t
}

// AsJWT signs the token with priv, deriving the iss did:key from the
// matching public key.
func (t *AuthToken) AsJWT(priv ed25519.PrivateKey) (string, error) {
	iat := time.Now()
	if t.iat != nil {
		iat = *t.iat
	}
	ttl := DefaultTokenTTL
	if t.ttl != nil {
		ttl = *t.ttl
	}
	aud := RelayWebsocketAddress
	if t.aud != "" {
		aud = t.aud
	}

	return EncodeAuthToken(priv, t.sub, aud, iat, ttl)
}

// EncodeAuthToken mints a basic JWT for sub/aud/iat/ttl, signed by priv.
func EncodeAuthToken(priv ed25519.PrivateKey, sub, aud string, iat time.Time, ttl time.Duration) (string, error) {
	clientID, err := domain.ClientIDFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}

	exp := iat.Add(ttl).Unix()
	claims := BasicClaims{
		Iss: clientID.Encode(),
		Sub: sub,
		Aud: aud,
		Iat: iat.Unix(),
		Exp: &exp,
	}
	return Encode(claims, priv)
}
