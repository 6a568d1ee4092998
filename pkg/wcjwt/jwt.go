// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package wcjwt builds and verifies the short-lived Ed25519 JWTs used for
// relay admission, watcher registration and webhook event signing.
package wcjwt

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wctool/relaycore/pkg/domain"
)

const (
	headerTyp = "JWT"
	headerAlg = "EdDSA"

	// DefaultLeeway is the default clock-skew tolerance applied to iat/exp
	// validation.
	DefaultLeeway = 120 * time.Second

	// DefaultTokenTTL is the default lifetime for a freshly minted
	// AuthToken.
	DefaultTokenTTL = time.Hour

	// RelayWebsocketAddress is the default relay endpoint, also the default
	// audience for auth tokens.
	RelayWebsocketAddress = "wss://relay.walletconnect.com"
)

var b64 = base64.RawURLEncoding

// Header is the fixed JWT header used by every token this package mints.
type Header struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

// DefaultHeader returns the canonical {typ:"JWT",alg:"EdDSA"} header.
func DefaultHeader() Header {
	return Header{Typ: headerTyp, Alg: headerAlg}
}

// IsValid reports whether the header matches the fixed shape this protocol
// requires.
func (h Header) IsValid() bool {
	return h.Typ == headerTyp && h.Alg == headerAlg
}

// BasicClaims is the minimal claim set every relay JWT carries. It
// implements jwt.Claims directly so golang-jwt/jwt/v5 can sign and parse it
// without an intermediate RegisteredClaims translation.
type BasicClaims struct {
	Iss string `json:"iss"`
	Sub string `json:"sub"`
	Aud string `json:"aud"`
	Iat int64  `json:"iat"`
	Exp *int64 `json:"exp,omitempty"`
}

func (c BasicClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Exp == nil {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(*c.Exp, 0)), nil
}

func (c BasicClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

func (c BasicClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c BasicClaims) GetIssuer() (string, error) { return c.Iss, nil }

func (c BasicClaims) GetSubject() (string, error) { return c.Sub, nil }

func (c BasicClaims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Aud == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Aud}, nil
}

// Error values of this package, mirroring the original implementation's
// JwtError variants. Verify returns ErrFormat, ErrHeader and ErrSerialization
// through Decode, and ErrSignature and ErrInvalidAudience itself. A base64
// failure surfaces as ErrSerialization, so ErrEncoding is not returned.
var (
	ErrFormat          = errors.New("jwt: malformed token format")
	ErrEncoding        = errors.New("jwt: base64 decoding failed")
	ErrHeader          = errors.New("jwt: invalid header")
	ErrSignature       = errors.New("jwt: signature verification failed")
	ErrInvalidAudience = errors.New("jwt: invalid audience")
	ErrSerialization   = errors.New("jwt: claims serialization failed")
)

// ExpiredError is returned when now - leeway > exp.
type ExpiredError struct{ Expiration int64 }

func (e *ExpiredError) Error() string { return fmt.Sprintf("jwt: token expired at %d", e.Expiration) }

// NotYetValidError is returned when now + leeway < iat.
type NotYetValidError struct {
	BasicIat       int64
	NowTimeLeeway  int64
	TimeLeewaySecs int64
}

func (e *NotYetValidError) Error() string {
	return fmt.Sprintf("jwt: token not yet valid: iat=%d now+leeway=%d leeway=%ds", e.BasicIat, e.NowTimeLeeway, e.TimeLeewaySecs)
}

// Encode builds the compact JWT form of claims, signed by priv via
// jwt.SigningMethodEdDSA.
func Encode(claims BasicClaims, priv ed25519.PrivateKey) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return signed, nil
}

// Decode splits and decodes a token's header and claims without verifying
// the signature or performing temporal validation.
func Decode(token string) (Header, BasicClaims, error) {
	var claims BasicClaims
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return Header{}, claims, ErrFormat
	}

	tok, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return Header{}, claims, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	h := Header{}
	if typ, ok := tok.Header["typ"].(string); ok {
		h.Typ = typ
	}
	if alg, ok := tok.Header["alg"].(string); ok {
		h.Alg = alg
	}
	if !h.IsValid() {
		return h, claims, ErrHeader
	}
	return h, claims, nil
}

// Verify parses the token, checks its Ed25519 signature against the public
// key embedded in the `iss` did:key, and performs temporal + audience
// validation with the given leeway against allowedAudiences. Claims
// validation is disabled at the library level so the exact
// Expired -> NotYetValid -> InvalidAudience ordering and the typed errors
// below are preserved.
func Verify(token string, allowedAudiences map[string]struct{}, leeway time.Duration) (BasicClaims, error) {
	h, _, err := Decode(token)
	if err != nil {
		return BasicClaims{}, err
	}
	_ = h

	var claims BasicClaims
	keyFunc := func(tok *jwt.Token) (interface{}, error) {
		c, ok := tok.Claims.(*BasicClaims)
		if !ok {
			return nil, ErrSignature
		}
		clientID, err := domain.ParseClientID(c.Iss)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSignature, err)
		}
		return clientID.PublicKey(), nil
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"EdDSA"}), jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(token, &claims, keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return claims, ErrSignature
		}
		return claims, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	if err := verifyBasicClaims(claims, allowedAudiences, leeway); err != nil {
		return claims, err
	}
	return claims, nil
}

func verifyBasicClaims(claims BasicClaims, allowedAudiences map[string]struct{}, leeway time.Duration) error {
	now := time.Now().Unix()
	leewaySecs := int64(leeway / time.Second)

	if claims.Exp != nil && now-leewaySecs > *claims.Exp {
		return &ExpiredError{Expiration: *claims.Exp}
	}
	if now+leewaySecs < claims.Iat {
		return &NotYetValidError{BasicIat: claims.Iat, NowTimeLeeway: now + leewaySecs, TimeLeewaySecs: leewaySecs}
	}
	if allowedAudiences != nil {
		if _, ok := allowedAudiences[claims.Aud]; !ok {
			return ErrInvalidAudience
		}
	}
	return nil
}
