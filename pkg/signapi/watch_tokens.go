// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package signapi

import (
	"crypto/ed25519"
	"time"

	"github.com/wctool/relaycore/pkg/wcjwt"
)

// WatchRegisterOptions configures BuildWatchRegisterToken.
type WatchRegisterOptions struct {
	Issuer     string
	ClientID   string
	WebhookURL string
	Publisher  bool          // false registers a subscriber-side watcher
	TTL        time.Duration // defaults to wcjwt.WatcherTokenTTL when zero
}

// BuildWatchRegisterToken mints an irn_watchRegister-authorizing JWT for a
// webhook watcher, signed with priv.
func BuildWatchRegisterToken(priv ed25519.PrivateKey, opts WatchRegisterOptions) (string, error) {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = wcjwt.WatcherTokenTTL
	}
	now := time.Now()
	exp := now.Add(ttl).Unix()

	return wcjwt.EncodeWatchRegister(priv, wcjwt.WatchRegisterClaims{
		BasicClaims: wcjwt.BasicClaims{Iss: opts.Issuer, Sub: opts.ClientID, Aud: opts.Issuer, Iat: now.Unix(), Exp: &exp},
		Typ:         watchType(opts.Publisher),
		Whu:         opts.WebhookURL,
	})
}

// WatchUnregisterOptions configures BuildWatchUnregisterToken.
type WatchUnregisterOptions struct {
	Issuer     string
	ClientID   string
	WebhookURL string
	Publisher  bool
}

// BuildWatchUnregisterToken mints an irn_watchUnregister-authorizing JWT.
func BuildWatchUnregisterToken(priv ed25519.PrivateKey, opts WatchUnregisterOptions) (string, error) {
	now := time.Now()
	exp := now.Add(5 * time.Minute).Unix()

	return wcjwt.EncodeWatchUnregister(priv, wcjwt.WatchUnregisterClaims{
		BasicClaims: wcjwt.BasicClaims{Iss: opts.Issuer, Sub: opts.ClientID, Aud: opts.Issuer, Iat: now.Unix(), Exp: &exp},
		Typ:         watchType(opts.Publisher),
		Whu:         opts.WebhookURL,
	})
}

// WatchEventOptions configures BuildWatchEventToken.
type WatchEventOptions struct {
	Issuer     string
	ClientID   string
	WebhookURL string
	Publisher  bool
	Event      wcjwt.WatchEventPayload
}

// BuildWatchEventToken mints the token a relay attaches to a single webhook
// delivery, binding it to the specific message being forwarded.
func BuildWatchEventToken(priv ed25519.PrivateKey, opts WatchEventOptions) (string, error) {
	now := time.Now()
	exp := now.Add(5 * time.Minute).Unix()

	return wcjwt.EncodeWatchEvent(priv, wcjwt.WatchEventClaims{
		BasicClaims: wcjwt.BasicClaims{Iss: opts.Issuer, Sub: opts.ClientID, Aud: opts.Issuer, Iat: now.Unix(), Exp: &exp},
		Typ:         watchType(opts.Publisher),
		Whu:         opts.WebhookURL,
		Event:       opts.Event,
	})
}

func watchType(publisher bool) wcjwt.WatchType {
	if publisher {
		return wcjwt.WatchTypePublisher
	}
	return wcjwt.WatchTypeSubscriber
}
