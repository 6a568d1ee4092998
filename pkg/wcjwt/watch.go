// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package wcjwt

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WatchAction identifies which watcher operation a token authorizes.
type WatchAction string

const (
	WatchActionRegister   WatchAction = "irn_watchRegister"
	WatchActionUnregister WatchAction = "irn_watchUnregister"
	WatchActionEvent      WatchAction = "irn_watchEvent"
)

// WatchType distinguishes a subscriber-side from a publisher-side watcher.
type WatchType string

const (
	WatchTypeSubscriber WatchType = "subscriber"
	WatchTypePublisher  WatchType = "publisher"
)

// WatchEventPayload describes a single message delivered to a registered
// webhook.
type WatchEventPayload struct {
	Status      string `json:"status"`
	Topic       string `json:"topic"`
	Message     string `json:"message"`
	PublishedAt int64  `json:"publishedAt"`
	Tag         uint32 `json:"tag"`
}

// watchClaims is the envelope shared by all three watcher claim flavors; it
// embeds BasicClaims plus the watcher-specific fields.
type watchClaims struct {
	BasicClaims
	Act   WatchAction        `json:"act"`
	Typ   WatchType          `json:"typ"`
	Whu   string             `json:"whu"`
	Evt   *WatchEventPayload `json:"evt,omitempty"`
}

// WatchRegisterClaims authorizes registering a webhook watcher.
type WatchRegisterClaims struct {
	BasicClaims
	Typ WatchType
	Whu string
}

// WatchUnregisterClaims authorizes removing a registered watcher.
type WatchUnregisterClaims struct {
	BasicClaims
	Typ WatchType
	Whu string
}

// WatchEventClaims signs a single webhook event delivery.
type WatchEventClaims struct {
	BasicClaims
	Typ   WatchType
	Whu   string
	Event WatchEventPayload
}

// EncodeWatchRegister signs a WatchRegisterClaims token.
func EncodeWatchRegister(priv ed25519.PrivateKey, c WatchRegisterClaims) (string, error) {
	return encodeWatch(priv, watchClaims{BasicClaims: c.BasicClaims, Act: WatchActionRegister, Typ: c.Typ, Whu: c.Whu})
}

// EncodeWatchUnregister signs a WatchUnregisterClaims token.
func EncodeWatchUnregister(priv ed25519.PrivateKey, c WatchUnregisterClaims) (string, error) {
	return encodeWatch(priv, watchClaims{BasicClaims: c.BasicClaims, Act: WatchActionUnregister, Typ: c.Typ, Whu: c.Whu})
}

// EncodeWatchEvent signs a WatchEventClaims token.
func EncodeWatchEvent(priv ed25519.PrivateKey, c WatchEventClaims) (string, error) {
	evt := c.Event
	return encodeWatch(priv, watchClaims{BasicClaims: c.BasicClaims, Act: WatchActionEvent, Typ: c.Typ, Whu: c.Whu, Evt: &evt})
}

func encodeWatch(priv ed25519.PrivateKey, claims watchClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return signed, nil
}

// DecodeWatchClaims parses a watcher token (after Verify has validated its
// signature and basic temporal claims) into its typed, action-specific
// shape.
func DecodeWatchClaims(token string) (act WatchAction, basic BasicClaims, typ WatchType, whu string, evt *WatchEventPayload, err error) {
	var c watchClaims
	if _, _, perr := jwt.NewParser().ParseUnverified(token, &c); perr != nil {
		err = fmt.Errorf("%w: %v", ErrSerialization, perr)
		return
	}
	return c.Act, c.BasicClaims, c.Typ, c.Whu, c.Evt, nil
}

// WatcherTokenTTL is the conventional lifetime of a watcher registration
// token.
const WatcherTokenTTL = 30 * 24 * time.Hour
