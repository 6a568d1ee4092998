// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package signapi implements the Sign API layer: pairing URI parsing,
// session RPC payloads with per-method IRN metadata, namespace validation,
// and the responder-side session-establishment state machine.
package signapi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// Errors returned while parsing a pairing URI, mirroring the original
// implementation's ParseError variants.
var (
	ErrUnexpectedProtocol    = errors.New("signapi: unexpected pairing URI protocol")
	ErrInvalidTopicAndVersion = errors.New("signapi: failed to parse topic and version")
	ErrRelayProtocolNotFound = errors.New("signapi: relay-protocol parameter not found")
	ErrKeyNotFound           = errors.New("signapi: symKey parameter not found")
	ErrInvalidKey            = errors.New("signapi: failed to parse symKey as hex")
)

// UnexpectedParameterError is returned when a pairing URI carries a query
// parameter outside the known set (relay-protocol, symKey, relay-data).
type UnexpectedParameterError struct {
	Key   string
	Value string
}

func (e *UnexpectedParameterError) Error() string {
	return fmt.Sprintf("signapi: unexpected pairing URI parameter %q=%q", e.Key, e.Value)
}

var pairingPathPattern = regexp.MustCompile(`^(?P<topic>[\w-]+)@(?P<version>\d+)$`)

// PairingParams carries the relay-protocol/symKey/relay-data query
// parameters of a pairing URI.
type PairingParams struct {
	RelayProtocol string
	SymKey        []byte
	RelayData     string // empty when absent
}

// Pairing is a parsed `wc:` pairing URI, per EIP-1328.
type Pairing struct {
	Topic   string
	Version string
	Params  PairingParams
}

// ParsePairing parses a `wc:<topic>@<version>?relay-protocol=...&symKey=...`
// URI. Rejects a non-"wc" scheme, a malformed topic/version path segment, a
// missing relay-protocol or symKey, a non-hex symKey, and any unrecognized
// query parameter.
func ParsePairing(raw string) (Pairing, error) {
	var p Pairing

	u, err := url.Parse(raw)
	if err != nil {
		return p, fmt.Errorf("signapi: %w", err)
	}
	if u.Scheme != "wc" {
		return p, fmt.Errorf("%w: %q", ErrUnexpectedProtocol, u.Scheme)
	}

	topic, version, err := parseTopicAndVersion(u.Opaque)
	if err != nil {
		return p, err
	}

	params, err := parsePairingParams(u)
	if err != nil {
		return p, err
	}

	p.Topic = topic
	p.Version = version
	p.Params = params
	return p, nil
}

func parseTopicAndVersion(path string) (topic, version string, err error) {
	matches := pairingPathPattern.FindStringSubmatch(path)
	if matches == nil {
		return "", "", ErrInvalidTopicAndVersion
	}
	topicIdx := pairingPathPattern.SubexpIndex("topic")
	versionIdx := pairingPathPattern.SubexpIndex("version")
	return matches[topicIdx], matches[versionIdx], nil
}

func parsePairingParams(u *url.URL) (PairingParams, error) {
	var params PairingParams
	var haveRelayProtocol, haveSymKey bool

	query := u.Query()
	for key, values := range query {
		value := ""
		if len(values) > 0 {
			value = values[0]
		}
		switch key {
		case "relay-protocol":
			params.RelayProtocol = value
			haveRelayProtocol = true
		case "symKey":
			keyBytes, err := hex.DecodeString(value)
			if err != nil {
				return params, fmt.Errorf("%w: %v", ErrInvalidKey, err)
			}
			params.SymKey = keyBytes
			haveSymKey = true
		case "relay-data":
			params.RelayData = value
		default:
			return params, &UnexpectedParameterError{Key: key, Value: value}
		}
	}

	if !haveRelayProtocol {
		return params, ErrRelayProtocolNotFound
	}
	if !haveSymKey {
		return params, ErrKeyNotFound
	}
	return params, nil
}
