// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package useragent parses and formats the relay's user-agent grammar:
// <protocol>/<sdk>/<os>[/<id>], e.g. "wc-2/js-1.8.0/browser-chrome-115/browser".
package useragent

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmpty is returned when parsing an empty user-agent string.
var ErrEmpty = errors.New("useragent: empty user agent string")

const (
	delimiter     = "/"
	protocolDelim = "-"
	sdkDelim      = "-"
	osDelim       = "-"
	appIDDelim    = ":"
	walletConnect = "wc"
)

// ProtocolKind distinguishes the known "wc" protocol name from anything
// else, captured verbatim rather than rejected.
type ProtocolKind struct {
	Known   bool
	Unknown string
}

func (k ProtocolKind) String() string {
	if k.Known {
		return walletConnect
	}
	return k.Unknown
}

func parseProtocolKind(s string) (ProtocolKind, error) {
	if s == "" {
		return ProtocolKind{}, errProtocol
	}
	if s == walletConnect {
		return ProtocolKind{Known: true}, nil
	}
	return ProtocolKind{Unknown: s}, nil
}

// Protocol is the "<kind>-<version>" segment.
type Protocol struct {
	Kind    ProtocolKind
	Version uint32
}

func (p Protocol) String() string {
	return p.Kind.String() + protocolDelim + strconv.FormatUint(uint64(p.Version), 10)
}

func parseProtocol(s string) (Protocol, error) {
	if s == "" {
		return Protocol{}, errProtocol
	}
	kindPart, versionPart, ok := strings.Cut(s, protocolDelim)
	if !ok {
		return Protocol{}, errProtocol
	}
	kind, err := parseProtocolKind(kindPart)
	if err != nil {
		return Protocol{}, err
	}
	version, err := strconv.ParseUint(versionPart, 10, 32)
	if err != nil {
		return Protocol{}, errProtocol
	}
	return Protocol{Kind: kind, Version: uint32(version)}, nil
}

// SDKLanguage enumerates the known SDK implementation languages.
type SDKLanguage string

const (
	SDKJs     SDKLanguage = "js"
	SDKSwift  SDKLanguage = "swift"
	SDKKotlin SDKLanguage = "kotlin"
	SDKCSharp SDKLanguage = "csharp"
	SDKRust   SDKLanguage = "rust"
)

func parseSDKLanguage(s string) (SDKLanguage, error) {
	if s == "" {
		return "", errSdk
	}
	return SDKLanguage(s), nil // unknown languages pass through verbatim
}

// SDK is the "<language>-<version>" segment.
type SDK struct {
	Language SDKLanguage
	Version  string
}

func (s SDK) String() string {
	return string(s.Language) + sdkDelim + s.Version
}

func parseSDK(s string) (SDK, error) {
	if s == "" {
		return SDK{}, errSdk
	}
	langPart, versionPart, ok := strings.Cut(s, sdkDelim)
	if !ok {
		return SDK{}, errSdk
	}
	lang, err := parseSDKLanguage(langPart)
	if err != nil {
		return SDK{}, err
	}
	return SDK{Language: lang, Version: versionPart}, nil
}

var osPattern = regexp.MustCompile(`^([^-]+)(-(.*?))?(-(([\d]+)(\.([\d]+))?(\.([\d]+))?))$`)

// OSInfo describes the reporting platform: its family, an optional embedded
// UA family (e.g. a WebView host), and an optional version string.
type OSInfo struct {
	Family   string
	UAFamily string // empty when absent
	Version  string // empty when absent
}

func (o OSInfo) String() string {
	out := o.Family
	if o.UAFamily != "" {
		out += osDelim + o.UAFamily
	}
	if o.Version != "" {
		out += osDelim + o.Version
	}
	return out
}

func parseOSInfo(s string) (OSInfo, error) {
	if s == "" {
		return OSInfo{}, errOS
	}
	lower := strings.ToLower(s)
	matches := osPattern.FindStringSubmatch(lower)
	if matches == nil {
		return OSInfo{Family: lower}, nil
	}
	return OSInfo{Family: matches[1], UAFamily: matches[3], Version: matches[5]}, nil
}

// Environment enumerates the known client runtime environments.
type Environment string

const (
	EnvBrowser     Environment = "browser"
	EnvReactNative Environment = "react-native"
	EnvNodeJS      Environment = "nodejs"
	EnvAndroid     Environment = "android"
	EnvIOS         Environment = "ios"
)

func parseEnvironment(s string) (Environment, error) {
	if s == "" {
		return "", errID
	}
	return Environment(s), nil
}

// ID is the optional trailing "<environment>[:<host>]" segment.
type ID struct {
	Environment Environment
	Host        string // empty when absent
}

func (id ID) String() string {
	if id.Host != "" {
		return string(id.Environment) + appIDDelim + id.Host
	}
	return string(id.Environment)
}

func parseID(s string) (ID, error) {
	if s == "" {
		return ID{}, errID
	}
	envPart, hostPart, _ := strings.Cut(s, appIDDelim)
	env, err := parseEnvironment(envPart)
	if err != nil {
		return ID{}, err
	}
	return ID{Environment: env, Host: hostPart}, nil
}

// Parsing errors, one per grammar segment.
var (
	errUserAgent = errors.New("useragent: invalid user agent")
	errProtocol  = errors.New("useragent: invalid protocol segment")
	errSdk       = errors.New("useragent: invalid sdk segment")
	errOS        = errors.New("useragent: invalid os segment")
	errID        = errors.New("useragent: invalid id segment")
)

// Valid is a fully parsed, well-formed user-agent string.
type Valid struct {
	Protocol Protocol
	SDK      SDK
	OS       OSInfo
	ID       *ID // nil when the trailing id segment is absent
}

func (v Valid) String() string {
	parts := []string{v.Protocol.String(), v.SDK.String(), v.OS.String()}
	if v.ID != nil {
		parts = append(parts, v.ID.String())
	}
	return strings.Join(parts, delimiter)
}

func parseValid(s string) (Valid, error) {
	if s == "" {
		return Valid{}, errUserAgent
	}
	segments := strings.SplitN(s, delimiter, 4)
	if len(segments) < 3 {
		return Valid{}, errUserAgent
	}

	protocol, err := parseProtocol(segments[0])
	if err != nil {
		return Valid{}, err
	}
	sdk, err := parseSDK(segments[1])
	if err != nil {
		return Valid{}, err
	}
	os, err := parseOSInfo(segments[2])
	if err != nil {
		return Valid{}, err
	}

	v := Valid{Protocol: protocol, SDK: sdk, OS: os}
	if len(segments) == 4 {
		id, err := parseID(segments[3])
		if err != nil {
			return Valid{}, err
		}
		v.ID = &id
	}
	return v, nil
}

// UserAgent is either a successfully parsed Valid user agent, or the raw
// string when it didn't conform to the grammar — only a genuinely empty
// input is a hard parse failure.
type UserAgent struct {
	Valid *Valid // nil when Raw holds an unparsed string
	Raw   string
}

// Parse parses raw into a UserAgent. It only fails on an empty string;
// anything non-empty that doesn't match the grammar is preserved verbatim.
func Parse(raw string) (UserAgent, error) {
	if raw == "" {
		return UserAgent{}, ErrEmpty
	}
	if valid, err := parseValid(raw); err == nil {
		return UserAgent{Valid: &valid}, nil
	}
	return UserAgent{Raw: raw}, nil
}

// String renders the user agent back to its wire form.
func (u UserAgent) String() string {
	if u.Valid != nil {
		return u.Valid.String()
	}
	return u.Raw
}
