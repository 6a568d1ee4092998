// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package rpc

// IrnMetadata carries the IRN relay protocol metadata every method must
// expose: its namespace tag, message TTL, and whether relaying it should
// prompt the peer.
type IrnMetadata struct {
	Tag    uint32
	TTL    uint64
	Prompt bool
}

// Method is the fixed, closed set of JSON-RPC methods this protocol speaks.
type Method string

const (
	MethodSubscribe             Method = "irn_subscribe"
	MethodUnsubscribe           Method = "irn_unsubscribe"
	MethodFetchMessages         Method = "irn_fetchMessages"
	MethodBatchSubscribe        Method = "irn_batchSubscribe"
	MethodBatchSubscribeBlocking Method = "irn_batchSubscribeBlocking"
	MethodBatchUnsubscribe      Method = "irn_batchUnsubscribe"
	MethodBatchFetchMessages    Method = "irn_batchFetchMessages"
	MethodPublish               Method = "irn_publish"
	MethodBatchReceive          Method = "irn_batchReceive"
	MethodWatchRegister         Method = "irn_watchRegister"
	MethodWatchUnregister       Method = "irn_watchUnregister"
	MethodSubscription          Method = "irn_subscription"

	MethodSessionPropose Method = "wc_sessionPropose"
	MethodSessionSettle  Method = "wc_sessionSettle"
	MethodSessionUpdate  Method = "wc_sessionUpdate"
	MethodSessionExtend  Method = "wc_sessionExtend"
	MethodSessionRequest Method = "wc_sessionRequest"
	MethodSessionEvent   Method = "wc_sessionEvent"
	MethodSessionDelete  Method = "wc_sessionDelete"
	MethodSessionPing    Method = "wc_sessionPing"
)

// legacyAlias maps the backward-compatibility "iridium_" prefix accepted on
// deserialization to its canonical "irn_" method. Methods always serialize
// as irn_.
var legacyAlias = map[string]Method{
	"iridium_subscribe":      MethodSubscribe,
	"iridium_unsubscribe":    MethodUnsubscribe,
	"iridium_fetchMessages":  MethodFetchMessages,
	"iridium_publish":        MethodPublish,
	"iridium_batchReceive":   MethodBatchReceive,
	"iridium_subscription":   MethodSubscription,
}

// NormalizeMethod canonicalizes a wire method string, accepting the
// "iridium_" alias for backward compatibility.
func NormalizeMethod(raw string) (Method, bool) {
	if m, ok := legacyAlias[raw]; ok {
		return m, true
	}
	return Method(raw), true
}

// sessionRequestMeta and sessionResponseMeta hold the fixed request/response
// IRN metadata for each Sign API method, per the relay protocol's published
// table.
var sessionRequestMeta = map[Method]IrnMetadata{
	MethodSessionPropose: {Tag: 1100, TTL: 300, Prompt: true},
	MethodSessionSettle:  {Tag: 1102, TTL: 300, Prompt: false},
	MethodSessionUpdate:  {Tag: 1104, TTL: 86400, Prompt: false},
	MethodSessionExtend:  {Tag: 1106, TTL: 86400, Prompt: false},
	MethodSessionRequest: {Tag: 1108, TTL: 300, Prompt: true},
	MethodSessionEvent:   {Tag: 1110, TTL: 300, Prompt: true},
	MethodSessionDelete:  {Tag: 1112, TTL: 86400, Prompt: false},
	MethodSessionPing:    {Tag: 1114, TTL: 30, Prompt: false},
}

var sessionResponseMeta = map[Method]IrnMetadata{
	MethodSessionPropose: {Tag: 1101, TTL: 300, Prompt: false},
	MethodSessionSettle:  {Tag: 1103, TTL: 300, Prompt: false},
	MethodSessionUpdate:  {Tag: 1105, TTL: 86400, Prompt: false},
	MethodSessionExtend:  {Tag: 1107, TTL: 86400, Prompt: false},
	MethodSessionRequest: {Tag: 1109, TTL: 300, Prompt: false},
	MethodSessionEvent:   {Tag: 1111, TTL: 300, Prompt: false},
	MethodSessionDelete:  {Tag: 1113, TTL: 86400, Prompt: false},
	MethodSessionPing:    {Tag: 1115, TTL: 30, Prompt: false},
}

// RequestIrnMetadata looks up the request-path IRN metadata for a Sign API
// method.
func RequestIrnMetadata(m Method) (IrnMetadata, bool) {
	meta, ok := sessionRequestMeta[m]
	return meta, ok
}

// ResponseIrnMetadata looks up the response-path IRN metadata for a Sign API
// method.
func ResponseIrnMetadata(m Method) (IrnMetadata, bool) {
	meta, ok := sessionResponseMeta[m]
	return meta, ok
}

// MethodFromResponseTag recovers which Sign API method produced a response,
// using the response-side tag (responses carry no method of their own).
func MethodFromResponseTag(tag uint32) (Method, bool) {
	for m, meta := range sessionResponseMeta {
		if meta.Tag == tag {
			return m, true
		}
	}
	return "", false
}
