// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wctool/relaycore/pkg/domain"
)

func TestRequestRoundTrip(t *testing.T) {
	req, err := NewRequest(domain.MessageID(1_000_000_001), MethodSessionPing, struct{}{})
	require.NoError(t, err)

	payload := &Payload{Request: req}
	raw, err := payload.Encode()
	require.NoError(t, err)

	decoded, err := DecodePayload(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded.Request)
	assert.Equal(t, MethodSessionPing, decoded.Request.Method)
	assert.Equal(t, req.ID, decoded.Request.ID)
}

func TestResponseRoundTripSuccessAndError(t *testing.T) {
	id := domain.MessageID(1_000_000_002)

	success, err := NewSuccessResponse(id, true)
	require.NoError(t, err)
	raw, err := (&Payload{Response: success}).Encode()
	require.NoError(t, err)
	decoded, err := DecodePayload(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded.Response.Success)
	assert.Equal(t, id, decoded.Response.ID())

	errResp := NewErrorResponse(id, &Error{Payload: PayloadInvalidTopic})
	raw, err = (&Payload{Response: errResp}).Encode()
	require.NoError(t, err)
	decoded, err = DecodePayload(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded.Response.Err)
	assert.Equal(t, CodePayload, decoded.Response.Err.Error.Code)
}

func TestRequestValidateRejectsLowID(t *testing.T) {
	req := &Request{ID: 5, JSONRPC: JSONRPCVersion, Method: MethodSessionPing}
	err := req.Validate()
	require.NotNil(t, err)
	assert.Equal(t, PayloadInvalidRequestID, err.Payload)
}

func TestRequestValidateRejectsBadVersion(t *testing.T) {
	req := &Request{ID: domain.MinValidMessageID, JSONRPC: "1.0", Method: MethodSessionPing}
	err := req.Validate()
	require.NotNil(t, err)
	assert.Equal(t, PayloadInvalidJSONRPCVersion, err.Payload)
}

func TestValidateBatchSizeBounds(t *testing.T) {
	assert.Equal(t, PayloadBatchEmpty, ValidateBatchSize(0).Payload)
	assert.Nil(t, ValidateBatchSize(1))
	assert.Nil(t, ValidateBatchSize(MaxBatchSize))
	assert.Equal(t, PayloadBatchLimitExceeded, ValidateBatchSize(MaxBatchSize+1).Payload)
}

func TestErrorDataRoundTrip(t *testing.T) {
	original := &Error{Handler: HandlerTtlTooShort}
	data := original.Data()
	assert.Equal(t, CodeHandler, data.Code)

	parsed, err := ParseErrorData(data)
	require.NoError(t, err)
	assert.Equal(t, original.Handler, parsed.Handler)
}

func TestParseErrorDataUnknownCode(t *testing.T) {
	_, err := ParseErrorData(ErrorData{Code: 1, Message: "x"})
	assert.ErrorIs(t, err, ErrInvalidErrorData)
}

func TestIrnMetadataTable(t *testing.T) {
	meta, ok := RequestIrnMetadata(MethodSessionPropose)
	require.True(t, ok)
	assert.Equal(t, uint32(1100), meta.Tag)
	assert.Equal(t, uint64(300), meta.TTL)
	assert.True(t, meta.Prompt)

	respMeta, ok := ResponseIrnMetadata(MethodSessionPropose)
	require.True(t, ok)
	assert.Equal(t, uint32(1101), respMeta.Tag)

	method, ok := MethodFromResponseTag(1113)
	require.True(t, ok)
	assert.Equal(t, MethodSessionDelete, method)
}

func TestNormalizeMethodAcceptsLegacyAlias(t *testing.T) {
	m, ok := NormalizeMethod("iridium_publish")
	require.True(t, ok)
	assert.Equal(t, MethodPublish, m)
}

func TestSubscriptionParamsValidate(t *testing.T) {
	topic, err := domain.GenerateTopic()
	require.NoError(t, err)
	subID, err := domain.GenerateSubscriptionID()
	require.NoError(t, err)

	params := SubscriptionParams{
		ID: subID.String(),
		Data: SubscriptionData{
			Topic:   topic.String(),
			Message: "aGVsbG8=",
			Tag:     1100,
		},
	}
	assert.Nil(t, params.Validate())

	bad := params
	bad.Data.Topic = "not-hex"
	assert.Equal(t, PayloadInvalidTopic, bad.Validate().Payload)
}
