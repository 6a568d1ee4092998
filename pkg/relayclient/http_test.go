// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package relayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/rpc"
)

func newHTTPRelayServer(t *testing.T, handle func(*rpc.Request) (json.RawMessage, *rpc.ErrorData)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpc.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		result, rpcErr := handle(&req)
		var resp interface{}
		if rpcErr != nil {
			resp = rpc.ErrorResponse{ID: req.ID, JSONRPC: rpc.JSONRPCVersion, Error: *rpcErr}
		} else {
			resp = rpc.SuccessfulResponse{ID: req.ID, JSONRPC: rpc.JSONRPCVersion, Result: result}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_Publish(t *testing.T) {
	topicHex := strings.Repeat("e", 64)
	var gotMethod rpc.Method
	server := newHTTPRelayServer(t, func(req *rpc.Request) (json.RawMessage, *rpc.ErrorData) {
		gotMethod = req.Method
		ok, _ := json.Marshal(true)
		return ok, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	topic, err := domain.ParseTopic(topicHex)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = client.Publish(ctx, topic, "aGVsbG8=", 1000, 30*time.Second)
	require.NoError(t, err)
	require.Equal(t, rpc.MethodPublish, gotMethod)
}

func TestHTTPClient_SubscribeAndFetch(t *testing.T) {
	topicHex := strings.Repeat("f", 64)
	subIDHex := strings.Repeat("1", 64)

	server := newHTTPRelayServer(t, func(req *rpc.Request) (json.RawMessage, *rpc.ErrorData) {
		switch req.Method {
		case rpc.MethodSubscribe:
			result, _ := json.Marshal(subIDHex)
			return result, nil
		case rpc.MethodFetchMessages:
			result, _ := json.Marshal(rpc.FetchMessagesResult{
				Messages: []rpc.SubscriptionData{{Topic: topicHex, Message: "aGk=", PublishedAt: 1000, Tag: 1}},
				HasMore:  false,
			})
			return result, nil
		default:
			return nil, &rpc.ErrorData{Code: rpc.CodeInternal, Message: "unexpected method"}
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	topic, err := domain.ParseTopic(topicHex)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	subID, err := client.Subscribe(ctx, topic)
	require.NoError(t, err)
	require.Equal(t, subIDHex, subID.String())

	result, err := client.Fetch(ctx, topic)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	require.Equal(t, "aGk=", result.Messages[0].Message)
	require.False(t, result.HasMore)
}

func TestHTTPClient_RPCErrorIsTyped(t *testing.T) {
	server := newHTTPRelayServer(t, func(req *rpc.Request) (json.RawMessage, *rpc.ErrorData) {
		tag := string(rpc.AuthMissingJwt)
		return nil, &rpc.ErrorData{Code: rpc.CodeAuth, Message: "missing jwt", Data: &tag}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	topic, err := domain.ParseTopic(strings.Repeat("2", 64))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = client.Subscribe(ctx, topic)
	require.Error(t, err)

	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, rpc.AuthMissingJwt, rpcErr.Auth)
}

func TestHTTPClient_BatchSubscribeAndReceive(t *testing.T) {
	topics := []string{strings.Repeat("3", 64), strings.Repeat("4", 64)}
	subIDs := []string{strings.Repeat("5", 64), strings.Repeat("6", 64)}

	server := newHTTPRelayServer(t, func(req *rpc.Request) (json.RawMessage, *rpc.ErrorData) {
		switch req.Method {
		case rpc.MethodBatchSubscribe:
			result, _ := json.Marshal(subIDs)
			return result, nil
		case rpc.MethodBatchReceive:
			ok, _ := json.Marshal(true)
			return ok, nil
		default:
			return nil, &rpc.ErrorData{Code: rpc.CodeInternal, Message: "unexpected method"}
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	parsedTopics := make([]domain.Topic, len(topics))
	for i, hex := range topics {
		topic, err := domain.ParseTopic(hex)
		require.NoError(t, err)
		parsedTopics[i] = topic
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	gotIDs, err := client.BatchSubscribe(ctx, parsedTopics)
	require.NoError(t, err)
	require.Len(t, gotIDs, 2)
	require.Equal(t, subIDs[0], gotIDs[0].String())

	require.NoError(t, client.BatchReceive(ctx, gotIDs))
}

func TestHTTPClient_InvalidHTTPCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	topic, err := domain.ParseTopic(strings.Repeat("7", 64))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = client.Subscribe(ctx, topic)
	require.Error(t, err)

	var codeErr *InvalidHTTPCodeError
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, http.StatusInternalServerError, codeErr.Status)
	require.Equal(t, "upstream exploded", codeErr.Body)
}

func TestHTTPClient_InvalidResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	topic, err := domain.ParseTopic(strings.Repeat("8", 64))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = client.Subscribe(ctx, topic)
	require.ErrorIs(t, err, ErrInvalidHTTPResponse)
}
