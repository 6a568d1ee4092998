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
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/rpc"
)

var upgrader = websocket.Upgrader{}

type recordingHandler struct {
	NoopHandler
	mu       sync.Mutex
	messages []PublishedMessage
	gotConn  chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{gotConn: make(chan struct{}, 1)}
}

func (h *recordingHandler) Connected() {
	select {
	case h.gotConn <- struct{}{}:
	default:
	}
}

func (h *recordingHandler) MessageReceived(msg PublishedMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

// newSubscribeRelayServer answers irn_subscribe, then immediately pushes one
// irn_subscription for the same topic and expects an ack back.
func newSubscribeRelayServer(t *testing.T, topicHex string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpc.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}

		subID := strings.Repeat("a", 64)
		result, _ := json.Marshal(subID)
		resp := rpc.SuccessfulResponse{ID: req.ID, JSONRPC: rpc.JSONRPCVersion, Result: result}
		respData, _ := json.Marshal(resp)
		if err := conn.WriteMessage(websocket.TextMessage, respData); err != nil {
			return
		}

		pushReq, err := rpc.NewRequest(2_000_000_000, rpc.MethodSubscription, rpc.SubscriptionParams{
			ID: subID,
			Data: rpc.SubscriptionData{
				Topic:   topicHex,
				Message: "aGVsbG8=",
			},
		})
		if err != nil {
			return
		}
		pushData, _ := json.Marshal(pushReq)
		if err := conn.WriteMessage(websocket.TextMessage, pushData); err != nil {
			return
		}

		// Wait for the client's ack of the push before closing.
		_, _, _ = conn.ReadMessage()
		time.Sleep(50 * time.Millisecond)
	}))
}

func TestClient_SubscribeAndReceive(t *testing.T) {
	topicHex := strings.Repeat("d", 64)
	server := newSubscribeRelayServer(t, topicHex)
	defer server.Close()

	handler := newRecordingHandler()
	client := New(handler)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx, ConnectionOptions{Address: wsURL}))
	defer client.Disconnect()

	select {
	case <-handler.gotConn:
	case <-time.After(2 * time.Second):
		t.Fatal("Connected() was never called")
	}

	topic, err := domain.ParseTopic(topicHex)
	require.NoError(t, err)

	subID, err := client.Subscribe(ctx, topic)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("a", 64), subID.String())

	require.Eventually(t, func() bool {
		handler.mu.Lock()
		defer handler.mu.Unlock()
		return len(handler.messages) == 1
	}, 2*time.Second, 20*time.Millisecond)

	handler.mu.Lock()
	msg := handler.messages[0]
	handler.mu.Unlock()
	require.Equal(t, "aGVsbG8=", msg.Message)
	require.Equal(t, topic, msg.Topic)
}

func TestClient_ConnectTwiceFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := New(newRecordingHandler())
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx, ConnectionOptions{Address: wsURL}))
	defer client.Disconnect()

	err := client.Connect(ctx, ConnectionOptions{Address: wsURL})
	require.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestClient_OperationsRequireConnection(t *testing.T) {
	client := New(newRecordingHandler())
	_, err := client.Subscribe(context.Background(), domain.Topic{})
	require.ErrorIs(t, err, ErrNotConnected)
}
