// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/rpc"
)

// InvalidHTTPCodeError is returned when the relay's HTTP response carries a
// non-2xx status. Status and Body let a caller inspect the failure without
// string-matching an error message.
type InvalidHTTPCodeError struct {
	Status int
	Body   string
}

func (e *InvalidHTTPCodeError) Error() string {
	return fmt.Sprintf("relayclient: http status %d: %s", e.Status, e.Body)
}

// ErrInvalidHTTPResponse is returned when a 2xx HTTP response body cannot be
// parsed as a JSON-RPC response payload (malformed JSON, or a request
// payload where a response was expected).
var ErrInvalidHTTPResponse = errors.New("relayclient: invalid http response")

// HTTPClient is the stateless publish/subscribe/fetch/watch surface used
// where a persistent connection isn't wanted: every call is a single POST,
// correlated only by the request id it carries.
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
	idGen      *domain.MessageIDGenerator
}

// NewHTTPClient builds an HTTPClient against endpoint (the relay's HTTP RPC
// URL, carrying projectId/auth query parameters the same way the websocket
// address does).
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		idGen:      domain.NewMessageIDGenerator(),
	}
}

// Publish sends message on topic with the given tag and TTL.
func (c *HTTPClient) Publish(ctx context.Context, topic domain.Topic, message string, tag uint32, ttl time.Duration) error {
	params := rpc.PublishParams{
		Topic:   topic.String(),
		Message: message,
		TTLSecs: uint32(ttl.Seconds()),
		Tag:     tag,
	}
	if verr := params.Validate(); verr != nil {
		return verr
	}
	_, err := c.request(ctx, rpc.MethodPublish, params)
	return err
}

// Subscribe subscribes to topic and returns the subscription id.
func (c *HTTPClient) Subscribe(ctx context.Context, topic domain.Topic) (domain.SubscriptionID, error) {
	raw, err := c.request(ctx, rpc.MethodSubscribe, rpc.SubscribeParams{Topic: topic.String()})
	if err != nil {
		return domain.SubscriptionID{}, err
	}
	idStr, err := decodeResult[string](raw)
	if err != nil {
		return domain.SubscriptionID{}, err
	}
	return domain.ParseSubscriptionID(idStr)
}

// Unsubscribe removes a subscription.
func (c *HTTPClient) Unsubscribe(ctx context.Context, topic domain.Topic, subscriptionID domain.SubscriptionID) error {
	_, err := c.request(ctx, rpc.MethodUnsubscribe, rpc.UnsubscribeParams{
		Topic: topic.String(),
		ID:    subscriptionID.String(),
	})
	return err
}

// Fetch retrieves mailboxed messages for topic.
func (c *HTTPClient) Fetch(ctx context.Context, topic domain.Topic) (FetchResult, error) {
	raw, err := c.request(ctx, rpc.MethodFetchMessages, rpc.FetchMessagesParams{Topic: topic.String()})
	if err != nil {
		return FetchResult{}, err
	}
	result, err := decodeResult[rpc.FetchMessagesResult](raw)
	if err != nil {
		return FetchResult{}, err
	}
	return toFetchResult(result), nil
}

// WatchRegister registers a webhook watcher using an already-minted
// registerAuth JWT.
func (c *HTTPClient) WatchRegister(ctx context.Context, registerAuth string) error {
	_, err := c.request(ctx, rpc.MethodWatchRegister, rpc.WatchRegisterParams{RegisterAuth: registerAuth})
	return err
}

// WatchUnregister removes a registered webhook watcher using an
// already-minted unregisterAuth JWT.
func (c *HTTPClient) WatchUnregister(ctx context.Context, unregisterAuth string) error {
	_, err := c.request(ctx, rpc.MethodWatchUnregister, rpc.WatchUnregisterParams{UnregisterAuth: unregisterAuth})
	return err
}

// BatchSubscribe subscribes to multiple topics in one request.
func (c *HTTPClient) BatchSubscribe(ctx context.Context, topics []domain.Topic) ([]domain.SubscriptionID, error) {
	params := rpc.BatchSubscribeParams{Topics: topicStrings(topics)}
	if verr := params.Validate(); verr != nil {
		return nil, verr
	}
	raw, err := c.request(ctx, rpc.MethodBatchSubscribe, params)
	if err != nil {
		return nil, err
	}
	ids, err := decodeResult[[]string](raw)
	if err != nil {
		return nil, err
	}
	return parseSubscriptionIDs(ids)
}

// BatchFetch retrieves mailboxed messages for multiple topics.
func (c *HTTPClient) BatchFetch(ctx context.Context, topics []domain.Topic) (FetchResult, error) {
	params := rpc.BatchFetchMessagesParams{Topics: topicStrings(topics)}
	if verr := params.Validate(); verr != nil {
		return FetchResult{}, verr
	}
	raw, err := c.request(ctx, rpc.MethodBatchFetchMessages, params)
	if err != nil {
		return FetchResult{}, err
	}
	result, err := decodeResult[rpc.FetchMessagesResult](raw)
	if err != nil {
		return FetchResult{}, err
	}
	return toFetchResult(result), nil
}

// BatchReceive acknowledges delivery of a batch of subscription ids.
func (c *HTTPClient) BatchReceive(ctx context.Context, ids []domain.SubscriptionID) error {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	params := rpc.BatchReceiveParams{SubscriptionIDs: strs}
	if verr := params.Validate(); verr != nil {
		return verr
	}
	_, err := c.request(ctx, rpc.MethodBatchReceive, params)
	return err
}

func (c *HTTPClient) request(ctx context.Context, method rpc.Method, params interface{}) (json.RawMessage, error) {
	id := c.idGen.Next()
	req, err := rpc.NewRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("relayclient: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("relayclient: build http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relayclient: http transport: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("relayclient: read http response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &InvalidHTTPCodeError{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	payload, err := rpc.DecodePayload(respBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHTTPResponse, err)
	}
	if payload.Response == nil {
		return nil, fmt.Errorf("%w: expected a response payload, got a request", ErrInvalidHTTPResponse)
	}
	if payload.Response.Err != nil {
		typed, perr := rpc.ParseErrorData(payload.Response.Err.Error)
		if perr != nil {
			return nil, fmt.Errorf("relayclient: %s", payload.Response.Err.Error.Message)
		}
		return nil, typed
	}
	return payload.Response.Success.Result, nil
}
