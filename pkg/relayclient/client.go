// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package relayclient is the typed WebSocket façade over pkg/wsstream: the
// publish/subscribe/fetch/watch operation set, a background connection
// event loop and a ConnectionHandler observer interface.
package relayclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wctool/relaycore/internal/metrics"
	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/rpc"
	"github.com/wctool/relaycore/pkg/useragent"
	"github.com/wctool/relaycore/pkg/wsstream"
)

// ErrNotConnected is returned by any RPC method issued while no connection
// is established.
var ErrNotConnected = errors.New("relayclient: not connected")

// ErrAlreadyConnected is returned by Connect when a connection already
// exists.
var ErrAlreadyConnected = errors.New("relayclient: already connected")

// PublishedMessage is delivered to ConnectionHandler.MessageReceived for
// every irn_subscription push.
type PublishedMessage struct {
	Topic       domain.Topic
	Message     string
	PublishedAt time.Time
	ReceivedAt  time.Time
	Tag         uint32
}

// ConnectionHandler observes the lifecycle of a Client's connection.
// Embed NoopHandler to pick up default no-op behavior for events you don't
// care about.
type ConnectionHandler interface {
	Connected()
	Disconnected(frame *wsstream.CloseFrame)
	MessageReceived(msg PublishedMessage)
	InboundError(err error)
	OutboundError(err error)
}

// NoopHandler implements ConnectionHandler with no-ops, so callers can embed
// it and override only the events they care about.
type NoopHandler struct{}

func (NoopHandler) Connected()                        {}
func (NoopHandler) Disconnected(*wsstream.CloseFrame) {}
func (NoopHandler) MessageReceived(PublishedMessage)  {}
func (NoopHandler) InboundError(error)                {}
func (NoopHandler) OutboundError(error)               {}

// ConnectionOptions configures a single Connect call.
type ConnectionOptions struct {
	Address     string // defaults to wcjwt.RelayWebsocketAddress
	ProjectID   string
	Auth        string // pre-minted relay-admission JWT
	Origin      string // subject to allow-list validation
	PackageName string // used instead of Origin for allow-list validation
	BundleID    string // used instead of Origin for allow-list validation
	UserAgent   useragent.UserAgent
}

// Client is the Relay RPC client: a typed operation set plus a managed
// websocket connection. Safe for concurrent use.
type Client struct {
	handler ConnectionHandler
	id      string

	mu     sync.RWMutex
	stream *wsstream.Stream
	cancel context.CancelFunc
}

// New constructs a Client reporting lifecycle events to handler. Each Client
// carries a random correlation ID (not protocol-visible) that a handler can
// fold into its own diagnostic logging to distinguish concurrent Clients.
func New(handler ConnectionHandler) *Client {
	return &Client{handler: handler, id: uuid.NewString()}
}

// ConnectionID returns this Client's correlation ID, stable for its
// lifetime regardless of how many times it connects/disconnects/reconnects.
func (c *Client) ConnectionID() string {
	return c.id
}

// Connect dials the relay and starts the background dispatch loop.
func (c *Client) Connect(ctx context.Context, opts ConnectionOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return ErrAlreadyConnected
	}

	addr, err := buildDialURL(opts)
	if err != nil {
		return err
	}

	header := http.Header{}
	if opts.Origin != "" {
		header.Set("Origin", opts.Origin)
	}

	stream, err := wsstream.Dial(ctx, addr, header)
	if err != nil {
		metrics.RelayReconnects.WithLabelValues("failure").Inc()
		return fmt.Errorf("relayclient: connect: %w", err)
	}
	metrics.RelayReconnects.WithLabelValues("success").Inc()

	loopCtx, cancel := context.WithCancel(context.Background())
	c.stream = stream
	c.cancel = cancel

	go stream.Run()
	go c.dispatchLoop(loopCtx, stream)

	c.handler.Connected()
	return nil
}

// Disconnect closes the relay connection and stops the dispatch loop.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	stream := c.stream
	cancel := c.cancel
	c.stream = nil
	c.cancel = nil
	c.mu.Unlock()

	if stream == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	return stream.Close(1000, "")
}

func (c *Client) dispatchLoop(ctx context.Context, stream *wsstream.Stream) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-stream.Events():
			if !ok {
				return
			}
			c.dispatch(event)
			if event.Kind == wsstream.EventConnectionClosed {
				return
			}
		}
	}
}

func (c *Client) dispatch(event wsstream.Event) {
	switch event.Kind {
	case wsstream.EventInboundSubscription:
		c.handleSubscription(event.Subscription)
	case wsstream.EventInboundError:
		c.handler.InboundError(event.Err)
	case wsstream.EventOutboundError:
		c.handler.OutboundError(event.Err)
	case wsstream.EventConnectionClosed:
		c.handler.Disconnected(event.CloseFrame)
	}
}

func (c *Client) handleSubscription(sub *wsstream.InboundSubscription) {
	if sub == nil {
		return
	}

	topic, err := domain.ParseTopic(sub.Data.Data.Topic)
	if err != nil {
		c.handler.InboundError(fmt.Errorf("relayclient: %w", err))
		return
	}

	now := time.Now()
	c.handler.MessageReceived(PublishedMessage{
		Topic:       topic,
		Message:     sub.Data.Data.Message,
		PublishedAt: time.UnixMilli(sub.Data.Data.PublishedAt),
		ReceivedAt:  now,
		Tag:         sub.Data.Data.Tag,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.ackSubscription(ctx, sub.ID); err != nil {
		c.handler.OutboundError(err)
	}
}

func (c *Client) ackSubscription(ctx context.Context, id domain.MessageID) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}
	return stream.SendResult(ctx, id, true)
}

func (c *Client) activeStream() (*wsstream.Stream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stream == nil {
		return nil, ErrNotConnected
	}
	return c.stream, nil
}

func buildDialURL(opts ConnectionOptions) (string, error) {
	addr := opts.Address
	if addr == "" {
		addr = "wss://relay.walletconnect.com"
	}

	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("relayclient: invalid address: %w", err)
	}

	q := u.Query()
	if opts.ProjectID != "" {
		q.Set("projectId", opts.ProjectID)
	}
	if opts.Auth != "" {
		q.Set("auth", opts.Auth)
	}
	if ua := opts.UserAgent.String(); ua != "" {
		q.Set("ua", ua)
	}
	if opts.PackageName != "" {
		q.Set("packageName", opts.PackageName)
	}
	if opts.BundleID != "" {
		q.Set("bundleId", opts.BundleID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeResult[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("relayclient: decode result: %w", err)
	}
	return out, nil
}
