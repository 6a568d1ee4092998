// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

// Package wsstream is the frame-level relay websocket connection: request
// correlation, inbound subscription push decoding and close-frame
// propagation, built on top of gorilla/websocket.
package wsstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wctool/relaycore/internal/metrics"
	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/rpc"
)

// ErrDuplicateRequestID is delivered to a caller whose freshly generated
// message id collided with one still pending. Collisions indicate the
// generator's 256-per-millisecond budget was exhausted, not attacker input.
var ErrDuplicateRequestID = errors.New("wsstream: duplicate request id")

// ErrConnectionClosed is delivered to every pending request when the stream
// is torn down before a response arrives.
var ErrConnectionClosed = errors.New("wsstream: connection closed")

// ErrInvalidRequestType is produced when the relay pushes a request method
// other than irn_subscription, the only inbound push this protocol defines.
var ErrInvalidRequestType = errors.New("wsstream: unexpected inbound request method")

// ErrInvalidResponseID is produced when a response's id does not match any
// pending request.
var ErrInvalidResponseID = errors.New("wsstream: response id has no pending request")

// EventKind discriminates the variants of Event.
type EventKind int

const (
	EventInboundSubscription EventKind = iota
	EventInboundError
	EventOutboundError
	EventConnectionClosed
)

// Event is produced by Stream.Events in a loop, mirroring the original
// client's StreamEvent enum.
type Event struct {
	Kind        EventKind
	Subscription *InboundSubscription
	Err         error
	CloseFrame  *CloseFrame
}

// CloseFrame carries the code/reason the peer sent on close, when available.
type CloseFrame struct {
	Code   int
	Reason string
}

// InboundSubscription is a irn_subscription push from the relay, along with
// the id it must be acknowledged with.
type InboundSubscription struct {
	ID   domain.MessageID
	Data rpc.SubscriptionParams
}

// pendingRequest is the bookkeeping kept per in-flight outbound request.
type pendingRequest struct {
	resultCh chan pendingResult
	method   rpc.Method
}

type pendingResult struct {
	result json.RawMessage
	err    *rpc.Error
}

// Stream is the frame-level connection: it owns the socket, the id
// generator, and the map of in-flight requests, and it is the single
// location both reads and writes flow through.
type Stream struct {
	conn     *websocket.Conn
	idGen    *domain.MessageIDGenerator

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[domain.MessageID]*pendingRequest

	events chan Event

	closeOnce  sync.Once
	closeFrame *CloseFrame
	closed     chan struct{}
}

// Dial opens a websocket connection to url (carrying any auth headers in
// header) and returns a Stream reading/writing over it.
func Dial(ctx context.Context, url string, header http.Header) (*Stream, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("wsstream: dial failed: %w", err)
	}
	return New(conn), nil
}

// New wraps an already-established connection. The caller must call Run to
// start the read loop before Send's responses can resolve.
func New(conn *websocket.Conn) *Stream {
	return &Stream{
		conn:    conn,
		idGen:   domain.NewMessageIDGenerator(),
		pending: make(map[domain.MessageID]*pendingRequest),
		events:  make(chan Event, 64),
		closed:  make(chan struct{}),
	}
}

// Events returns the channel Event values arrive on. It is closed once the
// connection is fully torn down; EventConnectionClosed is always the last
// value sent before that.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Run starts the blocking read loop; callers should launch it in its own
// goroutine and treat its return as "the connection is gone".
func (s *Stream) Run() {
	defer s.teardown()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			frame := closeFrameFromError(err)
			s.closeFrame = frame
			return
		}

		metrics.MessageSize.Observe(float64(len(data)))
		start := time.Now()
		event := s.parseInbound(data)
		metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())

		status := "success"
		if event != nil && event.Kind == EventInboundError {
			status = "failure"
		}
		metrics.MessagesProcessed.WithLabelValues("text", status).Inc()

		if event != nil {
			s.emit(*event)
		}
	}
}

func (s *Stream) emit(e Event) {
	select {
	case s.events <- e:
	case <-s.closed:
	}
}

func closeFrameFromError(err error) *CloseFrame {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return &CloseFrame{Code: ce.Code, Reason: ce.Text}
	}
	return nil
}

func (s *Stream) teardown() {
	s.closeOnce.Do(func() {
		close(s.closed)

		// Pending requests are dropped; their Send calls observe s.closed and
		// return ErrConnectionClosed.
		s.pendingMu.Lock()
		s.pending = nil
		s.pendingMu.Unlock()
		metrics.RelayPendingRequests.Set(0)

		s.events <- Event{Kind: EventConnectionClosed, CloseFrame: s.closeFrame}
		close(s.events)
	})
}

// parseInbound decodes a single wire frame into an Event, or nil when the
// frame was a response that resolved a pending request (the common case,
// which produces no externally visible event).
func (s *Stream) parseInbound(data []byte) *Event {
	payload, err := rpc.DecodePayload(data)
	if err != nil {
		return &Event{Kind: EventInboundError, Err: err}
	}

	switch {
	case payload.Request != nil:
		return s.parseInboundRequest(payload.Request)
	case payload.Response != nil:
		return s.resolveResponse(payload.Response)
	default:
		return &Event{Kind: EventInboundError, Err: ErrInvalidResponseID}
	}
}

func (s *Stream) parseInboundRequest(req *rpc.Request) *Event {
	if req.Method != rpc.MethodSubscription {
		return &Event{Kind: EventInboundError, Err: fmt.Errorf("%w: %s", ErrInvalidRequestType, req.Method)}
	}

	var params rpc.SubscriptionParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Event{Kind: EventInboundError, Err: fmt.Errorf("wsstream: %w", err)}
	}

	return &Event{Kind: EventInboundSubscription, Subscription: &InboundSubscription{ID: req.ID, Data: params}}
}

func (s *Stream) resolveResponse(resp *rpc.Response) *Event {
	id := resp.ID()
	if !id.IsValid() {
		if resp.Err != nil {
			if typed, err := rpc.ParseErrorData(resp.Err.Error); err == nil {
				return &Event{Kind: EventInboundError, Err: typed}
			}
			return &Event{Kind: EventInboundError, Err: fmt.Errorf("wsstream: %s", resp.Err.Error.Message)}
		}
		return &Event{Kind: EventInboundError, Err: ErrInvalidResponseID}
	}

	s.pendingMu.Lock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	pendingCount := len(s.pending)
	s.pendingMu.Unlock()

	if !ok {
		return &Event{Kind: EventInboundError, Err: ErrInvalidResponseID}
	}
	metrics.RelayPendingRequests.Set(float64(pendingCount))

	if resp.Success != nil {
		metrics.RelayResponsesReceived.WithLabelValues(string(p.method), "success").Inc()
		p.resultCh <- pendingResult{result: resp.Success.Result}
		return nil
	}

	typed, err := rpc.ParseErrorData(resp.Err.Error)
	if err != nil {
		typed = &rpc.Error{Internal: rpc.InternalUnknown}
	}
	metrics.RelayResponsesReceived.WithLabelValues(string(p.method), "error").Inc()
	p.resultCh <- pendingResult{err: typed}
	return nil
}

// Send serializes method/params into a freshly IDed request, writes it, and
// blocks until the relay responds or ctx is done.
func (s *Stream) Send(ctx context.Context, method rpc.Method, params interface{}) (json.RawMessage, error) {
	ch, _, err := s.sendRaw(ctx, method, params)
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, ErrConnectionClosed
	}
}

// sendRaw serializes method/params into a freshly IDed request, writes it,
// and returns a channel delivering its JSON result once the relay responds.
// It does not block on the network round trip.
func (s *Stream) sendRaw(ctx context.Context, method rpc.Method, params interface{}) (<-chan pendingResult, domain.MessageID, error) {
	id := s.idGen.Next()

	req, err := rpc.NewRequest(id, method, params)
	if err != nil {
		return nil, id, err
	}

	p := &pendingRequest{resultCh: make(chan pendingResult, 1), method: method}

	s.pendingMu.Lock()
	if s.pending == nil {
		s.pendingMu.Unlock()
		return nil, id, ErrConnectionClosed
	}
	if _, exists := s.pending[id]; exists {
		s.pendingMu.Unlock()
		return nil, id, ErrDuplicateRequestID
	}
	s.pending[id] = p
	pendingCount := len(s.pending)
	s.pendingMu.Unlock()
	metrics.RelayPendingRequests.Set(float64(pendingCount))

	data, err := json.Marshal(req)
	if err != nil {
		s.dropPending(id)
		return nil, id, err
	}

	if err := s.writeText(ctx, data); err != nil {
		s.dropPending(id)
		return nil, id, err
	}

	metrics.RelayRequestsSent.WithLabelValues(string(method)).Inc()
	return p.resultCh, id, nil
}

func (s *Stream) dropPending(id domain.MessageID) {
	s.pendingMu.Lock()
	delete(s.pending, id)
	pendingCount := len(s.pending)
	s.pendingMu.Unlock()
	metrics.RelayPendingRequests.Set(float64(pendingCount))
}

// SendResult writes a successful response back for an inbound subscription
// push.
func (s *Stream) SendResult(ctx context.Context, id domain.MessageID, result interface{}) error {
	resp, err := rpc.NewSuccessResponse(id, result)
	if err != nil {
		return err
	}
	data, err := (&rpc.Payload{Response: resp}).Encode()
	if err != nil {
		return err
	}
	return s.writeText(ctx, data)
}

func (s *Stream) writeText(ctx context.Context, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
	} else {
		_ = s.conn.SetWriteDeadline(time.Time{})
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and shuts down the socket. Run's read loop
// notices the resulting error and performs teardown.
func (s *Stream) Close(code int, reason string) error {
	s.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	writeErr := s.conn.WriteMessage(websocket.CloseMessage, msg)
	s.writeMu.Unlock()

	closeErr := s.conn.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
