// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package signapi

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wctool/relaycore/internal/metrics"
	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/envelope"
	"github.com/wctool/relaycore/pkg/rpc"
)

// State is a responder-side session's position in the establishment state
// machine (spec §4.9).
type State int

const (
	StateIdle State = iota
	StateSettling
	StateActive
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSettling:
		return "settling"
	case StateActive:
		return "active"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// Errors returned by SessionResponder's state-machine operations.
var (
	ErrUnexpectedMethod   = errors.New("signapi: unexpected method for this step")
	ErrWrongState         = errors.New("signapi: operation invalid in current state")
	ErrNamespacesRejected = errors.New("signapi: proposer namespaces not a subset of supported namespaces")
)

// RelayTransport is the subset of relayclient.Client's operation set a
// SessionResponder needs. Depending on the interface rather than the
// concrete client keeps this package transport-agnostic (and trivially
// testable).
type RelayTransport interface {
	Publish(ctx context.Context, topic domain.Topic, message string, tag uint32, ttl time.Duration) error
	Subscribe(ctx context.Context, topic domain.Topic) (domain.SubscriptionID, error)
	Unsubscribe(ctx context.Context, topic domain.Topic, subscriptionID domain.SubscriptionID) error
}

// SessionResponder drives the responder side (typically the wallet) of the
// session-establishment state machine: it reacts to an inbound
// wc_sessionPropose on a pairing topic by deriving a session key, publishing
// wc_sessionSettle, and tracking the session through to activation or
// teardown.
type SessionResponder struct {
	transport RelayTransport
	idGen     *domain.MessageIDGenerator
	metadata  Metadata
	supported Namespaces

	mu                 sync.Mutex
	state              State
	pairingTopic       domain.Topic
	pairingSubID       domain.SubscriptionID
	pairingSymKey      []byte
	sessionTopic       domain.Topic
	sessionSubID       domain.SubscriptionID
	sessionSymKey      []byte
	responderPublicKey [32]byte
}

// NewSessionResponder constructs a responder advertising metadata and
// willing to accept any proposal whose required namespaces are a subset of
// supported.
func NewSessionResponder(transport RelayTransport, metadata Metadata, supported Namespaces) *SessionResponder {
	return &SessionResponder{
		transport: transport,
		idGen:     domain.NewMessageIDGenerator(),
		metadata:  metadata,
		supported: supported,
		state:     StateIdle,
	}
}

// State returns the responder's current position in the state machine.
func (r *SessionResponder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SessionTopic returns the derived session topic once settlement has begun;
// the zero Topic before that.
func (r *SessionResponder) SessionTopic() domain.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionTopic
}

// HandlePairingMessage processes a single decrypted-pending message
// received on pairingTopic: a type-0 envelope sealed under pairingSymKey.
// Only wc_sessionPropose is accepted from IDLE; any other inbound method is
// rejected with ErrUnexpectedMethod.
func (r *SessionResponder) HandlePairingMessage(ctx context.Context, pairingTopic domain.Topic, pairingSubID domain.SubscriptionID, pairingSymKey []byte, encodedEnvelope string) (err error) {
	metrics.HandshakesInitiated.WithLabelValues("responder").Inc()
	start := time.Now()
	defer func() {
		metrics.HandshakeDuration.WithLabelValues("settle").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.HandshakesCompleted.WithLabelValues("failure").Inc()
			metrics.HandshakesFailed.WithLabelValues(handshakeErrorType(err)).Inc()
			return
		}
		metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	}()

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return fmt.Errorf("%w: expected idle, have %s", ErrWrongState, r.state)
	}
	r.mu.Unlock()

	plaintext, err := envelope.DecryptType0(encodedEnvelope, pairingSymKey)
	if err != nil {
		return fmt.Errorf("signapi: decrypt pairing message: %w", err)
	}

	var req rpc.Request
	if err := json.Unmarshal(plaintext, &req); err != nil {
		return fmt.Errorf("signapi: decode pairing request: %w", err)
	}
	if req.Method != rpc.MethodSessionPropose {
		return fmt.Errorf("%w: %s", ErrUnexpectedMethod, req.Method)
	}

	var propose SessionProposeRequest
	if err := json.Unmarshal(req.Params, &propose); err != nil {
		return fmt.Errorf("signapi: decode session propose params: %w", err)
	}

	if err := ValidateSupersets(propose.RequiredNamespaces.ToNamespaces(), r.supported); err != nil {
		return fmt.Errorf("%w: %v", ErrNamespacesRejected, err)
	}

	proposerPub, err := decodeHexKey(propose.Proposer.PublicKey)
	if err != nil {
		return fmt.Errorf("signapi: decode proposer public key: %w", err)
	}

	sessionKey, err := envelope.DeriveSessionKey(proposerPub)
	if err != nil {
		return fmt.Errorf("signapi: derive session key: %w", err)
	}
	sessionTopic := sessionKey.Topic()

	sessionSubID, err := r.transport.Subscribe(ctx, sessionTopic)
	if err != nil {
		return fmt.Errorf("signapi: subscribe session topic: %w", err)
	}

	settleReq := SessionSettleRequest{
		Relay:      Relay{Protocol: "irn"},
		Controller: Controller{PublicKey: hex.EncodeToString(sessionKey.PublicKey[:]), Metadata: r.metadata},
		Namespaces: settleNamespacesFromPropose(propose.RequiredNamespaces),
		Expiry:     uint64(time.Now().Add(7 * 24 * time.Hour).Unix()),
	}
	if err := r.publishRequest(ctx, sessionTopic, rpc.MethodSessionSettle, settleReq, sessionKey.SymKey[:]); err != nil {
		return fmt.Errorf("signapi: publish session settle: %w", err)
	}

	proposeResp := SessionProposeResponse{
		Relay:              Relay{Protocol: "irn"},
		ResponderPublicKey: hex.EncodeToString(sessionKey.PublicKey[:]),
	}
	if err := r.publishResponse(ctx, pairingTopic, req.ID, rpc.MethodSessionPropose, proposeResp, pairingSymKey); err != nil {
		return fmt.Errorf("signapi: publish session propose response: %w", err)
	}

	r.mu.Lock()
	r.pairingTopic = pairingTopic
	r.pairingSubID = pairingSubID
	r.pairingSymKey = pairingSymKey
	r.sessionTopic = sessionTopic
	r.sessionSubID = sessionSubID
	r.sessionSymKey = sessionKey.SymKey[:]
	r.responderPublicKey = sessionKey.PublicKey
	r.state = StateSettling
	r.mu.Unlock()
	return nil
}

// HandleSettleResult transitions SETTLING → ACTIVE on a successful
// wc_sessionSettle response, or SETTLING → TORN_DOWN on failure.
func (r *SessionResponder) HandleSettleResult(success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateSettling {
		return fmt.Errorf("%w: expected settling, have %s", ErrWrongState, r.state)
	}
	if success {
		r.state = StateActive
		metrics.SessionsCreated.WithLabelValues("success").Inc()
		metrics.SessionsActive.Inc()
	} else {
		r.state = StateTornDown
		metrics.SessionsCreated.WithLabelValues("failure").Inc()
	}
	return nil
}

// HandleSessionDelete tears a session down: unsubscribes the session topic
// and, when hasOtherSessions is false, the pairing topic too.
func (r *SessionResponder) HandleSessionDelete(ctx context.Context, hasOtherSessions bool) error {
	r.mu.Lock()
	if r.state != StateActive {
		r.mu.Unlock()
		return fmt.Errorf("%w: expected active, have %s", ErrWrongState, r.state)
	}
	sessionTopic, sessionSubID := r.sessionTopic, r.sessionSubID
	pairingTopic, pairingSubID := r.pairingTopic, r.pairingSubID
	r.mu.Unlock()

	if err := r.transport.Unsubscribe(ctx, sessionTopic, sessionSubID); err != nil {
		return fmt.Errorf("signapi: unsubscribe session topic: %w", err)
	}
	if !hasOtherSessions {
		if err := r.transport.Unsubscribe(ctx, pairingTopic, pairingSubID); err != nil {
			return fmt.Errorf("signapi: unsubscribe pairing topic: %w", err)
		}
	}

	r.mu.Lock()
	r.state = StateTornDown
	r.mu.Unlock()

	metrics.SessionsActive.Dec()
	metrics.SessionsClosed.Inc()
	return nil
}

// Expire forces the responder into TORN_DOWN from any state once the
// session's expiry has passed; only an ACTIVE session decrements
// SessionsActive.
func (r *SessionResponder) Expire() {
	r.mu.Lock()
	wasActive := r.state == StateActive
	r.state = StateTornDown
	r.mu.Unlock()

	if wasActive {
		metrics.SessionsActive.Dec()
	}
	metrics.SessionsExpired.Inc()
}

// handshakeErrorType buckets a HandlePairingMessage failure into a low-
// cardinality label for HandshakesFailed.
func handshakeErrorType(err error) string {
	switch {
	case errors.Is(err, ErrWrongState):
		return "invalid_state"
	case errors.Is(err, ErrNamespacesRejected):
		return "namespace_rejected"
	case errors.Is(err, ErrUnexpectedMethod):
		return "unexpected_method"
	default:
		return "protocol"
	}
}

func (r *SessionResponder) publishRequest(ctx context.Context, topic domain.Topic, method rpc.Method, params interface{}, symKey []byte) error {
	id := r.idGen.Next()
	req, err := rpc.NewRequest(id, method, params)
	if err != nil {
		return err
	}
	return r.encryptAndPublish(ctx, topic, req, method, symKey)
}

func (r *SessionResponder) publishResponse(ctx context.Context, topic domain.Topic, id domain.MessageID, method rpc.Method, result interface{}, symKey []byte) error {
	resp, err := rpc.NewSuccessResponse(id, result)
	if err != nil {
		return err
	}
	meta, _ := rpc.ResponseIrnMetadata(method)
	return r.encryptAndPublishFrame(ctx, topic, resp.Success, meta, symKey)
}

func (r *SessionResponder) encryptAndPublish(ctx context.Context, topic domain.Topic, req *rpc.Request, method rpc.Method, symKey []byte) error {
	meta, _ := rpc.RequestIrnMetadata(method)
	return r.encryptAndPublishFrame(ctx, topic, req, meta, symKey)
}

func (r *SessionResponder) encryptAndPublishFrame(ctx context.Context, topic domain.Topic, frame interface{}, meta rpc.IrnMetadata, symKey []byte) error {
	raw, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("signapi: encode frame: %w", err)
	}
	sealed, err := envelope.Encrypt(raw, symKey)
	if err != nil {
		return fmt.Errorf("signapi: encrypt frame: %w", err)
	}
	return r.transport.Publish(ctx, topic, sealed, meta.Tag, time.Duration(meta.TTL)*time.Second)
}

func decodeHexKey(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("signapi: expected 32-byte key, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func settleNamespacesFromPropose(required WireNamespaces) WireNamespaces {
	out := make(WireNamespaces, len(required))
	for key, ns := range required {
		out[key] = WireNamespace{Methods: ns.Methods, Events: ns.Events}
	}
	return out
}
