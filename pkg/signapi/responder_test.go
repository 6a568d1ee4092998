// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package signapi

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/envelope"
	"github.com/wctool/relaycore/pkg/rpc"
)

type publishedFrame struct {
	topic   domain.Topic
	message string
	tag     uint32
	ttl     time.Duration
}

type fakeTransport struct {
	mu         sync.Mutex
	published  []publishedFrame
	subscribed []domain.Topic
	nextSubID  domain.SubscriptionID
}

func newFakeTransport() *fakeTransport {
	var id domain.SubscriptionID
	copy(id[:], []byte("11111111111111111111111111111111111111111111111111111111111111")[:32])
	return &fakeTransport{nextSubID: id}
}

func (f *fakeTransport) Publish(_ context.Context, topic domain.Topic, message string, tag uint32, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedFrame{topic: topic, message: message, tag: tag, ttl: ttl})
	return nil
}

func (f *fakeTransport) Subscribe(_ context.Context, topic domain.Topic) (domain.SubscriptionID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, topic)
	return f.nextSubID, nil
}

func (f *fakeTransport) Unsubscribe(_ context.Context, _ domain.Topic, _ domain.SubscriptionID) error {
	return nil
}

func hkdfExpand(t *testing.T, shared []byte) [32]byte {
	t.Helper()
	reader := hkdf.New(sha256.New, shared, nil, nil)
	var out [32]byte
	_, err := io.ReadFull(reader, out[:])
	require.NoError(t, err)
	return out
}

func TestSessionResponder_HandlePairingMessage_SettlesSession(t *testing.T) {
	curve := ecdh.X25519()
	proposerPriv, err := curve.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var proposerPub [32]byte
	copy(proposerPub[:], proposerPriv.PublicKey().Bytes())

	pairingSymKey := make([]byte, 32)
	_, err = rand.Read(pairingSymKey)
	require.NoError(t, err)
	pairingTopic := domain.TopicFromSymKey(pairingSymKey)

	propose := SessionProposeRequest{
		Relays:   []Relay{{Protocol: "irn"}},
		Proposer: Proposer{PublicKey: hex.EncodeToString(proposerPub[:]), Metadata: Metadata{Name: "dapp"}},
		RequiredNamespaces: WireNamespaces{
			"eip155": {Chains: []string{"eip155:1"}, Methods: []string{"eth_sendTransaction"}, Events: []string{"accountsChanged"}},
		},
	}
	req, err := rpc.NewRequest(domain.MessageID(1), rpc.MethodSessionPropose, propose)
	require.NoError(t, err)
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	sealed, err := envelope.Encrypt(raw, pairingSymKey)
	require.NoError(t, err)

	transport := newFakeTransport()
	supported := Namespaces{
		"eip155": {Chains: []string{"eip155:1"}, Methods: []string{"eth_sendTransaction", "personal_sign"}, Events: []string{"accountsChanged", "chainChanged"}},
	}
	responder := NewSessionResponder(transport, Metadata{Name: "wallet"}, supported)
	assert.Equal(t, StateIdle, responder.State())

	err = responder.HandlePairingMessage(context.Background(), pairingTopic, domain.SubscriptionID{}, pairingSymKey, sealed)
	require.NoError(t, err)
	assert.Equal(t, StateSettling, responder.State())

	sessionTopic := responder.SessionTopic()
	require.NotZero(t, sessionTopic)
	assert.Len(t, transport.subscribed, 1)
	assert.Equal(t, sessionTopic, transport.subscribed[0])
	require.Len(t, transport.published, 2)

	// First publish is wc_sessionSettle on the session topic.
	settleFrame := transport.published[0]
	assert.Equal(t, sessionTopic, settleFrame.topic)

	// Second publish is the wc_sessionPropose response on the pairing topic.
	proposeRespFrame := transport.published[1]
	assert.Equal(t, pairingTopic, proposeRespFrame.topic)

	plain, err := envelope.DecryptType0(proposeRespFrame.message, pairingSymKey)
	require.NoError(t, err)
	respPayload, err := rpc.DecodePayload(plain)
	require.NoError(t, err)
	require.NotNil(t, respPayload.Response)
	require.NotNil(t, respPayload.Response.Success)

	var proposeResp SessionProposeResponse
	require.NoError(t, json.Unmarshal(respPayload.Response.Success.Result, &proposeResp))

	responderPub, err := hex.DecodeString(proposeResp.ResponderPublicKey)
	require.NoError(t, err)
	responderPubKey, err := curve.NewPublicKey(responderPub)
	require.NoError(t, err)

	shared, err := proposerPriv.ECDH(responderPubKey)
	require.NoError(t, err)
	sessionSymKey := hkdfExpand(t, shared)

	settlePlain, err := envelope.DecryptType0(settleFrame.message, sessionSymKey[:])
	require.NoError(t, err)

	var settlePayload rpc.Request
	require.NoError(t, json.Unmarshal(settlePlain, &settlePayload))
	assert.Equal(t, rpc.MethodSessionSettle, settlePayload.Method)

	var settle SessionSettleRequest
	require.NoError(t, json.Unmarshal(settlePayload.Params, &settle))
	assert.Equal(t, []string{"eth_sendTransaction"}, settle.Namespaces["eip155"].Methods)
}

func TestSessionResponder_HandlePairingMessage_RejectsUnsupportedNamespace(t *testing.T) {
	curve := ecdh.X25519()
	proposerPriv, err := curve.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var proposerPub [32]byte
	copy(proposerPub[:], proposerPriv.PublicKey().Bytes())

	pairingSymKey := make([]byte, 32)
	_, err = rand.Read(pairingSymKey)
	require.NoError(t, err)
	pairingTopic := domain.TopicFromSymKey(pairingSymKey)

	propose := SessionProposeRequest{
		Proposer: Proposer{PublicKey: hex.EncodeToString(proposerPub[:])},
		RequiredNamespaces: WireNamespaces{
			"cosmos": {Chains: []string{"cosmos:cosmoshub-4"}, Methods: []string{"cosmos_signDirect"}},
		},
	}
	req, err := rpc.NewRequest(domain.MessageID(1), rpc.MethodSessionPropose, propose)
	require.NoError(t, err)
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	sealed, err := envelope.Encrypt(raw, pairingSymKey)
	require.NoError(t, err)

	transport := newFakeTransport()
	supported := Namespaces{
		"eip155": {Chains: []string{"eip155:1"}, Methods: []string{"eth_sendTransaction"}},
	}
	responder := NewSessionResponder(transport, Metadata{Name: "wallet"}, supported)

	err = responder.HandlePairingMessage(context.Background(), pairingTopic, domain.SubscriptionID{}, pairingSymKey, sealed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNamespacesRejected)
	assert.Equal(t, StateIdle, responder.State())
	assert.Empty(t, transport.published)
}

func TestSessionResponder_HandlePairingMessage_RejectsWrongMethod(t *testing.T) {
	pairingSymKey := make([]byte, 32)
	_, err := rand.Read(pairingSymKey)
	require.NoError(t, err)
	pairingTopic := domain.TopicFromSymKey(pairingSymKey)

	req, err := rpc.NewRequest(domain.MessageID(1), rpc.MethodSessionPing, SessionPingRequest{})
	require.NoError(t, err)
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	sealed, err := envelope.Encrypt(raw, pairingSymKey)
	require.NoError(t, err)

	transport := newFakeTransport()
	responder := NewSessionResponder(transport, Metadata{}, Namespaces{"eip155": {}})

	err = responder.HandlePairingMessage(context.Background(), pairingTopic, domain.SubscriptionID{}, pairingSymKey, sealed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedMethod)
}

func TestSessionResponder_StateMachine_GuardRails(t *testing.T) {
	transport := newFakeTransport()
	responder := NewSessionResponder(transport, Metadata{}, Namespaces{"eip155": {}})

	// The full HandlePairingMessage path is exercised above; here we only
	// check the state-transition guard rails from IDLE.
	err := responder.HandleSettleResult(true)
	assert.ErrorIs(t, err, ErrWrongState)

	err = responder.HandleSessionDelete(context.Background(), false)
	assert.ErrorIs(t, err, ErrWrongState)

	responder.Expire()
	assert.Equal(t, StateTornDown, responder.State())
}
