// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package relayclient

import (
	"context"
	"time"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/rpc"
)

// Publish sends message on topic with the given tag and TTL.
func (c *Client) Publish(ctx context.Context, topic domain.Topic, message string, tag uint32, ttl time.Duration) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}

	params := rpc.PublishParams{
		Topic:   topic.String(),
		Message: message,
		TTLSecs: uint32(ttl.Seconds()),
		Tag:     tag,
	}
	if verr := params.Validate(); verr != nil {
		return verr
	}

	_, err = stream.Send(ctx, rpc.MethodPublish, params)
	return err
}

// Subscribe subscribes to topic and returns the subscription id the relay
// assigned.
func (c *Client) Subscribe(ctx context.Context, topic domain.Topic) (domain.SubscriptionID, error) {
	stream, err := c.activeStream()
	if err != nil {
		return domain.SubscriptionID{}, err
	}

	raw, err := stream.Send(ctx, rpc.MethodSubscribe, rpc.SubscribeParams{Topic: topic.String()})
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
func (c *Client) Unsubscribe(ctx context.Context, topic domain.Topic, subscriptionID domain.SubscriptionID) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}

	_, err = stream.Send(ctx, rpc.MethodUnsubscribe, rpc.UnsubscribeParams{
		Topic: topic.String(),
		ID:    subscriptionID.String(),
	})
	return err
}

// FetchResult is the decoded, typed form of rpc.FetchMessagesResult.
type FetchResult struct {
	Messages []PublishedMessage
	HasMore  bool
}

// Fetch retrieves any mailboxed messages for topic.
func (c *Client) Fetch(ctx context.Context, topic domain.Topic) (FetchResult, error) {
	stream, err := c.activeStream()
	if err != nil {
		return FetchResult{}, err
	}

	raw, err := stream.Send(ctx, rpc.MethodFetchMessages, rpc.FetchMessagesParams{Topic: topic.String()})
	if err != nil {
		return FetchResult{}, err
	}

	result, err := decodeResult[rpc.FetchMessagesResult](raw)
	if err != nil {
		return FetchResult{}, err
	}
	return toFetchResult(result), nil
}

func toFetchResult(r rpc.FetchMessagesResult) FetchResult {
	out := FetchResult{HasMore: r.HasMore, Messages: make([]PublishedMessage, 0, len(r.Messages))}
	for _, m := range r.Messages {
		topic, err := domain.ParseTopic(m.Topic)
		if err != nil {
			continue
		}
		out.Messages = append(out.Messages, PublishedMessage{
			Topic:       topic,
			Message:     m.Message,
			PublishedAt: time.UnixMilli(m.PublishedAt),
			ReceivedAt:  time.Now(),
			Tag:         m.Tag,
		})
	}
	return out
}

// FetchStream repeatedly calls Fetch on each of topics until every call
// reports no more messages, delivering each page to yield. It stops at the
// first error yield returns or Fetch returns.
func (c *Client) FetchStream(ctx context.Context, topics []domain.Topic, yield func(FetchResult) error) error {
	for _, topic := range topics {
		for {
			result, err := c.Fetch(ctx, topic)
			if err != nil {
				return err
			}
			if len(result.Messages) > 0 {
				if err := yield(result); err != nil {
					return err
				}
			}
			if !result.HasMore {
				break
			}
		}
	}
	return nil
}

// BatchSubscribe subscribes to multiple topics in one round trip.
func (c *Client) BatchSubscribe(ctx context.Context, topics []domain.Topic) ([]domain.SubscriptionID, error) {
	stream, err := c.activeStream()
	if err != nil {
		return nil, err
	}

	params := rpc.BatchSubscribeParams{Topics: topicStrings(topics)}
	if verr := params.Validate(); verr != nil {
		return nil, verr
	}

	raw, err := stream.Send(ctx, rpc.MethodBatchSubscribe, params)
	if err != nil {
		return nil, err
	}

	ids, err := decodeResult[[]string](raw)
	if err != nil {
		return nil, err
	}
	return parseSubscriptionIDs(ids)
}

// BatchSubscribeBlocking is BatchSubscribe's variant that waits for the
// relay to confirm each subscription is active (rather than merely
// accepted) before responding.
func (c *Client) BatchSubscribeBlocking(ctx context.Context, topics []domain.Topic) ([]domain.SubscriptionID, error) {
	stream, err := c.activeStream()
	if err != nil {
		return nil, err
	}

	params := rpc.BatchSubscribeParams{Topics: topicStrings(topics)}
	if verr := params.Validate(); verr != nil {
		return nil, verr
	}

	raw, err := stream.Send(ctx, rpc.MethodBatchSubscribeBlocking, params)
	if err != nil {
		return nil, err
	}

	ids, err := decodeResult[[]string](raw)
	if err != nil {
		return nil, err
	}
	return parseSubscriptionIDs(ids)
}

// UnsubscribeRequest is a single member of a BatchUnsubscribe call.
type UnsubscribeRequest struct {
	Topic          domain.Topic
	SubscriptionID domain.SubscriptionID
}

// BatchUnsubscribe removes multiple subscriptions in one round trip.
func (c *Client) BatchUnsubscribe(ctx context.Context, reqs []UnsubscribeRequest) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}

	subs := make([]rpc.UnsubscribeParams, len(reqs))
	for i, r := range reqs {
		subs[i] = rpc.UnsubscribeParams{Topic: r.Topic.String(), ID: r.SubscriptionID.String()}
	}

	params := rpc.BatchUnsubscribeParams{Subscriptions: subs}
	if verr := params.Validate(); verr != nil {
		return verr
	}

	_, err = stream.Send(ctx, rpc.MethodBatchUnsubscribe, params)
	return err
}

// BatchFetch retrieves mailboxed messages for multiple topics in one round
// trip.
func (c *Client) BatchFetch(ctx context.Context, topics []domain.Topic) (FetchResult, error) {
	stream, err := c.activeStream()
	if err != nil {
		return FetchResult{}, err
	}

	params := rpc.BatchFetchMessagesParams{Topics: topicStrings(topics)}
	if verr := params.Validate(); verr != nil {
		return FetchResult{}, verr
	}

	raw, err := stream.Send(ctx, rpc.MethodBatchFetchMessages, params)
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
func (c *Client) BatchReceive(ctx context.Context, ids []domain.SubscriptionID) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	params := rpc.BatchReceiveParams{SubscriptionIDs: strs}
	if verr := params.Validate(); verr != nil {
		return verr
	}

	_, err = stream.Send(ctx, rpc.MethodBatchReceive, params)
	return err
}

// WatchRegister registers a webhook watcher, authorized by registerAuth (an
// already-minted irn_watchRegister JWT).
func (c *Client) WatchRegister(ctx context.Context, registerAuth string) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}

	_, err = stream.Send(ctx, rpc.MethodWatchRegister, rpc.WatchRegisterParams{RegisterAuth: registerAuth})
	return err
}

// WatchUnregister removes a registered webhook watcher, authorized by
// unregisterAuth (an already-minted irn_watchUnregister JWT).
func (c *Client) WatchUnregister(ctx context.Context, unregisterAuth string) error {
	stream, err := c.activeStream()
	if err != nil {
		return err
	}

	_, err = stream.Send(ctx, rpc.MethodWatchUnregister, rpc.WatchUnregisterParams{UnregisterAuth: unregisterAuth})
	return err
}

func topicStrings(topics []domain.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.String()
	}
	return out
}

func parseSubscriptionIDs(ids []string) ([]domain.SubscriptionID, error) {
	out := make([]domain.SubscriptionID, len(ids))
	for i, s := range ids {
		id, err := domain.ParseSubscriptionID(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
