// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package rpc

import "github.com/wctool/relaycore/pkg/domain"

// PublishParams is the payload of irn_publish.
type PublishParams struct {
	Topic          string `json:"topic"`
	Message        string `json:"message"`
	TTLSecs        uint32 `json:"ttl"`
	Tag            uint32 `json:"tag"`
	Prompt         bool   `json:"prompt,omitempty"`
	CorrelationID  *int64 `json:"correlationId,omitempty"`
}

// Validate checks that the publish topic decodes to 32 bytes. TTLSecs is a
// uint32, so the ttl fits in u32 by its type and is not checked here.
func (p PublishParams) Validate() *Error {
	if err := ValidateTopicHex(p.Topic); err != nil {
		return err
	}
	return nil
}

// SubscribeParams is the payload of irn_subscribe.
type SubscribeParams struct {
	Topic string `json:"topic"`
}

func (p SubscribeParams) Validate() *Error {
	return ValidateTopicHex(p.Topic)
}

// SubscriptionData is the payload of an inbound irn_subscription push.
type SubscriptionData struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
	// PublishedAt is a unix millisecond timestamp.
	PublishedAt int64  `json:"publishedAt"`
	Tag         uint32 `json:"tag"`
}

// SubscriptionParams wraps the subscription id and data of an inbound push,
// matching irn_subscription's request shape.
type SubscriptionParams struct {
	ID   string           `json:"id"`
	Data SubscriptionData `json:"data"`
}

func (p SubscriptionParams) Validate() *Error {
	if _, err := domain.ParseSubscriptionID(p.ID); err != nil {
		return &Error{Payload: PayloadInvalidSubscriptionID}
	}
	return ValidateTopicHex(p.Data.Topic)
}

// UnsubscribeParams is the payload of irn_unsubscribe.
type UnsubscribeParams struct {
	Topic string `json:"topic"`
	ID    string `json:"id"`
}

func (p UnsubscribeParams) Validate() *Error {
	if _, err := domain.ParseSubscriptionID(p.ID); err != nil {
		return &Error{Payload: PayloadInvalidSubscriptionID}
	}
	return ValidateTopicHex(p.Topic)
}

// FetchMessagesParams is the payload of irn_fetchMessages.
type FetchMessagesParams struct {
	Topic string `json:"topic"`
}

// FetchMessagesResult is irn_fetchMessages' response shape.
type FetchMessagesResult struct {
	Messages []SubscriptionData `json:"messages"`
	HasMore  bool                `json:"hasMore"`
}

// BatchSubscribeParams is the payload of irn_batchSubscribe /
// irn_batchSubscribeBlocking.
type BatchSubscribeParams struct {
	Topics []string `json:"topics"`
}

func (p BatchSubscribeParams) Validate() *Error {
	if err := ValidateBatchSize(len(p.Topics)); err != nil {
		return err
	}
	for _, t := range p.Topics {
		if err := ValidateTopicHex(t); err != nil {
			return err
		}
	}
	return nil
}

// BatchUnsubscribeParams is the payload of irn_batchUnsubscribe.
type BatchUnsubscribeParams struct {
	Subscriptions []UnsubscribeParams `json:"subscriptions"`
}

func (p BatchUnsubscribeParams) Validate() *Error {
	if err := ValidateBatchSize(len(p.Subscriptions)); err != nil {
		return err
	}
	for _, s := range p.Subscriptions {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BatchFetchMessagesParams is the payload of irn_batchFetchMessages.
type BatchFetchMessagesParams struct {
	Topics []string `json:"topics"`
}

func (p BatchFetchMessagesParams) Validate() *Error {
	if err := ValidateBatchSize(len(p.Topics)); err != nil {
		return err
	}
	for _, t := range p.Topics {
		if err := ValidateTopicHex(t); err != nil {
			return err
		}
	}
	return nil
}

// BatchReceiveParams is the payload of irn_batchReceive, acknowledging
// delivery of a batch of subscription ids.
type BatchReceiveParams struct {
	SubscriptionIDs []string `json:"subscriptionIds"`
}

func (p BatchReceiveParams) Validate() *Error {
	return ValidateBatchSize(len(p.SubscriptionIDs))
}

// WatchRegisterParams is the payload of irn_watchRegister.
type WatchRegisterParams struct {
	RegisterAuth string `json:"registerAuth"`
}

// WatchUnregisterParams is the payload of irn_watchUnregister.
type WatchUnregisterParams struct {
	UnregisterAuth string `json:"unregisterAuth"`
}
