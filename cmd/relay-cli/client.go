// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../../pkg/domain/identifiers.go for the full license notice.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wctool/relaycore/pkg/relayclient"
	"github.com/wctool/relaycore/pkg/wsstream"
)

// Persistent flags shared by every subcommand, set in main.go's init.
var (
	relayAddress string
	projectID    string
	authToken    string
	originFlag   string
)

// cliHandler logs connection lifecycle events to stderr and forwards
// inbound publishes to a caller-supplied sink.
type cliHandler struct {
	relayclient.NoopHandler
	onMessage func(relayclient.PublishedMessage)
}

func (h cliHandler) Connected() {
	fmt.Fprintln(os.Stderr, "connected")
}

func (h cliHandler) Disconnected(frame *wsstream.CloseFrame) {
	fmt.Fprintln(os.Stderr, "disconnected")
}

func (h cliHandler) MessageReceived(msg relayclient.PublishedMessage) {
	if h.onMessage != nil {
		h.onMessage(msg)
	}
}

func (h cliHandler) InboundError(err error) {
	fmt.Fprintf(os.Stderr, "inbound error: %v\n", err)
}

func (h cliHandler) OutboundError(err error) {
	fmt.Fprintf(os.Stderr, "outbound error: %v\n", err)
}

// connect dials the relay using the persistent --address/--project-id/--auth
// flags and returns a connected client the caller must Disconnect.
func connect(ctx context.Context, onMessage func(relayclient.PublishedMessage)) (*relayclient.Client, error) {
	client := relayclient.New(cliHandler{onMessage: onMessage})

	opts := relayclient.ConnectionOptions{
		Address:   relayAddress,
		ProjectID: projectID,
		Auth:      authToken,
		Origin:    originFlag,
	}
	if err := client.Connect(ctx, opts); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return client, nil
}
