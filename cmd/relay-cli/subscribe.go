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
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/relayclient"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <topic>",
	Short: "Subscribe to a topic and print messages until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubscribe,
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	topic, err := domain.ParseTopic(args[0])
	if err != nil {
		return fmt.Errorf("invalid topic: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := connect(ctx, func(msg relayclient.PublishedMessage) {
		fmt.Printf("[%s] tag=%d %s\n", msg.Topic, msg.Tag, msg.Message)
	})
	if err != nil {
		return err
	}
	defer client.Disconnect()

	if _, err := client.Subscribe(ctx, topic); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	fmt.Fprintf(os.Stderr, "subscribed to %s, press ctrl-c to stop\n", topic)
	<-ctx.Done()
	return nil
}
