// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../../pkg/domain/identifiers.go for the full license notice.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wctool/relaycore/pkg/domain"
)

var (
	publishTag uint32
	publishTTL time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish <topic> <message>",
	Short: "Publish a message on a topic",
	Args:  cobra.ExactArgs(2),
	RunE:  runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().Uint32Var(&publishTag, "tag", 0, "message tag")
	publishCmd.Flags().DurationVar(&publishTTL, "ttl", 5*time.Minute, "message time-to-live")
}

func runPublish(cmd *cobra.Command, args []string) error {
	topic, err := domain.ParseTopic(args[0])
	if err != nil {
		return fmt.Errorf("invalid topic: %w", err)
	}

	ctx := context.Background()
	client, err := connect(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Disconnect()

	if err := client.Publish(ctx, topic, args[1], publishTag, publishTTL); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	fmt.Printf("published to %s\n", topic)
	return nil
}
