// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../../pkg/domain/identifiers.go for the full license notice.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "Relay Core CLI - publish, subscribe and pair over the WalletConnect relay",
	Long: `relay-cli drives a relayclient.Client against a live relay for manual testing
and scripting:

- publish:   send a message on a topic
- subscribe: print messages received on a topic until interrupted
- pair:      act as the responder (wallet) side of a wc: pairing URI`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&relayAddress, "address", "wss://relay.walletconnect.com", "relay websocket address")
	rootCmd.PersistentFlags().StringVar(&projectID, "project-id", "", "WalletConnect Cloud project id")
	rootCmd.PersistentFlags().StringVar(&authToken, "auth", "", "pre-minted relay-admission JWT")
	rootCmd.PersistentFlags().StringVar(&originFlag, "origin", "", "Origin header for allow-list validation")

	// Note: subcommands are registered in their respective files.
	// - publish.go:   publishCmd
	// - subscribe.go: subscribeCmd
	// - pair.go:      pairCmd
}
