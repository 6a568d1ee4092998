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
	"time"

	"github.com/spf13/cobra"

	"github.com/wctool/relaycore/pkg/domain"
	"github.com/wctool/relaycore/pkg/relayclient"
	"github.com/wctool/relaycore/pkg/signapi"
)

var (
	pairNamespace   string
	pairChains      []string
	pairMethods     []string
	pairEvents      []string
	pairWalletName  string
	pairWalletURL   string
	pairTimeout     time.Duration
)

var pairCmd = &cobra.Command{
	Use:   "pair <wc-uri>",
	Short: "Act as the responder (wallet) side of a wc: pairing URI",
	Args:  cobra.ExactArgs(1),
	RunE:  runPair,
}

func init() {
	rootCmd.AddCommand(pairCmd)

	pairCmd.Flags().StringVar(&pairNamespace, "namespace", "eip155", "CAIP-2 namespace key to support")
	pairCmd.Flags().StringSliceVar(&pairChains, "chain", []string{"eip155:1"}, "supported chains for --namespace")
	pairCmd.Flags().StringSliceVar(&pairMethods, "method", []string{"eth_sendTransaction", "personal_sign"}, "supported methods for --namespace")
	pairCmd.Flags().StringSliceVar(&pairEvents, "event", []string{"accountsChanged", "chainChanged"}, "supported events for --namespace")
	pairCmd.Flags().StringVar(&pairWalletName, "wallet-name", "relay-cli", "wallet metadata name advertised in wc_sessionSettle")
	pairCmd.Flags().StringVar(&pairWalletURL, "wallet-url", "", "wallet metadata url advertised in wc_sessionSettle")
	pairCmd.Flags().DurationVar(&pairTimeout, "timeout", 30*time.Second, "how long to wait for the proposal after subscribing")
}

func runPair(cmd *cobra.Command, args []string) error {
	pairing, err := signapi.ParsePairing(args[0])
	if err != nil {
		return fmt.Errorf("invalid pairing uri: %w", err)
	}

	pairingTopic, err := domain.ParseTopic(pairing.Topic)
	if err != nil {
		return fmt.Errorf("invalid pairing topic: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	supported := signapi.Namespaces{
		pairNamespace: {Chains: pairChains, Methods: pairMethods, Events: pairEvents},
	}

	msgCh := make(chan relayclient.PublishedMessage, 4)
	client, err := connect(ctx, func(msg relayclient.PublishedMessage) {
		msgCh <- msg
	})
	if err != nil {
		return err
	}
	defer client.Disconnect()

	responder := signapi.NewSessionResponder(client, signapi.Metadata{Name: pairWalletName, URL: pairWalletURL}, supported)

	subID, err := client.Subscribe(ctx, pairingTopic)
	if err != nil {
		return fmt.Errorf("subscribe to pairing topic: %w", err)
	}

	fmt.Fprintf(os.Stderr, "waiting for session proposal on %s\n", pairingTopic)

	timeoutCtx, cancel := context.WithTimeout(ctx, pairTimeout)
	defer cancel()

	for {
		select {
		case <-timeoutCtx.Done():
			return fmt.Errorf("timed out waiting for session proposal")
		case msg := <-msgCh:
			if msg.Topic != pairingTopic {
				continue
			}
			if err := responder.HandlePairingMessage(ctx, pairingTopic, subID, pairing.Params.SymKey, msg.Message); err != nil {
				return fmt.Errorf("handle pairing message: %w", err)
			}
			fmt.Printf("session settled, topic=%s state=%s\n", responder.SessionTopic(), responder.State())
			return nil
		}
	}
}
