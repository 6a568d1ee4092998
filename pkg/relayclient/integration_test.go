// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package relayclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wctool/relaycore/pkg/domain"
)

// TestIntegration_LiveRelay exercises a real connect/subscribe/publish round
// trip against a live relay. It is skipped unless a .env.test file (or the
// environment) supplies RELAY_TEST_ADDRESS and RELAY_TEST_PROJECT_ID; copy
// .env.test.example and fill in a WalletConnect Cloud project id to run it.
func TestIntegration_LiveRelay(t *testing.T) {
	_ = godotenv.Overload(".env.test")

	address := os.Getenv("RELAY_TEST_ADDRESS")
	projectID := os.Getenv("RELAY_TEST_PROJECT_ID")
	if address == "" || projectID == "" {
		t.Skip("skipping live relay integration test: RELAY_TEST_ADDRESS/RELAY_TEST_PROJECT_ID not set")
	}

	handler := newRecordingHandler()
	client := New(handler)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := client.Connect(ctx, ConnectionOptions{Address: address, ProjectID: projectID})
	require.NoError(t, err)
	defer client.Disconnect()

	topic, err := domain.GenerateTopic()
	require.NoError(t, err)

	_, err = client.Subscribe(ctx, topic)
	require.NoError(t, err)

	err = client.Publish(ctx, topic, "integration-test-payload", 0, time.Minute)
	assert.NoError(t, err)
}
