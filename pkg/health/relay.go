// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package health

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"
)

// CheckRelay reports whether the relay at address (a ws:// or wss:// URL) is
// reachable, without performing the websocket upgrade or JWT admission
// handshake — just a transport-level dial, cheap enough to run on every
// /health/ready poll.
func CheckRelay(address string) *RelayHealth {
	health := &RelayHealth{
		Address:   address,
		Connected: false,
		Status:    StatusUnhealthy,
	}

	if address == "" {
		health.Error = "relay address not configured"
		return health
	}

	u, err := url.Parse(address)
	if err != nil {
		health.Error = fmt.Sprintf("invalid relay address: %v", err)
		return health
	}

	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "wss" || u.Scheme == "https" {
			host = net.JoinHostPort(u.Hostname(), "443")
		} else {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}

	start := time.Now()

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var conn net.Conn
	if u.Scheme == "wss" || u.Scheme == "https" {
		conn, err = tls.DialWithDialer(dialer, "tcp", host, &tls.Config{ServerName: u.Hostname()})
	} else {
		conn, err = dialer.Dial("tcp", host)
	}
	if err != nil {
		health.Error = fmt.Sprintf("connection failed: %v", err)
		return health
	}
	defer conn.Close()

	latency := time.Since(start)
	health.Latency = latency.String()
	health.Connected = true

	switch {
	case latency < 500*time.Millisecond:
		health.Status = StatusHealthy
	case latency < 2*time.Second:
		health.Status = StatusDegraded
	default:
		health.Status = StatusUnhealthy
		health.Error = fmt.Sprintf("high latency: %v", latency)
	}

	return health
}
