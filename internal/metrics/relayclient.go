// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.


package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelayRequestsSent tracks outbound RPC requests by method.
	RelayRequestsSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay_client",
			Name:      "requests_sent_total",
			Help:      "Total number of relay RPC requests sent",
		},
		[]string{"method"},
	)

	// RelayResponsesReceived tracks inbound RPC responses by method and
	// outcome.
	RelayResponsesReceived = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay_client",
			Name:      "responses_received_total",
			Help:      "Total number of relay RPC responses received",
		},
		[]string{"method", "outcome"}, // outcome: success, error
	)

	// RelayPendingRequests tracks the size of a client's in-flight
	// request/response correlation map.
	RelayPendingRequests = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay_client",
			Name:      "pending_requests",
			Help:      "Number of relay RPC requests awaiting a response",
		},
	)

	// RelayReconnects tracks websocket reconnect attempts by outcome.
	RelayReconnects = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay_client",
			Name:      "reconnects_total",
			Help:      "Total number of relay websocket reconnect attempts",
		},
		[]string{"outcome"}, // success, failure
	)
)
