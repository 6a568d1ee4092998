// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package cacao

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/wctool/relaycore/internal/logger"
)

// ChainRPCResolver resolves a full CAIP-2 chain id (e.g. "eip155:1") to an
// RPC URL. Test
// implementations can point at a local devnet; production ones query a
// hosted blockchain-api.
type ChainRPCResolver interface {
	GetRPCURL(ctx context.Context, chainID string) (string, bool)
}

// DefaultRefreshInterval matches the 4-hour cadence the component design
// specifies for the supported-chains background refresh task.
const DefaultRefreshInterval = 4 * time.Hour

// ChainRegistry is the RPCProvider CACAO verification uses in production: a
// reader-writer-guarded map of chain id to RPC URL, kept warm by a
// background refresh goroutine. Readers are CACAO verification calls;
// the sole writer is the refresh loop.
type ChainRegistry struct {
	mu       sync.RWMutex
	urls     map[string]string
	resolver ChainRPCResolver
	interval time.Duration
	log      logger.Logger

	cancel context.CancelFunc
	done   chan struct{}

	clientsMu sync.Mutex
	clients   map[string]*ethclient.Client
}

// NewChainRegistry constructs a registry backed by resolver, refreshing on
// interval (DefaultRefreshInterval if zero).
func NewChainRegistry(resolver ChainRPCResolver, interval time.Duration, log logger.Logger) *ChainRegistry {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &ChainRegistry{
		urls:     make(map[string]string),
		resolver: resolver,
		interval: interval,
		log:      log,
		clients:  make(map[string]*ethclient.Client),
	}
}

// Start launches the background refresh goroutine. Refresh failures are
// logged and the loop continues, per the local recovery policy.
func (r *ChainRegistry) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.refreshOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.refreshOnce(ctx)
			}
		}
	}()
}

func (r *ChainRegistry) refreshOnce(ctx context.Context) {
	r.mu.RLock()
	known := make([]string, 0, len(r.urls))
	for id := range r.urls {
		known = append(known, id)
	}
	r.mu.RUnlock()

	for _, id := range known {
		url, ok := r.resolver.GetRPCURL(ctx, id)
		if !ok {
			r.log.Warn("chain rpc url refresh miss", logger.String("chain", id))
			continue
		}
		r.mu.Lock()
		r.urls[id] = url
		r.mu.Unlock()
	}
}

// Register seeds the registry with a chain it should track. Subsequent
// refresh cycles keep its RPC URL current.
func (r *ChainRegistry) Register(ctx context.Context, chainID string) {
	url, ok := r.resolver.GetRPCURL(ctx, chainID)
	if !ok {
		return
	}
	r.mu.Lock()
	r.urls[chainID] = url
	r.mu.Unlock()
}

// Close aborts the refresh task and closes any cached ethclient connections.
func (r *ChainRegistry) Close() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	for _, c := range r.clients {
		c.Close()
	}
}

func (r *ChainRegistry) urlFor(chainID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	url, ok := r.urls[chainID]
	return url, ok
}

func (r *ChainRegistry) clientFor(ctx context.Context, chainID string) (*ethclient.Client, error) {
	url, ok := r.urlFor(chainID)
	if !ok {
		return nil, fmt.Errorf("cacao: no RPC url registered for chain %q", chainID)
	}

	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	if c, ok := r.clients[url]; ok {
		return c, nil
	}
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	r.clients[url] = c
	return c, nil
}

// Call implements RPCProvider by dialing (and caching) an ethclient.Client
// for the chain's registered RPC URL and issuing eth_call. chainID is the
// full CAIP-2 id (e.g. "eip155:1"), matching what Register/GetRPCURL key on.
func (r *ChainRegistry) Call(ctx context.Context, chainID, to string, data []byte) ([]byte, error) {
	client, err := r.clientFor(ctx, chainID)
	if err != nil {
		return nil, err
	}

	msg := callMsg(to, data)
	return client.CallContract(ctx, msg, nil)
}

func callMsg(to string, data []byte) (msg struct {
	To   *common.Address
	Data []byte
}) {
	if to != "" {
		addr := common.HexToAddress(to)
		msg.To = &addr
	}
	msg.Data = data
	return
}
