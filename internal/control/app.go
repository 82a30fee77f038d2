// Package control wires configuration into a running tracer.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietddude/tracer/internal/api"
	"github.com/vietddude/tracer/internal/core/config"
	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/analyzer"
	"github.com/vietddude/tracer/internal/indexing/health"
	"github.com/vietddude/tracer/internal/infra/chain"
	"github.com/vietddude/tracer/internal/infra/chain/cached"
	"github.com/vietddude/tracer/internal/infra/chain/evm"
	"github.com/vietddude/tracer/internal/infra/chain/thor"
	redisclient "github.com/vietddude/tracer/internal/infra/redis"
	"github.com/vietddude/tracer/internal/infra/rpc"
)

// App owns the analyzer and everything it reads through.
type App struct {
	cfg      *config.AppConfig
	provider *rpc.HTTPProvider
	redis    *redisclient.Client
	analyzer *analyzer.Analyzer
	monitor  *health.Monitor
	server   *api.Server
	log      *slog.Logger
}

// NewChainClient returns the chain client for the configured node type.
func NewChainClient(t domain.ChainType, client rpc.RPCClient) (chain.Client, error) {
	switch t {
	case domain.ChainTypeThor:
		return thor.NewClient(client), nil
	case domain.ChainTypeEVM:
		return evm.NewClient(client), nil
	default:
		return nil, fmt.Errorf("unsupported chain type %q", t)
	}
}

// NewApp builds the dependency graph. Nothing listens until Start.
func NewApp(cfg *config.AppConfig) (*App, error) {
	log := slog.Default().With("component", "control")
	node := cfg.Node

	provider := rpc.NewHTTPProvider(node.Name, node.URL, node.Timeout)
	rpcClient := rpc.NewClient(node.Name, provider, rpc.RetryConfig{
		MaxAttempts:     node.Retry.MaxAttempts,
		InitialDelay:    node.Retry.InitialDelay,
		MaxDelay:        node.Retry.MaxDelay,
		BackoffMultiple: rpc.DefaultRetryConfig.BackoffMultiple,
	})

	base, err := NewChainClient(node.Type, rpcClient)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	var client chain.Client = chain.Instrument(base, node.Name)

	app := &App{cfg: cfg, provider: provider, log: log}

	var cache health.Pinger
	if cfg.Cache.Enabled {
		rc, err := redisclient.NewClient(cfg.Cache.Config)
		if err != nil {
			_ = provider.Close()
			return nil, fmt.Errorf("failed to connect to cache: %w", err)
		}
		app.redis = rc
		cache = rc
		client = cached.New(client, rc, node.Name, cfg.Cache.TTL)
		log.Info("Receipt cache enabled", "ttl", cfg.Cache.TTL)
	}

	filter := cfg.Filter.ToMatchConfig()
	app.analyzer = analyzer.New(client, filter,
		analyzer.WithConcurrency(cfg.Analyzer.Concurrency),
		analyzer.WithChainName(node.Name),
	)
	app.monitor = health.NewMonitor([]health.Node{provider}, cache)
	app.server = api.NewServer(app.analyzer, app.monitor, filter, cfg.Server.Port)

	log.Info("Tracer initialized",
		"chain", node.Name,
		"type", node.Type,
		"url", node.URL,
		"concurrency", cfg.Analyzer.Concurrency)
	return app, nil
}

// Analyzer exposes the configured analyzer, for one-shot use.
func (a *App) Analyzer() *analyzer.Analyzer {
	return a.analyzer
}

// Start serves the HTTP API in the background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("API server failed", "error", err)
		}
	}()
	a.log.Info("API server listening", "port", a.cfg.Server.Port)
	return nil
}

// Stop shuts the server down and releases connections.
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := a.provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close provider: %w", err))
	}
	return errors.Join(errs...)
}

// Close releases connections without touching the server.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.provider.Close())
	return errors.Join(errs...)
}
