package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/llmpulse/radar/internal/cache"
	"github.com/llmpulse/radar/internal/feed"
	"github.com/llmpulse/radar/internal/llm"
	"github.com/llmpulse/radar/internal/practice"
	"github.com/llmpulse/radar/internal/resilience"
	"github.com/llmpulse/radar/internal/store"
	"github.com/llmpulse/radar/internal/usage"
)

// appEnv holds the wired services the serve/generate/usage commands need.
type appEnv struct {
	Store     store.Store
	Registry  *llm.Registry
	Usage     *usage.Accumulator
	Feed      *feed.Service
	Generator *practice.Generator
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp sets up the store, provider registry, usage accumulator, feed
// service and the practice generation chain. Callers should defer
// env.Close().
func initApp(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	vendors := make(map[string]llm.VendorConfig, len(cfg.Vendors))
	for name, vc := range cfg.Vendors {
		vendors[name] = llm.VendorConfig{URL: vc.URL, APIKey: vc.APIKey, RateRPS: vc.RateRPS}
	}

	registry, err := llm.NewRegistry(ctx, llm.RegistryConfig{
		Vendors:      vendors,
		GeminiAPIKey: cfg.Gemini.APIKey,
		Timeout:      cfg.Transport.Timeout(),
		Cores:        cfg.Cores,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	acc, err := usage.NewAccumulator(ctx, st, cfg.Pricing)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	retryCfg := resilience.DefaultRetryConfig()
	if cfg.Retry.MaxRetries > 0 {
		retryCfg.MaxRetries = cfg.Retry.MaxRetries
	}
	if cfg.Retry.InitialBackoffMS > 0 {
		retryCfg.InitialBackoff = time.Duration(cfg.Retry.InitialBackoffMS) * time.Millisecond
	}
	if cfg.Retry.MaxBackoffMS > 0 {
		retryCfg.MaxBackoff = time.Duration(cfg.Retry.MaxBackoffMS) * time.Millisecond
	}

	feedSvc := feed.NewService(registry, cache.New(), acc, retryCfg, cfg.Cache.TTL())

	providers, err := buildChain(registry)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &appEnv{
		Store:     st,
		Registry:  registry,
		Usage:     acc,
		Feed:      feedSvc,
		Generator: practice.NewGenerator(providers, st),
	}, nil
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// buildChain resolves the configured generation fallback chain to clients.
func buildChain(registry *llm.Registry) ([]practice.Provider, error) {
	providers := make([]practice.Provider, 0, len(cfg.Practice.Chain))
	for _, entry := range cfg.Practice.Chain {
		client, err := registry.ChatClient(entry.Vendor, entry.Model)
		if err != nil {
			return nil, eris.Wrapf(err, "practice chain entry %s/%s", entry.Vendor, entry.Model)
		}
		providers = append(providers, practice.Provider{ID: entry.Vendor, Client: client})
	}
	return providers, nil
}
