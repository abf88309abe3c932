// Package usage tracks cumulative token consumption across all provider
// calls. The running total is seeded from persisted storage at startup and
// written back synchronously after every mutation.
package usage

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/llmpulse/radar/internal/model"
)

// Store persists the running total. Load returns nil when nothing has been
// persisted yet.
type Store interface {
	LoadUsage(ctx context.Context) (*model.TokenUsage, error)
	SaveUsage(ctx context.Context, u model.TokenUsage) error
}

// Rates holds blended token pricing (USD per million tokens) for the cost
// estimate shown in the telemetry panel.
type Rates struct {
	InputPerMTok  float64 `yaml:"input_per_mtok" mapstructure:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok" mapstructure:"output_per_mtok"`
}

// DefaultRates returns blended pricing across the configured cores.
func DefaultRates() Rates {
	return Rates{InputPerMTok: 0.27, OutputPerMTok: 1.10}
}

// Accumulator merges per-call token usage into a process-wide running total.
// Addition never subtracts; only Reset zeroes the counters. Safe for
// concurrent use.
type Accumulator struct {
	mu    sync.Mutex
	total model.TokenUsage
	store Store
	rates Rates
}

// NewAccumulator creates an accumulator seeded from the store. A store with
// no persisted total seeds zero.
func NewAccumulator(ctx context.Context, store Store, rates Rates) (*Accumulator, error) {
	a := &Accumulator{store: store, rates: rates}

	loaded, err := store.LoadUsage(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "usage: load persisted total")
	}
	if loaded != nil {
		a.total = *loaded
	}
	return a, nil
}

// Add merges u into the running total and persists the new total. The
// in-memory update always happens; a persistence failure is logged and the
// new total is still returned (the store catches up on the next add).
func (a *Accumulator) Add(ctx context.Context, u model.TokenUsage) model.TokenUsage {
	a.mu.Lock()
	a.total = a.total.Add(u)
	total := a.total
	a.mu.Unlock()

	if err := a.store.SaveUsage(ctx, total); err != nil {
		zap.L().Warn("usage: persist total failed", zap.Error(err))
	}
	return total
}

// Reset zeroes the running total and persists the zero.
func (a *Accumulator) Reset(ctx context.Context) model.TokenUsage {
	a.mu.Lock()
	a.total = model.TokenUsage{}
	a.mu.Unlock()

	if err := a.store.SaveUsage(ctx, model.TokenUsage{}); err != nil {
		zap.L().Warn("usage: persist reset failed", zap.Error(err))
	}
	return model.TokenUsage{}
}

// Total returns the current running total.
func (a *Accumulator) Total() model.TokenUsage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// EstimateCost computes the estimated spend in USD for the running total.
func (a *Accumulator) EstimateCost() float64 {
	total := a.Total()
	inCost := (float64(total.PromptTokens) / 1e6) * a.rates.InputPerMTok
	outCost := (float64(total.CompletionTokens) / 1e6) * a.rates.OutputPerMTok
	return inCost + outCost
}
