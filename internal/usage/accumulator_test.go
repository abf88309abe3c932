package usage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmpulse/radar/internal/model"
)

type fakeStore struct {
	mu      sync.Mutex
	loaded  *model.TokenUsage
	loadErr error
	saveErr error
	saved   []model.TokenUsage
}

func (f *fakeStore) LoadUsage(ctx context.Context) (*model.TokenUsage, error) {
	return f.loaded, f.loadErr
}

func (f *fakeStore) SaveUsage(ctx context.Context, u model.TokenUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, u)
	return f.saveErr
}

func (f *fakeStore) lastSaved() model.TokenUsage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}

func TestNewAccumulatorSeedsFromStore(t *testing.T) {
	store := &fakeStore{loaded: &model.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}}

	acc, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, model.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}, acc.Total())
}

func TestNewAccumulatorEmptyStore(t *testing.T) {
	acc, err := NewAccumulator(context.Background(), &fakeStore{}, DefaultRates())
	require.NoError(t, err)
	assert.True(t, acc.Total().IsZero())
}

func TestNewAccumulatorLoadError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("disk gone")}

	_, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load persisted total")
}

func TestAddAccumulatesAndPersists(t *testing.T) {
	store := &fakeStore{}
	acc, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.NoError(t, err)

	acc.Add(context.Background(), model.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	got := acc.Add(context.Background(), model.TokenUsage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30})

	want := model.TokenUsage{PromptTokens: 30, CompletionTokens: 15, TotalTokens: 45}
	assert.Equal(t, want, got)
	assert.Equal(t, want, acc.Total())
	assert.Equal(t, want, store.lastSaved())
}

func TestAddZeroUsageIsNoOpOnTotal(t *testing.T) {
	store := &fakeStore{loaded: &model.TokenUsage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10}}
	acc, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.NoError(t, err)

	got := acc.Add(context.Background(), model.TokenUsage{})

	assert.Equal(t, model.TokenUsage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10}, got)
}

func TestAddSurvivesPersistFailure(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("connection reset")}
	acc, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.NoError(t, err)

	got := acc.Add(context.Background(), model.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2})

	// In-memory total advances even though the write failed.
	assert.Equal(t, model.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}, got)
	assert.Equal(t, got, acc.Total())
}

func TestResetZeroesAndPersists(t *testing.T) {
	store := &fakeStore{loaded: &model.TokenUsage{PromptTokens: 500, CompletionTokens: 200, TotalTokens: 700}}
	acc, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.NoError(t, err)

	got := acc.Reset(context.Background())

	assert.True(t, got.IsZero())
	assert.True(t, acc.Total().IsZero())
	assert.True(t, store.lastSaved().IsZero())
}

func TestConcurrentAdds(t *testing.T) {
	store := &fakeStore{}
	acc, err := NewAccumulator(context.Background(), store, DefaultRates())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Add(context.Background(), model.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2})
		}()
	}
	wg.Wait()

	assert.Equal(t, model.TokenUsage{PromptTokens: 50, CompletionTokens: 50, TotalTokens: 100}, acc.Total())
}

func TestEstimateCost(t *testing.T) {
	store := &fakeStore{loaded: &model.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 2_000_000, TotalTokens: 3_000_000}}
	acc, err := NewAccumulator(context.Background(), store, Rates{InputPerMTok: 0.50, OutputPerMTok: 1.50})
	require.NoError(t, err)

	assert.InDelta(t, 0.50+3.00, acc.EstimateCost(), 1e-9)
}
