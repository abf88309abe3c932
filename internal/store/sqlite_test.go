package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmpulse/radar/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "radar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func samplePractice(seq string) model.DailyPractice {
	return model.DailyPractice{
		ID:               "practice-20250601-" + seq,
		Title:            "用 AI 重构遗留代码",
		Summary:          "让模型先解释再重构",
		Difficulty:       model.DifficultyIntermediate,
		EstimatedMinutes: 20,
		Steps:            []string{"粘贴函数", "要求解释", "逐步重构"},
		WhyItMatters:     "降低重构风险",
		SourceURL:        "https://example.com/guide",
		SourceName:       "Example Guide",
		Tools:            []string{"cursor"},
		Tags:             []string{"refactoring"},
		ScenarioTags:     []model.ScenarioTag{model.ScenarioRefactoring},
	}
}

func sampleRecord(date string) model.DailyPracticeRecord {
	return model.DailyPracticeRecord{
		ID:               uuid.NewString(),
		Date:             date,
		MainPractice:     samplePractice("1"),
		AltPractices:     []model.DailyPractice{samplePractice("2"), samplePractice("3")},
		ProviderID:       "deepseek",
		GenerationStatus: model.GenerationSuccess,
		CreatedAt:        time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC),
	}
}

func TestUsageRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loaded, err := s.LoadUsage(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	want := model.TokenUsage{PromptTokens: 120, CompletionTokens: 45, TotalTokens: 165}
	require.NoError(t, s.SaveUsage(ctx, want))

	loaded, err = s.LoadUsage(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, want, *loaded)
}

func TestSaveUsageOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUsage(ctx, model.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}))
	require.NoError(t, s.SaveUsage(ctx, model.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}))

	loaded, err := s.LoadUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, loaded.TotalTokens)
}

func TestPracticeInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetPractice(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := sampleRecord("2025-06-01")
	inserted, err := s.InsertPractice(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, inserted.ID)

	got, err = s.GetPractice(ctx, "2025-06-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.MainPractice, got.MainPractice)
	assert.Equal(t, rec.AltPractices, got.AltPractices)
	assert.Equal(t, "deepseek", got.ProviderID)
	assert.Equal(t, model.GenerationSuccess, got.GenerationStatus)
}

func TestPracticeDuplicateDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertPractice(ctx, sampleRecord("2025-06-01"))
	require.NoError(t, err)

	_, err = s.InsertPractice(ctx, sampleRecord("2025-06-01"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateDate))
}

func TestListPractices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2025-06-01", "2025-06-02", "2025-06-03"} {
		_, err := s.InsertPractice(ctx, sampleRecord(date))
		require.NoError(t, err)
	}

	recs, err := s.ListPractices(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2025-06-03", recs[0].Date)
	assert.Equal(t, "2025-06-02", recs[1].Date)
}

func TestListPracticesDefaultLimit(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.ListPractices(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
