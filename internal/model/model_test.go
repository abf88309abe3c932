package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	b := TokenUsage{PromptTokens: 2, CompletionTokens: 3, TotalTokens: 5}

	got := a.Add(b)
	assert.Equal(t, TokenUsage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20}, got)
	// Receiver is unchanged.
	assert.Equal(t, 15, a.TotalTokens)
}

func TestTokenUsageIsZero(t *testing.T) {
	assert.True(t, TokenUsage{}.IsZero())
	assert.False(t, TokenUsage{TotalTokens: 1}.IsZero())
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LangChinese, ParseLanguage("zh"))
	assert.Equal(t, LangEnglish, ParseLanguage("en"))
	assert.Equal(t, LangEnglish, ParseLanguage(""))
	assert.Equal(t, LangEnglish, ParseLanguage("fr"))
}

func TestCategoriesDefaultFirst(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 7)
	assert.Equal(t, CategoryLLM, cats[0])
}

func TestDifficultyValid(t *testing.T) {
	assert.True(t, DifficultyBeginner.Valid())
	assert.True(t, DifficultyIntermediate.Valid())
	assert.True(t, DifficultyAdvanced.Valid())
	assert.False(t, Difficulty("expert").Valid())
	assert.False(t, Difficulty("").Valid())
}

func TestScenarioTagValid(t *testing.T) {
	for _, tag := range ScenarioTags() {
		assert.True(t, tag.Valid(), string(tag))
	}
	assert.False(t, ScenarioTag("gaming").Valid())
}

func TestRadarPointWireShape(t *testing.T) {
	b, err := json.Marshal(RadarPoint{Subject: "Agents", Intensity: 88})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"Agents","A":88}`, string(b))
}

func TestTrendItemJSONFieldNames(t *testing.T) {
	b, err := json.Marshal(TrendItem{ID: "trend-1", RelevanceScore: 90})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"relevanceScore":90`)
	assert.Contains(t, string(b), `"id":"trend-1"`)
}

func TestDailyPracticeRecordProviderFieldName(t *testing.T) {
	b, err := json.Marshal(DailyPracticeRecord{ProviderID: "deepseek"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"aiModel":"deepseek"`)
}
