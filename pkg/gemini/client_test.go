package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

func TestToSDKSchema(t *testing.T) {
	t.Parallel()
	s := toSDKSchema(&ArraySchema{
		Fields:   map[string]string{"subject": "string", "A": "number"},
		Required: []string{"subject", "A"},
	})

	require.Equal(t, genai.TypeArray, s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, genai.TypeObject, s.Items.Type)
	assert.Equal(t, genai.TypeString, s.Items.Properties["subject"].Type)
	assert.Equal(t, genai.TypeNumber, s.Items.Properties["A"].Type)
	assert.Equal(t, []string{"subject", "A"}, s.Items.Required)
}

func TestFromSDKResponse(t *testing.T) {
	t.Parallel()
	resp := fromSDKResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "part one "}, {Text: "part two"}}},
				GroundingMetadata: &genai.GroundingMetadata{
					GroundingChunks: []*genai.GroundingChunk{
						{Web: &genai.GroundingChunkWeb{Title: "Ars Technica", URI: "https://example.com/a"}},
						{Web: &genai.GroundingChunkWeb{URI: "https://example.com/b"}},
						{Web: &genai.GroundingChunkWeb{Title: "no uri"}},
						{},
					},
				},
			},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     100,
			CandidatesTokenCount: 40,
			TotalTokenCount:      140,
		},
	})

	assert.Equal(t, "part one part two", resp.Text)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, Source{Title: "Ars Technica", URI: "https://example.com/a"}, resp.Sources[0])
	// Missing titles get a placeholder; chunks without a URI are dropped.
	assert.Equal(t, Source{Title: "Latest Source", URI: "https://example.com/b"}, resp.Sources[1])
	assert.Equal(t, 140, resp.Usage.TotalTokens)
}

func TestFromSDKResponse_Empty(t *testing.T) {
	t.Parallel()
	resp := fromSDKResponse(&genai.GenerateContentResponse{})
	assert.Empty(t, resp.Text)
	assert.Empty(t, resp.Sources)
	assert.True(t, resp.Usage == Usage{})
}
