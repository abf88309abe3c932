package chatcompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
		wantText   string
		wantTotal  int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "cmpl-1",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
			}`,
			wantText:  "Hello!",
			wantTotal: 19,
		},
		{
			name:       "rate_limit",
			status:     http.StatusTooManyRequests,
			body:       `{"error": {"message": "rate limit exceeded"}}`,
			wantErr:    "rate limit exceeded",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "string_error_body",
			status:     http.StatusUnauthorized,
			body:       `{"error": "invalid api key"}`,
			wantErr:    "invalid api key",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non_json_error_body",
			status:     http.StatusBadGateway,
			body:       `<html>upstream exploded</html>`,
			wantErr:    "502",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:    "malformed_success_body",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "test-key")
			resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Model:    "deepseek-chat",
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				if tt.wantStatus != 0 {
					var se *StatusError
					require.True(t, errors.As(err, &se))
					assert.Equal(t, tt.wantStatus, se.HTTPStatus())
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			require.Len(t, resp.Choices, 1)
			assert.Equal(t, tt.wantText, resp.Choices[0].Message.Content)
			assert.Equal(t, tt.wantTotal, resp.Usage.TotalTokens)
		})
	}
}

func TestChatCompletion_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		assert.Equal(t, "glm-4-plus", raw["model"])
		assert.Equal(t, false, raw["stream"])
		assert.InDelta(t, 0.1, raw["temperature"], 0.001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}],"usage":{}}`))
	}))
	defer srv.Close()

	temp := 0.1
	client := NewClient(srv.URL, "test-key")
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:       "glm-4-plus",
		Messages:    []Message{{Role: "user", Content: "test"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
}

func TestChatCompletion_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	require.Error(t, err)
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested_object", `{"error":{"message":"quota exhausted"}}`, "quota exhausted"},
		{"plain_string", `{"error":"boom"}`, "boom"},
		{"not_json", `gateway timeout`, "504 Gateway Timeout"},
		{"empty_object", `{}`, "504 Gateway Timeout"},
		{"object_without_message", `{"error":{"code":42}}`, "504 Gateway Timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractErrorMessage([]byte(tt.body), "504 Gateway Timeout")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithRateLimit_Disabled(t *testing.T) {
	t.Parallel()
	c := NewClient("http://example.invalid", "k", WithRateLimit(0, 0))
	hc := c.(*httpClient)
	assert.Nil(t, hc.limiter)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c := NewClient("http://example.invalid/chat/completions", "my-key")
	hc := c.(*httpClient)
	assert.Equal(t, "my-key", hc.apiKey)
	assert.Equal(t, "http://example.invalid/chat/completions", hc.baseURL)
	assert.NotNil(t, hc.http)
	assert.Nil(t, hc.limiter)
}
