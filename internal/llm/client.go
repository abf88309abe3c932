package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/llmpulse/radar/internal/model"
	"github.com/llmpulse/radar/pkg/chatcompat"
	"github.com/llmpulse/radar/pkg/gemini"
)

// defaultTemperature keeps query responses deterministic; low randomness
// reduces fabricated dates in digest output.
const defaultTemperature = 0.1

// Request is one provider-agnostic completion request.
type Request struct {
	Prompt string

	// Temperature overrides the default of 0.1 when set. Content
	// generation uses a higher value than feed queries.
	Temperature *float64

	// EnableSearch asks for provider-side web grounding. Ignored by cores
	// without grounding support.
	EnableSearch bool

	// Schema constrains structured-output cores to a JSON array shape.
	// Chat-completion cores rely on prompt instructions instead.
	Schema *gemini.ArraySchema
}

// Result is the normalized outcome of one completion call.
type Result struct {
	Text    string
	Sources []model.GroundingSource
	Usage   model.TokenUsage
}

// Client executes one completion against a fixed core.
type Client interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}

type chatClient struct {
	provider string
	model    string
	cli      chatcompat.Client
}

func (c *chatClient) Complete(ctx context.Context, req Request) (*Result, error) {
	temp := defaultTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}

	resp, err := c.cli.ChatCompletion(ctx, chatcompat.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []chatcompat.Message{{Role: "user", Content: req.Prompt}},
		Stream:      false,
		Temperature: &temp,
	})
	if err != nil {
		var statusErr *chatcompat.StatusError
		if errors.As(err, &statusErr) {
			return nil, &ProviderError{
				Provider: c.provider,
				Status:   statusErr.StatusCode,
				Reason:   ReasonHTTPStatus,
				Message:  statusErr.Message,
				Err:      err,
			}
		}
		return nil, &ProviderError{
			Provider: c.provider,
			Reason:   ReasonNetwork,
			Message:  err.Error(),
			Err:      err,
		}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &ProviderError{
			Provider: c.provider,
			Reason:   ReasonEmptyResponse,
			Message:  "no completion content returned",
		}
	}

	return &Result{
		Text: resp.Choices[0].Message.Content,
		Usage: model.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

type geminiClient struct {
	provider string
	model    string
	cli      gemini.Client
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (*Result, error) {
	var temp *float32
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		temp = &t
	}

	resp, err := c.cli.Generate(ctx, gemini.Request{
		Model:        c.model,
		Prompt:       req.Prompt,
		Temperature:  temp,
		EnableSearch: req.EnableSearch,
		Schema:       req.Schema,
	})
	if err != nil {
		return nil, &ProviderError{
			Provider: c.provider,
			Reason:   ReasonNetwork,
			Message:  err.Error(),
			Err:      err,
		}
	}

	sources := make([]model.GroundingSource, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		sources = append(sources, model.GroundingSource{Title: s.Title, URI: s.URI})
	}

	return &Result{
		Text:    resp.Text,
		Sources: sources,
		Usage: model.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
