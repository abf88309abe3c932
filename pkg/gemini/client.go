// Package gemini wraps the official google.golang.org/genai client behind a
// small interface. It supports plain text generation, JSON array output
// constrained by a schema, and the server-side search grounding tool.
package gemini

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	genai "google.golang.org/genai"
)

// Client generates content against the Gemini API.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request describes one generation call.
type Request struct {
	Model       string
	Prompt      string
	Temperature *float32

	// EnableSearch turns on the provider-side web search tool; citations
	// come back as Response.Sources.
	EnableSearch bool

	// Schema, when set, constrains the output to a JSON array of objects
	// with the given fields and switches the response MIME type to JSON.
	Schema *ArraySchema
}

// ArraySchema describes a JSON array of flat objects. Field types are
// "string" or "number".
type ArraySchema struct {
	Fields   map[string]string
	Required []string
}

// Source is one grounding citation.
type Source struct {
	Title string
	URI   string
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the normalized result of one generation call. Text may be
// empty when the model returned no candidates; callers decide whether that
// is an error.
type Response struct {
	Text    string
	Sources []Source
	Usage   Usage
}

type sdkClient struct {
	cli *genai.Client
}

// NewClient creates a Gemini client backed by the official SDK.
func NewClient(ctx context.Context, apiKey string) (Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: new client")
	}
	return &sdkClient{cli: cli}, nil
}

func (c *sdkClient) Generate(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(*req.Temperature)
	}
	if req.EnableSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toSDKSchema(req.Schema)
	}

	resp, err := c.cli.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: generate content")
	}

	return fromSDKResponse(resp), nil
}

func toSDKSchema(s *ArraySchema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	for name, typ := range s.Fields {
		t := genai.TypeString
		if typ == "number" {
			t = genai.TypeNumber
		}
		props[name] = &genai.Schema{Type: t}
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: props,
			Required:   s.Required,
		},
	}
}

func fromSDKResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}

	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		if cand.Content != nil {
			var sb strings.Builder
			for _, part := range cand.Content.Parts {
				if part != nil {
					sb.WriteString(part.Text)
				}
			}
			out.Text = sb.String()
		}
		if cand.GroundingMetadata != nil {
			for _, chunk := range cand.GroundingMetadata.GroundingChunks {
				if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
					continue
				}
				title := chunk.Web.Title
				if title == "" {
					title = "Latest Source"
				}
				out.Sources = append(out.Sources, Source{Title: title, URI: chunk.Web.URI})
			}
		}
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return out
}
