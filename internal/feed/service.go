// Package feed orchestrates the read-oriented AI fetch operations: trend
// digests, repo listings, radar intensity, benchmark tables and deep
// analysis. Every operation follows the same pipeline: cache check, prompt
// build, provider call under retry, parse, cache store, usage accounting.
// Failures degrade to empty results; the feed layer never returns an error
// to its caller.
package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/llmpulse/radar/internal/cache"
	"github.com/llmpulse/radar/internal/llm"
	"github.com/llmpulse/radar/internal/model"
	"github.com/llmpulse/radar/internal/parse"
	"github.com/llmpulse/radar/internal/resilience"
	"github.com/llmpulse/radar/pkg/gemini"
)

// DefaultCacheTTL bounds how long a feed response is re-served.
const DefaultCacheTTL = 5 * time.Minute

// Resolver supplies clients for the configured cores.
type Resolver interface {
	Resolve(id string) llm.Core
	ClientFor(core llm.Core) (llm.Client, error)
}

// UsageSink receives token usage from cache-miss fetches.
type UsageSink interface {
	Add(ctx context.Context, u model.TokenUsage) model.TokenUsage
}

// Service runs the feed operations. Safe for concurrent use.
type Service struct {
	resolver Resolver
	cache    *cache.Cache
	usage    UsageSink
	retry    resilience.RetryConfig
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds a feed service. ttl <= 0 selects DefaultCacheTTL.
func NewService(resolver Resolver, c *cache.Cache, usage UsageSink, retry resilience.RetryConfig, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		resolver: resolver,
		cache:    c,
		usage:    usage,
		retry:    retry,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithNow injects a clock for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// TrendsQuery selects a trend digest fetch.
type TrendsQuery struct {
	Query    string
	Category string
	Lang     model.Language
	CoreID   string
}

// Result pairs operation data with the token usage that produced it. Usage
// is zero on failure and historical on a cache hit.
type Result[T any] struct {
	Data  T                `json:"data"`
	Usage model.TokenUsage `json:"usage"`
}

type payload[T any] struct {
	data  T
	usage model.TokenUsage
}

// Trends fetches the trend digest. A category-filtered query also kicks off
// a detached repo listing prefetch so the listing is warm when the caller
// asks for it; the digest returns without waiting for it.
func (s *Service) Trends(ctx context.Context, q TrendsQuery) Result[[]model.TrendItem] {
	core := s.resolver.Resolve(q.CoreID)
	key := cache.Key("trends", string(q.Lang), core.ID, q.Category, q.Query)

	res := run(ctx, s, "trends", key, core, llm.Request{
		Prompt:       trendsPrompt(q.Lang, q.Query, q.Category, s.now()),
		EnableSearch: core.SupportsGrounding,
	}, func(r *llm.Result) []model.TrendItem {
		return parse.Trends(r.Text, q.Lang, r.Sources, s.now())
	})

	if q.Category != "" {
		s.prefetchRepos(ctx, q.Lang, q.CoreID)
	}
	return res
}

// Repos fetches the trending repository listing.
func (s *Service) Repos(ctx context.Context, lang model.Language, coreID string) Result[[]model.GitHubRepo] {
	core := s.resolver.Resolve(coreID)
	key := cache.Key("repos", string(lang), core.ID)

	req := llm.Request{
		Prompt:       reposPrompt(lang, s.now()),
		EnableSearch: core.SupportsGrounding,
	}
	if core.Family == llm.FamilyNativeStructured {
		req.Schema = &gemini.ArraySchema{
			Fields: map[string]string{
				"name": "string", "url": "string", "description": "string",
				"stars": "string", "language": "string",
			},
			Required: []string{"name", "url", "description"},
		}
	}

	return run(ctx, s, "repos", key, core, req, func(r *llm.Result) []model.GitHubRepo {
		return parse.DecodeList[model.GitHubRepo](r.Text)
	})
}

// Radar fetches sector R&D intensity readings.
func (s *Service) Radar(ctx context.Context, lang model.Language, coreID string) Result[[]model.RadarPoint] {
	core := s.resolver.Resolve(coreID)
	key := cache.Key("radar", string(lang), core.ID)

	req := llm.Request{Prompt: radarPrompt(lang, s.now())}
	if core.Family == llm.FamilyNativeStructured {
		req.Schema = &gemini.ArraySchema{
			Fields:   map[string]string{"subject": "string", "A": "number"},
			Required: []string{"subject", "A"},
		}
	}

	return run(ctx, s, "radar", key, core, req, func(r *llm.Result) []model.RadarPoint {
		return parse.DecodeList[model.RadarPoint](r.Text)
	})
}

// Benchmarks fetches the coding benchmark table.
func (s *Service) Benchmarks(ctx context.Context, lang model.Language, coreID string) Result[[]model.BenchmarkEntry] {
	core := s.resolver.Resolve(coreID)
	key := cache.Key("benchmarks", string(lang), core.ID)

	req := llm.Request{
		Prompt:       benchmarksPrompt(lang, s.now()),
		EnableSearch: core.SupportsGrounding,
	}
	if core.Family == llm.FamilyNativeStructured {
		req.Schema = &gemini.ArraySchema{
			Fields:   map[string]string{"model": "string", "score": "number", "metric": "string"},
			Required: []string{"model", "score", "metric"},
		}
	}

	return run(ctx, s, "benchmarks", key, core, req, func(r *llm.Result) []model.BenchmarkEntry {
		return parse.DecodeList[model.BenchmarkEntry](r.Text)
	})
}

// Analysis fetches a markdown deep-dive for one trend title. Grounded cores
// get a sources appendix built from their citations. Failure yields an
// empty string.
func (s *Service) Analysis(ctx context.Context, title string, lang model.Language, coreID string) Result[string] {
	core := s.resolver.Resolve(coreID)
	key := cache.Key("analysis", string(lang), core.ID, title)

	return run(ctx, s, "analysis", key, core, llm.Request{
		Prompt:       analysisPrompt(lang, title, s.now()),
		EnableSearch: core.SupportsGrounding,
	}, func(r *llm.Result) string {
		return withSourcesAppendix(r.Text, r.Sources, lang)
	})
}

// run is the shared fetch pipeline. Cache hits return the stored data and
// historical usage without touching the provider or the usage sink. Any
// failure is logged and collapses to the zero value with zero usage.
func run[T any](ctx context.Context, s *Service, op, key string, core llm.Core, req llm.Request, decode func(*llm.Result) T) Result[T] {
	client, err := s.resolver.ClientFor(core)
	if err != nil {
		zap.L().Warn("feed: core unavailable",
			zap.String("operation", op),
			zap.String("core", core.ID),
			zap.Error(err))
		var zero T
		return Result[T]{Data: zero}
	}

	retryCfg := s.retry
	if retryCfg.OnRetry == nil {
		retryCfg.OnRetry = resilience.RetryLogger(core.Provider, op)
	}

	p, hit, err := cache.GetOrCompute(ctx, s.cache, key, s.ttl, func(ctx context.Context) (payload[T], error) {
		res, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*llm.Result, error) {
			return client.Complete(ctx, req)
		})
		if err != nil {
			return payload[T]{}, err
		}
		return payload[T]{data: decode(res), usage: res.Usage}, nil
	})
	if err != nil {
		zap.L().Warn("feed: fetch failed",
			zap.String("operation", op),
			zap.String("core", core.ID),
			zap.String("provider", core.Provider),
			zap.Error(err))
		var zero T
		return Result[T]{Data: zero}
	}

	if !hit {
		s.usage.Add(ctx, p.usage)
	}
	return Result[T]{Data: p.data, Usage: p.usage}
}

// prefetchRepos warms the repo listing cache without blocking or inheriting
// the caller's cancellation.
func (s *Service) prefetchRepos(ctx context.Context, lang model.Language, coreID string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("feed: repo prefetch panic", zap.Any("panic", r))
			}
		}()
		s.Repos(detached, lang, coreID)
	}()
}

func withSourcesAppendix(text string, sources []model.GroundingSource, lang model.Language) string {
	if text == "" || len(sources) == 0 {
		return text
	}

	heading := "Real-time Sources"
	if lang == model.LangChinese {
		heading = "实时参考来源"
	}

	appendix := fmt.Sprintf("\n\n### %s\n", heading)
	for _, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URI
		}
		appendix += fmt.Sprintf("- [%s](%s)\n", title, src.URI)
	}
	return text + appendix
}
