// Package api exposes the feed, usage and practice operations over HTTP.
// All feed endpoints succeed with empty data on upstream failure; only the
// practice generation endpoint surfaces provider errors as a failure payload.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/llmpulse/radar/internal/feed"
	"github.com/llmpulse/radar/internal/llm"
	"github.com/llmpulse/radar/internal/model"
	"github.com/llmpulse/radar/internal/practice"
	"github.com/llmpulse/radar/internal/store"
	"github.com/llmpulse/radar/internal/usage"
)

// langMatcher resolves Accept-Language headers against the supported
// locales; English wins ties.
var langMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Chinese,
})

// Server holds the wired application services behind the HTTP routes.
type Server struct {
	feed      *feed.Service
	generator *practice.Generator
	store     store.Store
	usage     *usage.Accumulator
	registry  *llm.Registry
}

// New builds the API server.
func New(f *feed.Service, g *practice.Generator, st store.Store, acc *usage.Accumulator, reg *llm.Registry) *Server {
	return &Server{feed: f, generator: g, store: st, usage: acc, registry: reg}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Accept-Language"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cores", s.handleCores)
		r.Get("/trends", s.handleTrends)
		r.Get("/radar", s.handleRadar)
		r.Get("/repos", s.handleRepos)
		r.Get("/benchmarks", s.handleBenchmarks)
		r.Post("/analysis", s.handleAnalysis)
		r.Get("/usage", s.handleUsage)
		r.Post("/usage/reset", s.handleUsageReset)
		r.Get("/practice", s.handlePracticeList)
		r.Get("/practice/{date}", s.handlePracticeGet)
		r.Post("/practice/generate", s.handlePracticeGenerate)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Cores())
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	res := s.feed.Trends(r.Context(), feed.TrendsQuery{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Lang:     requestLanguage(r),
		CoreID:   r.URL.Query().Get("core"),
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Radar(r.Context(), requestLanguage(r), r.URL.Query().Get("core")))
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Repos(r.Context(), requestLanguage(r), r.URL.Query().Get("core")))
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Benchmarks(r.Context(), requestLanguage(r), r.URL.Query().Get("core")))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Lang  string `json:"lang"`
		Core  string `json:"core"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	lang := requestLanguage(r)
	if req.Lang != "" {
		lang = model.ParseLanguage(req.Lang)
	}
	writeJSON(w, http.StatusOK, s.feed.Analysis(r.Context(), req.Title, lang, req.Core))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"usage":            s.usage.Total(),
		"estimatedCostUSD": s.usage.EstimateCost(),
	})
}

func (s *Server) handleUsageReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"usage": s.usage.Reset(r.Context())})
}

func (s *Server) handlePracticeGet(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	rec, err := s.store.GetPractice(r.Context(), date)
	if err != nil {
		zap.L().Error("api: get practice failed", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no practice record for date")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePracticeList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.store.ListPractices(r.Context(), limit)
	if err != nil {
		zap.L().Error("api: list practices failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if recs == nil {
		recs = []model.DailyPracticeRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handlePracticeGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	rec, err := s.generator.GenerateForDate(r.Context(), req.Date)
	if err != nil {
		zap.L().Error("api: practice generation failed", zap.String("date", req.Date), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"status": model.GenerationFailed,
			"date":   req.Date,
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// requestLanguage resolves the response locale from the lang query param,
// falling back to Accept-Language matching.
func requestLanguage(r *http.Request) model.Language {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return model.ParseLanguage(lang)
	}

	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return model.LangEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return model.LangEnglish
	}
	_, idx, _ := langMatcher.Match(tags...)
	if idx == 1 {
		return model.LangChinese
	}
	return model.LangEnglish
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
