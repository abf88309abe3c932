// Package practice generates the persisted daily coding-practice bundle.
// Generation runs through an ordered provider fallback chain; unlike the
// read-oriented feed operations, a total failure here propagates as an
// error so the scheduler can alert an operator.
package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/llmpulse/radar/internal/llm"
	"github.com/llmpulse/radar/internal/model"
	"github.com/llmpulse/radar/internal/parse"
	"github.com/llmpulse/radar/internal/store"
)

// generationTemperature is higher than the feed default; varied phrasing is
// desirable for generated content.
const generationTemperature = 0.7

// Provider is one link in the fallback chain.
type Provider struct {
	ID     string
	Client llm.Client
}

// Store is the narrow persistence contract the generator needs.
type Store interface {
	GetPractice(ctx context.Context, date string) (*model.DailyPracticeRecord, error)
	InsertPractice(ctx context.Context, rec model.DailyPracticeRecord) (*model.DailyPracticeRecord, error)
}

// Generator runs the daily generation chain and persists the result.
type Generator struct {
	providers []Provider
	store     Store
	now       func() time.Time
}

// NewGenerator builds a generator over an ordered provider chain.
func NewGenerator(providers []Provider, st Store) *Generator {
	return &Generator{providers: providers, store: st, now: time.Now}
}

// WithNow injects a clock for tests.
func (g *Generator) WithNow(now func() time.Time) *Generator {
	g.now = now
	return g
}

type generationPayload struct {
	MainPractice model.DailyPractice   `json:"mainPractice"`
	AltPractices []model.DailyPractice `json:"altPractices"`
}

// GenerateForDate returns the practice record for date (YYYY-MM-DD),
// generating and persisting one if none exists. An existing record makes
// this a pure read with no provider calls. When every provider fails, the
// returned error names each provider and its failure reason.
func (g *Generator) GenerateForDate(ctx context.Context, date string) (*model.DailyPracticeRecord, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, eris.Wrapf(err, "practice: invalid date %q", date)
	}

	existing, err := g.store.GetPractice(ctx, date)
	if err != nil {
		return nil, eris.Wrap(err, "practice: check existing record")
	}
	if existing != nil {
		zap.L().Info("practice: record exists, skipping generation", zap.String("date", date))
		return existing, nil
	}

	prompt := generationPrompt(day)
	temp := generationTemperature

	var failures []string
	for _, p := range g.providers {
		zap.L().Info("practice: trying provider", zap.String("provider", p.ID), zap.String("date", date))

		res, err := p.Client.Complete(ctx, llm.Request{Prompt: prompt, Temperature: &temp})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", p.ID, err.Error()))
			zap.L().Warn("practice: provider call failed", zap.String("provider", p.ID), zap.Error(err))
			continue
		}

		payload, err := decodeGeneration(res.Text)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", p.ID, err.Error()))
			zap.L().Warn("practice: provider output rejected", zap.String("provider", p.ID), zap.Error(err))
			continue
		}

		zap.L().Info("practice: generation succeeded", zap.String("provider", p.ID), zap.String("date", date))
		return g.persist(ctx, date, p.ID, payload)
	}

	return nil, eris.Errorf("practice: all providers failed: %s", strings.Join(failures, "; "))
}

func (g *Generator) persist(ctx context.Context, date, providerID string, payload *generationPayload) (*model.DailyPracticeRecord, error) {
	rec := model.DailyPracticeRecord{
		ID:               uuid.NewString(),
		Date:             date,
		MainPractice:     payload.MainPractice,
		AltPractices:     payload.AltPractices,
		ProviderID:       providerID,
		GenerationStatus: model.GenerationSuccess,
		CreatedAt:        g.now(),
	}

	inserted, err := g.store.InsertPractice(ctx, rec)
	if err != nil {
		// A concurrent run won the date; serve its record.
		if eris.Is(err, store.ErrDuplicateDate) {
			return g.store.GetPractice(ctx, date)
		}
		return nil, eris.Wrap(err, "practice: persist record")
	}
	return inserted, nil
}

// decodeGeneration parses and validates one provider's generation output.
// Any schema violation rejects the whole output so the chain advances.
func decodeGeneration(text string) (*generationPayload, error) {
	var payload generationPayload
	if err := json.Unmarshal([]byte(parse.StripFences(text)), &payload); err != nil {
		return nil, eris.Wrap(err, "decode generation JSON")
	}

	if err := Validate(&payload.MainPractice); err != nil {
		return nil, eris.Wrap(err, "main practice")
	}
	for i := range payload.AltPractices {
		if err := Validate(&payload.AltPractices[i]); err != nil {
			return nil, eris.Wrapf(err, "alt practice %d", i)
		}
	}
	if payload.AltPractices == nil {
		payload.AltPractices = []model.DailyPractice{}
	}
	return &payload, nil
}

// Validate checks one practice against the content schema and normalizes
// its optional fields in place.
func Validate(p *model.DailyPractice) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return eris.New("missing id")
	case strings.TrimSpace(p.Title) == "":
		return eris.New("missing title")
	case strings.TrimSpace(p.Summary) == "":
		return eris.New("missing summary")
	case strings.TrimSpace(p.WhyItMatters) == "":
		return eris.New("missing whyItMatters")
	case !p.Difficulty.Valid():
		return eris.Errorf("invalid difficulty %q", p.Difficulty)
	case p.EstimatedMinutes <= 0:
		return eris.Errorf("invalid estimatedMinutes %d", p.EstimatedMinutes)
	case len(p.Steps) == 0:
		return eris.New("missing steps")
	}

	if p.Tools == nil {
		p.Tools = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.ScenarioTags = normalizeScenarioTags(p.ScenarioTags)
	return nil
}

// normalizeScenarioTags keeps known tags (case-insensitively), caps the list
// at three and falls back to productivity when nothing survives.
func normalizeScenarioTags(tags []model.ScenarioTag) []model.ScenarioTag {
	var out []model.ScenarioTag
	seen := make(map[model.ScenarioTag]bool)
	for _, raw := range tags {
		tag := model.ScenarioTag(strings.ToLower(strings.TrimSpace(string(raw))))
		if !tag.Valid() || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
		if len(out) == 3 {
			break
		}
	}
	if len(out) == 0 {
		return []model.ScenarioTag{model.ScenarioProductivity}
	}
	return out
}
