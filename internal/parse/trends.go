// Package parse normalizes raw provider text into typed feed data. Two
// strategies exist: a labeled-line delimiter format for trend digests, and
// a tolerant JSON array extractor for list-shaped operations.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llmpulse/radar/internal/model"
)

// ItemDelimiter separates digest items in the prompted response format.
const ItemDelimiter = "---END_ITEM---"

// minFragmentLen filters out trailing noise such as a bare closing sentence
// after the last delimiter.
const minFragmentLen = 10

var (
	titleRe    = regexp.MustCompile(`\[TITLE\]:\s*(.*)`)
	summaryRe  = regexp.MustCompile(`(?s)\[SUMMARY\]:\s*(.*?)(?:\n\[|\z)`)
	categoryRe = regexp.MustCompile(`\[CATEGORY\]:\s*(.*)`)
	scoreRe    = regexp.MustCompile(`\[SCORE\]:\s*(\d+)`)
)

// placeholders supply item text when a fragment is missing a labeled line.
type placeholders struct {
	title   string
	summary string
}

func placeholdersFor(lang model.Language) placeholders {
	if lang == model.LangChinese {
		return placeholders{title: "最新 AI 进展", summary: "暂无详细摘要内容。"}
	}
	return placeholders{title: "Latest AI Update", summary: "Analysis of recent developments."}
}

// Trends splits a delimiter-formatted digest into trend items. Sources are
// batch-level grounding metadata and attach to every item. Fragments too
// short to carry a labeled line are discarded. A response with no usable
// fragments yields an empty slice, not an error.
func Trends(text string, lang model.Language, sources []model.GroundingSource, now time.Time) []model.TrendItem {
	ph := placeholdersFor(lang)

	var items []model.TrendItem
	for _, raw := range strings.Split(text, ItemDelimiter) {
		if len(strings.TrimSpace(raw)) <= minFragmentLen {
			continue
		}

		title := ph.title
		if m := titleRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
			title = strings.TrimSpace(m[1])
		}

		summary := ph.summary
		if m := summaryRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
			summary = strings.TrimSpace(m[1])
		}

		catLabel := string(model.CategoryLLM)
		if m := categoryRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
			catLabel = strings.TrimSpace(m[1])
		}

		score := 85
		if m := scoreRe.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				score = n
			}
		}

		items = append(items, model.TrendItem{
			ID:             "trend-" + uuid.NewString(),
			Title:          title,
			Summary:        summary,
			Category:       Category(catLabel),
			RelevanceScore: clampScore(score),
			Timestamp:      now,
			Sources:        sources,
		})
	}
	return items
}

// Category fuzzy-matches a free-form label against the category enum using
// case-insensitive bidirectional substring containment. Unmatched labels
// fall back to the first category.
func Category(label string) model.AICategory {
	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return model.CategoryLLM
	}
	for _, cat := range model.Categories() {
		hay := strings.ToLower(string(cat))
		if strings.Contains(needle, hay) || strings.Contains(hay, needle) {
			return cat
		}
	}
	return model.CategoryLLM
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
