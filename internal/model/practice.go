package model

import "time"

// Difficulty grades a daily practice for its target audience.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the three known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ScenarioTag classifies a coding practice tip by use case.
type ScenarioTag string

const (
	ScenarioDebugging     ScenarioTag = "debugging"
	ScenarioRefactoring   ScenarioTag = "refactoring"
	ScenarioCodeReview    ScenarioTag = "code-review"
	ScenarioTesting       ScenarioTag = "testing"
	ScenarioDocumentation ScenarioTag = "documentation"
	ScenarioLearning      ScenarioTag = "learning"
	ScenarioProductivity  ScenarioTag = "productivity"
	ScenarioPromptEng     ScenarioTag = "prompt-engineering"
)

// ScenarioTags returns the closed scenario vocabulary.
func ScenarioTags() []ScenarioTag {
	return []ScenarioTag{
		ScenarioDebugging,
		ScenarioRefactoring,
		ScenarioCodeReview,
		ScenarioTesting,
		ScenarioDocumentation,
		ScenarioLearning,
		ScenarioProductivity,
		ScenarioPromptEng,
	}
}

// Valid reports whether t belongs to the closed scenario vocabulary.
func (t ScenarioTag) Valid() bool {
	for _, known := range ScenarioTags() {
		if t == known {
			return true
		}
	}
	return false
}

// DailyPractice is one generated coding-productivity tip. Field names match
// the JSON shape the generation prompt asks the model for.
type DailyPractice struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Summary          string        `json:"summary"`
	Difficulty       Difficulty    `json:"difficulty"`
	EstimatedMinutes int           `json:"estimatedMinutes"`
	Steps            []string      `json:"steps"`
	WhyItMatters     string        `json:"whyItMatters"`
	SourceURL        string        `json:"sourceUrl"`
	SourceName       string        `json:"sourceName"`
	Tools            []string      `json:"tools"`
	Tags             []string      `json:"tags"`
	ScenarioTags     []ScenarioTag `json:"scenarioTags"`
}

// GenerationStatus records the outcome of a daily generation attempt.
type GenerationStatus string

const (
	GenerationSuccess GenerationStatus = "success"
	GenerationFailed  GenerationStatus = "failed"
	GenerationPending GenerationStatus = "pending"
)

// DailyPracticeRecord is the persisted content bundle for one calendar date.
// Records are append-only and keyed by date; a date gets at most one record.
type DailyPracticeRecord struct {
	ID               string           `json:"id"`
	Date             string           `json:"date"` // YYYY-MM-DD
	MainPractice     DailyPractice    `json:"mainPractice"`
	AltPractices     []DailyPractice  `json:"altPractices"`
	ProviderID       string           `json:"aiModel"`
	GenerationStatus GenerationStatus `json:"generationStatus"`
	CreatedAt        time.Time        `json:"createdAt"`
}
