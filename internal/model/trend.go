package model

import "time"

// AICategory classifies a digest item into one of the fixed content clusters.
type AICategory string

const (
	CategoryLLM      AICategory = "Large Language Models"
	CategoryRobotics AICategory = "Robotics & Embodied AI"
	CategoryGenMedia AICategory = "Generative Media"
	CategoryAgents   AICategory = "AI Agents"
	CategoryEthics   AICategory = "Policy & Ethics"
	CategoryHardware AICategory = "Compute & Hardware"
	CategoryCoding   AICategory = "Coding Efficiency"
)

// Categories returns all categories in canonical order. The first entry is
// the default used when an upstream label cannot be matched.
func Categories() []AICategory {
	return []AICategory{
		CategoryLLM,
		CategoryRobotics,
		CategoryGenMedia,
		CategoryAgents,
		CategoryEthics,
		CategoryHardware,
		CategoryCoding,
	}
}

// GroundingSource is one web citation returned by a provider-side search tool.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// TrendItem is one normalized digest entry parsed from a provider response.
// Items are immutable after parsing; ids are generated per parse and are not
// stable across requests.
type TrendItem struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	Category       AICategory        `json:"category"`
	RelevanceScore int               `json:"relevanceScore"`
	Timestamp      time.Time         `json:"timestamp"`
	Sources        []GroundingSource `json:"sources"`
}

// GitHubRepo is one trending repository entry from the repo listing operation.
type GitHubRepo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       string `json:"stars,omitempty"`
	Language    string `json:"language,omitempty"`
}

// RadarPoint is one sector intensity reading. The short "A" field name is the
// wire contract with the radar chart component.
type RadarPoint struct {
	Subject   string  `json:"subject"`
	Intensity float64 `json:"A"`
}

// BenchmarkEntry is one row of the coding benchmark table.
type BenchmarkEntry struct {
	Model  string  `json:"model"`
	Score  float64 `json:"score"`
	Metric string  `json:"metric"`
}
