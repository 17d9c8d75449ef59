// Package model defines the core data types for the stock advisor service.
// Struct tags (`json:"..."` and `db:"..."`) tell serialization libraries how
// to map fields.
package model

import "time"

// QuoteSnapshot is the per-ticker result of a market-data lookup.
// CompanyName and Price are pointers because either lookup can fail
// independently — nil means "upstream had no answer", which is a valid
// degraded state, not an error.
type QuoteSnapshot struct {
	Ticker      string   `json:"ticker"`
	CompanyName *string  `json:"company_name"`
	Price       *float64 `json:"price"`
}

// NewsItem is the subset of a news article the recommendation prompt consumes.
type NewsItem struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Recommendation is one entry of the model's top-3 picks, or a locally
// synthesized fallback. Sentiment is nominally in [-1, 1] but the model's
// value passes through unvalidated.
type Recommendation struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"company_name"`
	Sentiment   float64 `json:"sentiment"`
	Summary     string  `json:"summary"`
}

// FallbackSummary is the placeholder text used when no AI analysis is
// available for a ticker.
const FallbackSummary = "No AI analysis available."

// LLMCall tracks each call to an LLM provider for cost monitoring.
type LLMCall struct {
	ID          int64     `db:"id" json:"id"`
	Provider    string    `db:"provider" json:"provider"`
	Model       string    `db:"model" json:"model"`
	PromptChars int       `db:"prompt_chars" json:"prompt_chars"`
	Success     bool      `db:"success" json:"success"`
	DurationMs  *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Refresh records one full recommendation recompute cycle.
type Refresh struct {
	ID          int64     `db:"id" json:"id"`
	RecordCount int       `db:"record_count" json:"record_count"`
	Fallback    bool      `db:"fallback" json:"fallback"`
	DurationMs  int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
