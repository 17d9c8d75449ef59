// Package provider contains clients for the external data sources the advisor
// aggregates: market-data quotes, ticker news, and LLM completions.
package provider

import (
	"context"

	"github.com/fleveque/stock-advisor/internal/model"
)

// QuoteProvider fetches the last-close price and company name for a ticker.
//
// Note the contract: no error return. Quote lookups are deliberately lossy —
// upstream failures degrade individual snapshot fields to nil instead of
// failing the caller's whole aggregation pass.
type QuoteProvider interface {
	Quote(ctx context.Context, ticker string) model.QuoteSnapshot
}

// NewsProvider fetches up to limit recent news items for a ticker.
// Unlike quotes, news lookups do return errors; the aggregator maps a failed
// lookup to an empty list for that ticker.
type NewsProvider interface {
	Fetch(ctx context.Context, ticker string, limit int) ([]model.NewsItem, error)
}
