// Package service contains the recommendation pipeline:
//
//	Recommender — concurrent quote + news fan-out over the ticker universe,
//	              merged into the composer's input, with a deterministic
//	              local fallback when the LLM path fails entirely
//	Composer    — prompt building and tolerant parsing of the model reply
//	Cache       — single-slot TTL cache serving repeated requests
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleveque/stock-advisor/internal/model"
	"github.com/fleveque/stock-advisor/internal/provider"
	"github.com/fleveque/stock-advisor/internal/storage"
)

// maxRecommendations is how many picks the prompt asks the model for, and
// how many the pipeline returns at most.
const maxRecommendations = 3

// Recommender aggregates quotes and news for a fixed ticker universe and
// asks the composer for the top picks.
//
// Compute never returns an error: upstream failures degrade field-by-field,
// and a total pipeline failure is replaced by a locally built fallback set.
type Recommender struct {
	quotes        provider.QuoteProvider
	news          provider.NewsProvider
	composer      *Composer
	refreshRepo   storage.RefreshRepository // nil disables refresh telemetry
	tickers       []string
	poolSize      int
	newsPerTicker int
	logger        *zap.Logger
}

// NewRecommender wires the aggregation pipeline. tickers is the fixed
// universe; poolSize bounds concurrent upstream fetches per Compute call.
func NewRecommender(
	quotes provider.QuoteProvider,
	news provider.NewsProvider,
	composer *Composer,
	refreshRepo storage.RefreshRepository,
	tickers []string,
	poolSize int,
	newsPerTicker int,
	logger *zap.Logger,
) *Recommender {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Recommender{
		quotes:        quotes,
		news:          news,
		composer:      composer,
		refreshRepo:   refreshRepo,
		tickers:       tickers,
		poolSize:      poolSize,
		newsPerTicker: newsPerTicker,
		logger:        logger,
	}
}

// Compute runs one full aggregation pass: fetch all quotes and news
// concurrently, merge per ticker, compose, and cap the result at three
// records. On a composer failure it returns the fallback set instead.
func (r *Recommender) Compute(ctx context.Context) []model.Recommendation {
	start := time.Now()

	stocks := r.gather(ctx)

	recs, err := r.composer.Compose(ctx, stocks)
	fallback := err != nil
	if fallback {
		r.logger.Error("recommendation pipeline failed, using fallback",
			zap.Error(err),
		)
		recs = fallbackRecommendations(stocks)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	r.recordRefresh(ctx, len(recs), fallback, time.Since(start).Milliseconds())

	return recs
}

// gather fans out one quote task and one news task per ticker over a bounded
// pool. All tasks are submitted up front; failures are captured per task
// (empty news list, degraded snapshot) and never cancel siblings.
func (r *Recommender) gather(ctx context.Context) []TickerContext {
	snapshots := make([]model.QuoteSnapshot, len(r.tickers))
	newsLists := make([][]model.NewsItem, len(r.tickers))

	var g errgroup.Group
	g.SetLimit(r.poolSize)

	for i, ticker := range r.tickers {
		g.Go(func() error {
			// Quote never errors; it degrades internally.
			snapshots[i] = r.quotes.Quote(ctx, ticker)
			return nil
		})
		g.Go(func() error {
			items, err := r.news.Fetch(ctx, ticker, r.newsPerTicker)
			if err != nil {
				r.logger.Warn("news fetch failed",
					zap.String("ticker", ticker),
					zap.Error(err),
				)
				items = []model.NewsItem{}
			}
			newsLists[i] = items
			return nil
		})
	}

	// Tasks never return errors, so Wait only joins.
	_ = g.Wait()

	stocks := make([]TickerContext, len(r.tickers))
	for i := range r.tickers {
		stocks[i] = TickerContext{
			QuoteSnapshot: snapshots[i],
			News:          newsLists[i],
		}
	}
	return stocks
}

// fallbackRecommendations builds the deterministic local result used when
// the LLM path fails: the first three universe tickers with neutral
// sentiment and a placeholder summary. No network calls.
func fallbackRecommendations(stocks []TickerContext) []model.Recommendation {
	n := len(stocks)
	if n > maxRecommendations {
		n = maxRecommendations
	}
	recs := make([]model.Recommendation, 0, n)
	for _, stock := range stocks[:n] {
		recs = append(recs, model.Recommendation{
			Ticker:      stock.Ticker,
			CompanyName: stock.DisplayName(),
			Sentiment:   0,
			Summary:     model.FallbackSummary,
		})
	}
	return recs
}

func (r *Recommender) recordRefresh(ctx context.Context, recordCount int, fallback bool, durationMs int64) {
	if r.refreshRepo == nil {
		return
	}
	refresh := &model.Refresh{
		RecordCount: recordCount,
		Fallback:    fallback,
		DurationMs:  durationMs,
	}
	if err := r.refreshRepo.Create(ctx, refresh); err != nil {
		r.logger.Error("recording refresh", zap.Error(err))
	}
}
