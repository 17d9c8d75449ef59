package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/model"
)

var testUniverse = []string{"NVDA", "AAPL", "TSLA", "MSFT", "GOOGL"}

// stubQuotes returns a snapshot from the map, or a bare ticker-echo snapshot
// (both fields nil) for unknown symbols — the provider's degraded shape.
type stubQuotes struct {
	snapshots map[string]model.QuoteSnapshot
	calls     atomic.Int64
}

func (s *stubQuotes) Quote(_ context.Context, ticker string) model.QuoteSnapshot {
	s.calls.Add(1)
	if snap, ok := s.snapshots[ticker]; ok {
		return snap
	}
	return model.QuoteSnapshot{Ticker: ticker}
}

// stubNews returns the configured items, or an error for every ticker when
// err is set.
type stubNews struct {
	items map[string][]model.NewsItem
	err   error
	calls atomic.Int64
}

func (s *stubNews) Fetch(_ context.Context, ticker string, limit int) ([]model.NewsItem, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	items := s.items[ticker]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func newTestRecommender(completer Completer, quotes *stubQuotes, news *stubNews) *Recommender {
	logger := zap.NewNop()
	return NewRecommender(
		quotes, news, NewComposer(completer, logger), nil,
		testUniverse, 5, 3, logger,
	)
}

func TestRecommender_ReturnsAtMostThree(t *testing.T) {
	// The prompt asks for 3; if the model returns more, the result is capped.
	completer := &stubCompleter{
		reply: `[
			{"ticker":"NVDA","sentiment":0.9,"summary":"a"},
			{"ticker":"AAPL","sentiment":0.8,"summary":"b"},
			{"ticker":"TSLA","sentiment":0.7,"summary":"c"},
			{"ticker":"MSFT","sentiment":0.6,"summary":"d"},
			{"ticker":"GOOGL","sentiment":0.5,"summary":"e"}
		]`,
	}
	r := newTestRecommender(completer, &stubQuotes{}, &stubNews{})

	recs := r.Compute(context.Background())
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].Ticker != "NVDA" || recs[2].Ticker != "TSLA" {
		t.Errorf("expected the first three model records in order, got %+v", recs)
	}
}

func TestRecommender_FallbackWhenEverythingFails(t *testing.T) {
	completer := &stubCompleter{err: errors.New("inference service down")}
	quotes := &stubQuotes{} // every lookup degrades to ticker echo
	news := &stubNews{err: errors.New("news service down")}
	r := newTestRecommender(completer, quotes, news)

	recs := r.Compute(context.Background())

	if len(recs) != 3 {
		t.Fatalf("expected exactly 3 fallback records, got %d", len(recs))
	}
	for i, want := range testUniverse[:3] {
		rec := recs[i]
		if rec.Ticker != want {
			t.Errorf("record %d: expected ticker %s, got %s", i, want, rec.Ticker)
		}
		if rec.CompanyName != want {
			t.Errorf("record %d: expected ticker-echo company name, got %q", i, rec.CompanyName)
		}
		if rec.Sentiment != 0 {
			t.Errorf("record %d: expected neutral sentiment, got %v", i, rec.Sentiment)
		}
		if rec.Summary != model.FallbackSummary {
			t.Errorf("record %d: expected fallback summary, got %q", i, rec.Summary)
		}
	}
}

func TestRecommender_FallbackUsesKnownCompanyNames(t *testing.T) {
	completer := &stubCompleter{err: errors.New("inference service down")}
	quotes := &stubQuotes{snapshots: map[string]model.QuoteSnapshot{
		"NVDA": {Ticker: "NVDA", CompanyName: strPtr("NVIDIA Corp")},
	}}
	r := newTestRecommender(completer, quotes, &stubNews{})

	recs := r.Compute(context.Background())
	if len(recs) != 3 {
		t.Fatalf("expected 3 fallback records, got %d", len(recs))
	}
	if recs[0].CompanyName != "NVIDIA Corp" {
		t.Errorf("expected the resolved display name in the fallback, got %q", recs[0].CompanyName)
	}
	if recs[1].CompanyName != "AAPL" {
		t.Errorf("expected ticker echo for unresolved names, got %q", recs[1].CompanyName)
	}
}

func TestRecommender_EmptyParseIsEmptyResultNotFallback(t *testing.T) {
	// A reply with no JSON array is a legitimate empty result; the fallback
	// is reserved for pipeline failures.
	completer := &stubCompleter{reply: "Markets are closed, nothing to recommend."}
	r := newTestRecommender(completer, &stubQuotes{}, &stubNews{})

	recs := r.Compute(context.Background())
	if len(recs) != 0 {
		t.Errorf("expected an empty result, got %+v", recs)
	}
}

func TestRecommender_FansOutOncePerTickerPerSource(t *testing.T) {
	completer := &stubCompleter{reply: "[]"}
	quotes := &stubQuotes{}
	news := &stubNews{}
	r := newTestRecommender(completer, quotes, news)

	r.Compute(context.Background())

	if n := quotes.calls.Load(); n != int64(len(testUniverse)) {
		t.Errorf("expected %d quote fetches, got %d", len(testUniverse), n)
	}
	if n := news.calls.Load(); n != int64(len(testUniverse)) {
		t.Errorf("expected %d news fetches, got %d", len(testUniverse), n)
	}
	if completer.calls != 1 {
		t.Errorf("expected a single LLM call, got %d", completer.calls)
	}
}

func TestRecommender_NewsFailureDegradesToEmptyList(t *testing.T) {
	completer := &stubCompleter{reply: "[]"}
	news := &stubNews{err: errors.New("rate limited")}
	r := newTestRecommender(completer, &stubQuotes{}, news)

	r.Compute(context.Background())

	// Every ticker block must still appear in the prompt, just without news
	// lines after its News: header. The instruction block has its own "- "
	// bullets, so only the data section is checked.
	for _, ticker := range testUniverse {
		if !strings.Contains(completer.prompt, "Ticker: "+ticker+"\n") {
			t.Errorf("expected ticker %s in prompt despite news failure", ticker)
		}
	}
	idx := strings.Index(completer.prompt, "Here is the data:")
	if idx == -1 {
		t.Fatal("expected the data section in the prompt")
	}
	if strings.Contains(completer.prompt[idx:], "\n- ") {
		t.Error("expected no news lines when every fetch fails")
	}
}

func TestRecommender_MergesNewsOntoMatchingTicker(t *testing.T) {
	completer := &stubCompleter{reply: "[]"}
	quotes := &stubQuotes{snapshots: map[string]model.QuoteSnapshot{
		"AAPL": {Ticker: "AAPL", CompanyName: strPtr("Apple Inc."), Price: floatPtr(189.5)},
	}}
	news := &stubNews{items: map[string][]model.NewsItem{
		"AAPL": {{Title: "Earnings beat", Source: "Wire", Content: "Up 5%."}},
	}}
	r := newTestRecommender(completer, quotes, news)

	r.Compute(context.Background())

	aaplBlock := "Ticker: AAPL\nCompany: Apple Inc.\nPrice: 189.50\nNews:\n- Earnings beat (Wire): Up 5%.\n"
	if !strings.Contains(completer.prompt, aaplBlock) {
		t.Errorf("expected AAPL news attached to the AAPL block, prompt:\n%s", completer.prompt)
	}
}
