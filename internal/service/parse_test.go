package service

import (
	"testing"

	"go.uber.org/zap"
)

func TestExtractJSONArray_PlainArray(t *testing.T) {
	got, ok := extractJSONArray(`[{"ticker":"AAPL"}]`)
	if !ok {
		t.Fatal("expected a match")
	}
	if got != `[{"ticker":"AAPL"}]` {
		t.Errorf("unexpected span: %q", got)
	}
}

func TestExtractJSONArray_SurroundingProse(t *testing.T) {
	raw := "Here are my picks:\n[{\"ticker\":\"AAPL\"}]\nHope this helps."
	got, ok := extractJSONArray(raw)
	if !ok {
		t.Fatal("expected a match")
	}
	if got != `[{"ticker":"AAPL"}]` {
		t.Errorf("unexpected span: %q", got)
	}
}

func TestExtractJSONArray_NoBrackets(t *testing.T) {
	if _, ok := extractJSONArray("I could not produce a recommendation today."); ok {
		t.Error("expected no match for bracket-free text")
	}
}

func TestExtractJSONArray_ReversedBrackets(t *testing.T) {
	if _, ok := extractJSONArray("weird ] then [ nothing"); ok {
		t.Error("expected no match when the only ']' precedes the '['")
	}
}

func TestExtractJSONArray_StripsControlCharacters(t *testing.T) {
	// \x01 and \r are dropped; \n and \t survive.
	raw := "\x01[\r{\"ticker\":\n\t\"AAPL\"}]"
	got, ok := extractJSONArray(raw)
	if !ok {
		t.Fatal("expected a match")
	}
	if got != "[{\"ticker\":\n\t\"AAPL\"}]" {
		t.Errorf("unexpected span: %q", got)
	}
}

// The span runs from the first '[' to the LAST ']', so a stray ']' in
// trailing prose widens the span and breaks the parse. This pins down the
// known behavior rather than endorsing it.
func TestExtractJSONArray_GreedyTrailingBracket(t *testing.T) {
	raw := `[{"ticker":"AAPL"}] (see footnote])`
	got, ok := extractJSONArray(raw)
	if !ok {
		t.Fatal("expected a match")
	}
	if got != `[{"ticker":"AAPL"}] (see footnote]` {
		t.Errorf("unexpected span: %q", got)
	}

	recs := parseRecommendations(raw, zap.NewNop())
	if len(recs) != 0 {
		t.Errorf("expected the widened span to fail parsing, got %d records", len(recs))
	}
}

func TestParseRecommendations_RoundTrip(t *testing.T) {
	raw := `noise [ {"ticker":"AAPL","company_name":"Apple","sentiment":0.5,"summary":"ok"} ] trailing`

	recs := parseRecommendations(raw, zap.NewNop())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	rec := recs[0]
	if rec.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %q", rec.Ticker)
	}
	if rec.CompanyName != "Apple" {
		t.Errorf("expected company name Apple, got %q", rec.CompanyName)
	}
	if rec.Sentiment != 0.5 {
		t.Errorf("expected sentiment 0.5, got %v", rec.Sentiment)
	}
	if rec.Summary != "ok" {
		t.Errorf("expected summary ok, got %q", rec.Summary)
	}
}

func TestParseRecommendations_NoArray(t *testing.T) {
	recs := parseRecommendations("no structured data here", zap.NewNop())
	if len(recs) != 0 {
		t.Errorf("expected empty result, got %d records", len(recs))
	}
}

func TestParseRecommendations_MalformedJSON(t *testing.T) {
	recs := parseRecommendations(`[{"ticker": "AAPL",]`, zap.NewNop())
	if len(recs) != 0 {
		t.Errorf("expected empty result for malformed JSON, got %d records", len(recs))
	}
}

func TestParseRecommendations_MissingKeysPassThrough(t *testing.T) {
	// No schema validation: a record missing keys still comes through,
	// with zero values for the absent fields.
	recs := parseRecommendations(`[{"ticker":"NVDA"}]`, zap.NewNop())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Ticker != "NVDA" {
		t.Errorf("expected ticker NVDA, got %q", recs[0].Ticker)
	}
	if recs[0].Summary != "" || recs[0].Sentiment != 0 {
		t.Errorf("expected zero values for missing keys, got %+v", recs[0])
	}
}

func TestParseRecommendations_SentimentNotClamped(t *testing.T) {
	// Out-of-range sentiment passes through unchanged.
	recs := parseRecommendations(`[{"ticker":"TSLA","sentiment":3.5}]`, zap.NewNop())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Sentiment != 3.5 {
		t.Errorf("expected sentiment 3.5 untouched, got %v", recs[0].Sentiment)
	}
}
