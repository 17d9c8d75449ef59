package service

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/model"
)

// stripControl removes control characters from the model's reply, keeping
// tab and newline. Models occasionally emit stray control bytes that break
// json.Unmarshal even when the payload itself is fine.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s)
}

// extractJSONArray locates the JSON array inside a free-form model reply:
// the span from the first '[' to the last ']' in the cleaned text.
//
// The greedy last-']' match is load-bearing: the prompt asks for exactly one
// top-level array, and replies routinely wrap it in prose ("Here are my
// picks: [...] Hope this helps"). It also means a stray ']' in trailing prose
// corrupts the span — a known limitation kept for compatibility with the
// established prompt/response behavior (see parse tests).
func extractJSONArray(raw string) (string, bool) {
	cleaned := stripControl(raw)
	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// parseRecommendations turns a raw model reply into recommendation records.
// Failure is never propagated: no bracket pair or a JSON parse error yields
// an empty slice. No schema validation is performed — records with missing
// keys or out-of-range sentiment pass through unchanged.
func parseRecommendations(raw string, logger *zap.Logger) []model.Recommendation {
	jsonStr, ok := extractJSONArray(raw)
	if !ok {
		logger.Warn("no JSON array found in model reply",
			zap.Int("reply_chars", len(raw)),
		)
		return []model.Recommendation{}
	}

	var recs []model.Recommendation
	if err := json.Unmarshal([]byte(jsonStr), &recs); err != nil {
		logger.Warn("model reply JSON did not parse",
			zap.Error(err),
			zap.Int("span_chars", len(jsonStr)),
		)
		return []model.Recommendation{}
	}

	return recs
}
