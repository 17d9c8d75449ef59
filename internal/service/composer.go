package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/model"
)

// Completer sends a composed prompt to an LLM and returns the raw reply text.
// Satisfied by provider.CompletionProvider; tests supply stubs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TickerContext is one ticker's aggregated input to the composer: the quote
// snapshot with that ticker's news attached.
type TickerContext struct {
	model.QuoteSnapshot
	News []model.NewsItem
}

// DisplayName returns the company name if the metadata lookup produced one,
// otherwise the ticker itself.
func (t TickerContext) DisplayName() string {
	if t.CompanyName != nil {
		return *t.CompanyName
	}
	return t.Ticker
}

// Composer builds the analysis prompt from aggregated per-ticker data, sends
// it to the LLM, and parses the reply into recommendation records.
type Composer struct {
	completer Completer
	logger    *zap.Logger
}

// NewComposer creates a Composer backed by the given completion provider.
func NewComposer(completer Completer, logger *zap.Logger) *Composer {
	return &Composer{
		completer: completer,
		logger:    logger,
	}
}

// Compose runs one prompt → reply → parse cycle over the aggregated data.
// A malformed reply is not an error: it parses to an empty slice, which is a
// legitimate (if empty) result. The only error returned is a failed LLM call.
func (c *Composer) Compose(ctx context.Context, stocks []TickerContext) ([]model.Recommendation, error) {
	prompt := buildPrompt(stocks)

	reply, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("completing analysis prompt: %w", err)
	}

	c.logger.Debug("model reply received",
		zap.Int("reply_chars", len(reply)),
	)

	return parseRecommendations(reply, c.logger), nil
}

// buildPrompt embeds every ticker's quote and news into a single prompt, in
// input order, under a fixed instruction block asking for a top-3 JSON array.
func buildPrompt(stocks []TickerContext) string {
	var sb strings.Builder
	sb.WriteString(
		"You are a world-class financial AI. Given the following real-time stock data and news, " +
			"analyze and recommend the top 3 stocks to buy right now. For each, provide:\n" +
			"- Ticker\n- Company Name\n- Sentiment Score (-1 to 1)\n- Short summary (1-2 sentences)\n" +
			"Respond in JSON as an array of objects with keys: ticker, company_name, sentiment, summary.\n" +
			"Here is the data:\n",
	)

	for _, stock := range stocks {
		price := "n/a"
		if stock.Price != nil {
			price = fmt.Sprintf("%.2f", *stock.Price)
		}
		fmt.Fprintf(&sb, "\nTicker: %s\nCompany: %s\nPrice: %s\nNews:\n",
			stock.Ticker, stock.DisplayName(), price)
		for _, article := range stock.News {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", article.Title, article.Source, article.Content)
		}
	}

	return sb.String()
}
