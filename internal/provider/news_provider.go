package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/model"
)

// NewsAPIClient fetches recent articles from a NewsAPI-compatible service
// (the /everything endpoint, sorted by publish date, English only).
type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewNewsAPIClient creates a news provider against the given base URL,
// typically "https://newsapi.org/v2".
func NewNewsAPIClient(apiKey, baseURL string, logger *zap.Logger) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// everythingResponse is the subset of NewsAPI's /everything payload we consume.
// Description is preferred over Content since /everything truncates Content.
type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title  string `json:"title"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Fetch returns up to limit recent news items for the ticker.
func (n *NewsAPIClient) Fetch(ctx context.Context, ticker string, limit int) ([]model.NewsItem, error) {
	reqURL := fmt.Sprintf("%s/everything?q=%s&sortBy=publishedAt&language=en&apiKey=%s",
		n.baseURL, url.QueryEscape(ticker), n.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "stock-advisor/1.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching news for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news API HTTP %d for %s", resp.StatusCode, ticker)
	}

	var payload everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding news response: %w", err)
	}

	if payload.Status == "error" {
		return nil, fmt.Errorf("news API error: %s", payload.Message)
	}

	items := make([]model.NewsItem, 0, limit)
	for _, a := range payload.Articles {
		if len(items) == limit {
			break
		}
		content := a.Description
		if content == "" {
			content = a.Content
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		items = append(items, model.NewsItem{
			Title:   a.Title,
			Source:  source,
			Content: content,
		})
	}

	n.logger.Debug("fetched news",
		zap.String("ticker", ticker),
		zap.Int("count", len(items)),
	)

	return items, nil
}
