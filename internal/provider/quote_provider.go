package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/model"
)

// PolygonClient fetches quote snapshots from a Polygon-compatible market-data
// API. Two independent lookups per ticker: previous-close aggregates for the
// price, and reference metadata for the company name. Either can fail without
// affecting the other.
type PolygonClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPolygonClient creates a quote provider against the given base URL,
// typically "https://api.polygon.io".
func NewPolygonClient(apiKey, baseURL string, logger *zap.Logger) *PolygonClient {
	return &PolygonClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// prevCloseResponse is the subset of Polygon's /v2/aggs .../prev payload we
// consume: the close price of the first (only) result bar.
type prevCloseResponse struct {
	Results []struct {
		Close float64 `json:"c"`
	} `json:"results"`
}

// referenceResponse is the subset of Polygon's /v3/reference/tickers payload
// we consume.
type referenceResponse struct {
	Results struct {
		Name string `json:"name"`
	} `json:"results"`
}

// Quote returns a snapshot for the ticker. Failed lookups leave the
// corresponding field nil and are logged, never propagated — callers always
// get a usable (if degraded) snapshot back.
func (p *PolygonClient) Quote(ctx context.Context, ticker string) model.QuoteSnapshot {
	snapshot := model.QuoteSnapshot{Ticker: ticker}

	var prev prevCloseResponse
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true&apiKey=%s", p.baseURL, ticker, p.apiKey)
	if err := p.getJSON(ctx, url, &prev); err != nil {
		p.logger.Warn("previous-close lookup failed",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	} else if len(prev.Results) > 0 {
		price := prev.Results[0].Close
		snapshot.Price = &price
	}

	var ref referenceResponse
	url = fmt.Sprintf("%s/v3/reference/tickers/%s?apiKey=%s", p.baseURL, ticker, p.apiKey)
	if err := p.getJSON(ctx, url, &ref); err != nil {
		p.logger.Warn("ticker reference lookup failed",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	} else if ref.Results.Name != "" {
		name := ref.Results.Name
		snapshot.CompanyName = &name
	}

	return snapshot
}

func (p *PolygonClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "stock-advisor/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
