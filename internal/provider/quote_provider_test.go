package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// newQuoteTestServer fakes the two Polygon endpoints. Handlers are keyed by
// path prefix so each test controls price and reference behavior separately.
func newQuoteTestServer(t *testing.T, prevClose, reference http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v2/aggs/"):
			prevClose(w, r)
		case strings.HasPrefix(r.URL.Path, "/v3/reference/"):
			reference(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPolygonClient_BothLookupsSucceed(t *testing.T) {
	srv := newQuoteTestServer(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"results":[{"c":189.5}]}`))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"results":{"name":"Apple Inc."}}`))
		},
	)

	client := NewPolygonClient("test-key", srv.URL, zap.NewNop())
	snap := client.Quote(context.Background(), "AAPL")

	if snap.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %q", snap.Ticker)
	}
	if snap.Price == nil || *snap.Price != 189.5 {
		t.Errorf("expected price 189.5, got %v", snap.Price)
	}
	if snap.CompanyName == nil || *snap.CompanyName != "Apple Inc." {
		t.Errorf("expected company name, got %v", snap.CompanyName)
	}
}

func TestPolygonClient_FieldsFailIndependently(t *testing.T) {
	// Price lookup returns non-200; reference still resolves. The snapshot
	// must carry a nil price alongside a populated company name.
	srv := newQuoteTestServer(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"results":{"name":"Zeta Zap Zip Zone"}}`))
		},
	)

	client := NewPolygonClient("test-key", srv.URL, zap.NewNop())
	snap := client.Quote(context.Background(), "ZZZZ")

	if snap.Price != nil {
		t.Errorf("expected nil price on non-200, got %v", *snap.Price)
	}
	if snap.CompanyName == nil || *snap.CompanyName != "Zeta Zap Zip Zone" {
		t.Errorf("expected company name despite price failure, got %v", snap.CompanyName)
	}
}

func TestPolygonClient_EmptyResultsMeansNoPrice(t *testing.T) {
	// 200 with an empty results array is Polygon's "no result" shape.
	srv := newQuoteTestServer(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"results":{}}`))
		},
	)

	client := NewPolygonClient("test-key", srv.URL, zap.NewNop())
	snap := client.Quote(context.Background(), "AAPL")

	if snap.Price != nil {
		t.Errorf("expected nil price for empty results, got %v", *snap.Price)
	}
	if snap.CompanyName != nil {
		t.Errorf("expected nil company name for empty reference, got %q", *snap.CompanyName)
	}
}

func TestPolygonClient_UnreachableUpstreamNeverErrors(t *testing.T) {
	// Point at a closed server: the never-throws contract still holds and
	// the caller gets a fully degraded snapshot.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewPolygonClient("test-key", srv.URL, zap.NewNop())
	snap := client.Quote(context.Background(), "NVDA")

	if snap.Ticker != "NVDA" || snap.Price != nil || snap.CompanyName != nil {
		t.Errorf("expected bare ticker-echo snapshot, got %+v", snap)
	}
}
