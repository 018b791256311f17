package handlers_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/omnibothq/omnibot/internal/cache"
	"github.com/omnibothq/omnibot/internal/crypto"
	"github.com/omnibothq/omnibot/internal/http/handlers"
	"github.com/omnibothq/omnibot/internal/resolver"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type downProvider struct{}

func (downProvider) Name() string { return "down" }

func (downProvider) Attempt(ctx context.Context, symbol string) (crypto.Result, error) {
	return crypto.Result{}, errors.New("provider down")
}

func newOfflineCryptoHandler() *handlers.CryptoHandler {
	svc := crypto.NewServiceWithProviders(
		[]resolver.Provider[string, crypto.Result]{downProvider{}},
		testLogger(), nil,
	)

	return handlers.NewCryptoHandler(svc, cache.NewMemory(time.Minute))
}

// with every upstream down, btc must come back from the built-in table

func TestPriceServesFallbackTable(t *testing.T) {
	h := newOfflineCryptoHandler()
	r := setupRouter(http.MethodPost, "/api/crypto/price", h.Price)

	w := doJSON(t, r, http.MethodPost, "/api/crypto/price", `{"symbol": "btc"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d (body %s)", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	if body["symbol"] != "BTC" || body["name"] != "Bitcoin" {
		t.Fatalf("unexpected identity fields: %v", body)
	}

	if body["source"] != resolver.SourceSynthetic {
		t.Fatalf("fallback data must be flagged, got source %v", body["source"])
	}

	quote, ok := body["crypto"].(map[string]any)

	if !ok {
		t.Fatalf("missing crypto object in %v", body)
	}

	if quote["price"] != 51432.78 {
		t.Fatalf("got price %v, want 51432.78", quote["price"])
	}
}

func TestPriceRejectsBlankSymbol(t *testing.T) {
	h := newOfflineCryptoHandler()
	r := setupRouter(http.MethodPost, "/api/crypto/price", h.Price)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{}`},
		{name: "whitespace_only", body: `{"symbol": "   "}`},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/crypto/price", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestPriceServesCachedQuote(t *testing.T) {
	calls := 0

	svc := crypto.NewServiceWithProviders(
		[]resolver.Provider[string, crypto.Result]{&countingProvider{calls: &calls}},
		testLogger(), nil,
	)

	h := handlers.NewCryptoHandler(svc, cache.NewMemory(time.Minute))
	r := setupRouter(http.MethodPost, "/api/crypto/price", h.Price)

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/crypto/price", `{"symbol": "ETH"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}

	if calls != 1 {
		t.Fatalf("provider called %d times, want 1 (cache miss only)", calls)
	}
}

type countingProvider struct {
	calls *int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Attempt(ctx context.Context, symbol string) (crypto.Result, error) {
	*p.calls++
	return crypto.Result{Quote: crypto.Quote{Price: 1}, Name: "Ethereum"}, nil
}
