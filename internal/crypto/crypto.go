// Package crypto resolves cryptocurrency quotes through the provider-fallback
// chain: Alpaca market data first, CoinGecko second, and a static mock table
// when both are unavailable.
package crypto

import (
	"context"
	"log/slog"
	"strings"

	"github.com/omnibothq/omnibot/internal/resolver"
	"github.com/omnibothq/omnibot/internal/upstream"
)

type Quote struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
}

// Result pairs a quote with the asset's display name, since CoinGecko returns
// an authoritative name while the other layers look it up locally.
type Result struct {
	Quote Quote
	Name  string
}

// symbol -> display name for assets the mock and Alpaca layers know about
var cryptoNames = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"SOL":   "Solana",
	"ADA":   "Cardano",
	"DOT":   "Polkadot",
	"DOGE":  "Dogecoin",
	"SHIB":  "Shiba Inu",
	"AVAX":  "Avalanche",
	"MATIC": "Polygon",
	"LTC":   "Litecoin",
}

func nameFor(symbol string) string {
	if name, ok := cryptoNames[symbol]; ok {
		return name
	}

	return symbol + " Cryptocurrency"
}

type Service struct {
	chain *resolver.Chain[string, Result]
}

// NewService wires the provider order. Either provider may be nil-keyed and
// will simply fail its attempts; the chain still terminates in the mock table.
func NewService(client *upstream.Client, alpacaKey, alpacaSecret string, log *slog.Logger, metrics resolver.FailureRecorder) *Service {
	providers := []resolver.Provider[string, Result]{
		NewAlpacaProvider(client, alpacaKey, alpacaSecret),
		NewCoinGeckoProvider(client),
	}

	return &Service{
		chain: resolver.NewChain("crypto", providers, mockResult, log, metrics),
	}
}

// NewServiceWithProviders is the test seam: inject any provider list.
func NewServiceWithProviders(providers []resolver.Provider[string, Result], log *slog.Logger, metrics resolver.FailureRecorder) *Service {
	return &Service{
		chain: resolver.NewChain("crypto", providers, mockResult, log, metrics),
	}
}

// Price resolves a quote for the symbol. The symbol is uppercased before any
// lookup; the chain guarantees a result, so the only signal left for the
// caller is the source tag.
func (s *Service) Price(ctx context.Context, symbol string) (Result, string) {
	return s.chain.Resolve(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}
