package crypto

import (
	"context"
	"fmt"

	"github.com/omnibothq/omnibot/internal/resolver"
	"github.com/omnibothq/omnibot/internal/upstream"
)

const defaultAlpacaBaseURL = "https://data.alpaca.markets"

// Circulating-supply approximations used to derive market cap, since Alpaca
// does not expose it. Explicitly not authoritative; the flat placeholder for
// everything outside BTC/ETH is a known stub, not a bug to fix silently.
const (
	btcCirculatingSupply     = 19_000_000
	ethCirculatingSupply     = 120_000_000
	defaultCirculatingSupply = 1_000_000_000
)

// AlpacaProvider is the primary quote source: latest trade plus the day's bars
// keyed by "<SYMBOL>USD".
type AlpacaProvider struct {
	client  *upstream.Client
	baseURL string
	key     string
	secret  string
}

func NewAlpacaProvider(client *upstream.Client, key, secret string) *AlpacaProvider {
	return &AlpacaProvider{
		client:  client,
		baseURL: defaultAlpacaBaseURL,
		key:     key,
		secret:  secret,
	}
}

// WithBaseURL points the provider at a different host. Used by tests.
func (p *AlpacaProvider) WithBaseURL(url string) *AlpacaProvider {
	p.baseURL = url
	return p
}

func (p *AlpacaProvider) Name() string { return "alpaca" }

type alpacaTradeResponse struct {
	Trade struct {
		Price float64 `json:"p"`
	} `json:"trade"`
}

type alpacaBar struct {
	Open   float64 `json:"o"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

type alpacaBarsResponse struct {
	Bars []alpacaBar `json:"bars"`
}

func (p *AlpacaProvider) Attempt(ctx context.Context, symbol string) (Result, error) {
	if p.key == "" || p.secret == "" {
		return Result{}, fmt.Errorf("alpaca credentials not configured")
	}

	pair := symbol + "USD"

	headers := map[string]string{
		"APCA-API-KEY-ID":     p.key,
		"APCA-API-SECRET-KEY": p.secret,
	}

	var trade alpacaTradeResponse

	err := p.client.GetJSON(ctx, p.baseURL+"/v1beta1/crypto/"+pair+"/trades/latest", headers, &trade)

	if err != nil {
		return Result{}, fmt.Errorf("latest trade: %w", err)
	}

	var bars alpacaBarsResponse

	err = p.client.GetJSON(ctx, p.baseURL+"/v1beta1/crypto/"+pair+"/bars?timeframe=1Day", headers, &bars)

	if err != nil {
		return Result{}, fmt.Errorf("day bars: %w", err)
	}

	// a 200 with no bars cannot price anything
	if len(bars.Bars) == 0 {
		return Result{}, resolver.ErrEmptyResult
	}

	openPrice := bars.Bars[0].Open
	closePrice := bars.Bars[len(bars.Bars)-1].Close

	var change24h float64

	if openPrice != 0 {
		change24h = (closePrice - openPrice) / openPrice * 100
	}

	var volume24h float64

	for _, bar := range bars.Bars {
		volume24h += bar.Volume
	}

	return Result{
		Quote: Quote{
			Price:     trade.Trade.Price,
			Change24h: change24h,
			MarketCap: trade.Trade.Price * supplyFor(symbol),
			Volume24h: volume24h,
		},
		Name: nameFor(symbol),
	}, nil
}

func supplyFor(symbol string) float64 {
	switch symbol {
	case "BTC":
		return btcCirculatingSupply
	case "ETH":
		return ethCirculatingSupply
	default:
		return defaultCirculatingSupply
	}
}
