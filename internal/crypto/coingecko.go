package crypto

import (
	"context"
	"fmt"

	"github.com/omnibothq/omnibot/internal/upstream"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com"

// CoinGecko keys coins by id, not ticker symbol.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
}

// CoinGeckoProvider is the secondary quote source. Unlike Alpaca, it returns
// authoritative market cap, volume and name directly.
type CoinGeckoProvider struct {
	client  *upstream.Client
	baseURL string
}

func NewCoinGeckoProvider(client *upstream.Client) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  client,
		baseURL: defaultCoinGeckoBaseURL,
	}
}

// WithBaseURL points the provider at a different host. Used by tests.
func (p *CoinGeckoProvider) WithBaseURL(url string) *CoinGeckoProvider {
	p.baseURL = url
	return p
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

type coinGeckoResponse struct {
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice struct {
			USD float64 `json:"usd"`
		} `json:"current_price"`
		PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
		MarketCap                struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
		TotalVolume struct {
			USD float64 `json:"usd"`
		} `json:"total_volume"`
	} `json:"market_data"`
}

func (p *CoinGeckoProvider) Attempt(ctx context.Context, symbol string) (Result, error) {
	id, ok := coinGeckoIDs[symbol]

	if !ok {
		return Result{}, fmt.Errorf("unknown cryptocurrency symbol: %s", symbol)
	}

	var data coinGeckoResponse

	err := p.client.GetJSON(ctx, p.baseURL+"/api/v3/coins/"+id, nil, &data)

	if err != nil {
		return Result{}, err
	}

	return Result{
		Quote: Quote{
			Price:     data.MarketData.CurrentPrice.USD,
			Change24h: data.MarketData.PriceChangePercentage24h,
			MarketCap: data.MarketData.MarketCap.USD,
			Volume24h: data.MarketData.TotalVolume.USD,
		},
		Name: data.Name,
	}, nil
}
