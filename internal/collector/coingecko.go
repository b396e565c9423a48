package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"PricePulse/internal/model"
)

// CoinGeckoFetcher implements Fetcher using the CoinGecko public REST API.
type CoinGeckoFetcher struct {
	BaseURL string
	AssetID string
	Client  *http.Client
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, assetID, proxyURL string) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoFetcher{
		BaseURL: baseURL,
		AssetID: assetID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

func (f *CoinGeckoFetcher) FetchCurrentPrice(ctx context.Context, currency model.CurrencyCode) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		f.BaseURL, url.QueryEscape(f.AssetID), url.QueryEscape(string(currency)))

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}

	// Shape: { "<asset>": { "<currency>": <number> } }
	var result map[string]map[string]float64
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode current price: %w", err)
	}
	price, ok := result[f.AssetID][string(currency)]
	if !ok {
		return 0, fmt.Errorf("current price: no %s/%s entry in response", f.AssetID, currency)
	}
	return price, nil
}

func (f *CoinGeckoFetcher) FetchHistoricalSeries(ctx context.Context, currency model.CurrencyCode, days int) ([]model.RawPricePair, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=%d&interval=daily",
		f.BaseURL, url.PathEscape(f.AssetID), url.QueryEscape(string(currency)), days)

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch historical series: %w", err)
	}

	var result struct {
		Prices []model.RawPricePair `json:"prices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode historical series: %w", err)
	}
	return result.Prices, nil
}

func (f *CoinGeckoFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
