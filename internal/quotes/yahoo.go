package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// DefaultYahooURL is the chart endpoint; the symbol is appended as a path segment.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooClient fetches latest stock prices from the Yahoo Finance chart API.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      *cache.Cache
	log        zerolog.Logger
}

// NewYahooClient creates a client limited to perSecond requests per second.
// Prices are cached for ttl; a non-positive ttl disables the cache.
func NewYahooClient(baseURL string, ttl time.Duration, perSecond float64, log zerolog.Logger) (*YahooClient, error) {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	if perSecond <= 0 {
		perSecond = 1
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("NewYahooClient: cookie jar: %w", err)
	}

	return &YahooClient{
		httpClient: &http.Client{Jar: jar, Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		cache:      newQuoteCache(ttl),
		log:        log,
	}, nil
}

// Prices returns the latest price for each ticker in the given order.
func (c *YahooClient) Prices(ctx context.Context, stocks []string) ([]domain.StockPrice, error) {
	out := make([]domain.StockPrice, 0, len(stocks))
	for _, symbol := range stocks {
		price, err := c.Price(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.StockPrice{Stock: strings.ToUpper(symbol), Price: price})
	}
	return out, nil
}

// Price returns the regular market price of one ticker.
func (c *YahooClient) Price(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	cacheKey := "price-" + symbol
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			return cached.(float64), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("Price: %s: rate limit: %w", symbol, err)
	}

	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("Price: %s: build request: %w", symbol, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("Yahoo chart request failed")
		return 0, fmt.Errorf("Price: %s: request: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Str("symbol", symbol).Str("status", resp.Status).Msg("Yahoo chart returned non-OK status")
		return 0, fmt.Errorf("Price: %s: unexpected status %s", symbol, resp.Status)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return 0, fmt.Errorf("Price: %s: decode: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("Price: %s: %s: %s", symbol, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("Price: %s: empty chart result", symbol)
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if c.cache != nil {
		c.cache.Set(cacheKey, price, cache.DefaultExpiration)
	}
	c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("Stock price fetched")
	return price, nil
}
