package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"
)

// DefaultCBRURL serves the daily official exchange rates of the Bank of Russia.
const DefaultCBRURL = "https://www.cbr.ru/scripts/XML_daily.asp"

// CBRClient fetches rouble exchange rates from the Central Bank of Russia.
type CBRClient struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	log        zerolog.Logger
	now        func() time.Time
}

// newQuoteCache returns nil when ttl disables caching. go-cache treats a zero
// expiration as "never expire".
func newQuoteCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		return nil
	}
	return cache.New(ttl, 2*ttl)
}

// NewCBRClient creates a client. Daily rate tables are cached for ttl; a
// non-positive ttl disables the cache.
func NewCBRClient(baseURL string, ttl time.Duration, log zerolog.Logger) *CBRClient {
	if baseURL == "" {
		baseURL = DefaultCBRURL
	}
	return &CBRClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		cache:      newQuoteCache(ttl),
		log:        log,
		now:        time.Now,
	}
}

// Rates returns today's rate for each currency code in the given order.
// RUB is always 1. An unknown code is an error.
func (c *CBRClient) Rates(ctx context.Context, currencies []string) ([]domain.CurrencyRate, error) {
	if len(currencies) == 0 {
		return []domain.CurrencyRate{}, nil
	}

	table, err := c.DailyRates(ctx, c.now())
	if err != nil {
		return nil, err
	}

	out := make([]domain.CurrencyRate, 0, len(currencies))
	for _, code := range currencies {
		code = strings.ToUpper(code)
		rate, ok := table[code]
		if !ok {
			return nil, fmt.Errorf("Rates: currency %q not published by CBR", code)
		}
		out = append(out, domain.CurrencyRate{Currency: code, Rate: rate})
	}
	return out, nil
}

// DailyRates returns the rate table published for date, keyed by ISO code.
func (c *CBRClient) DailyRates(ctx context.Context, date time.Time) (map[string]float64, error) {
	day := date.Format("02/01/2006")
	cacheKey := "cbr-" + day
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			c.log.Debug().Str("date", day).Msg("CBR rates cache hit")
			return cached.(map[string]float64), nil
		}
	}

	body, err := c.fetch(ctx, day)
	if err != nil {
		c.log.Error().Err(err).Str("date", day).Msg("Failed to fetch CBR rates")
		return nil, err
	}

	table, err := ParseDailyRates(body)
	if err != nil {
		c.log.Error().Err(err).Str("date", day).Msg("Failed to parse CBR rates")
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, table, cache.DefaultExpiration)
	}
	c.log.Info().Str("date", day).Int("currencies", len(table)).Msg("CBR rates fetched")
	return table, nil
}

func (c *CBRClient) fetch(ctx context.Context, day string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("DailyRates: base url: %w", err)
	}
	q := u.Query()
	q.Set("date_req", day)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("DailyRates: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DailyRates: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DailyRates: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("DailyRates: read body: %w", err)
	}
	return body, nil
}

// ParseDailyRates reads a ValCurs document. Values use a decimal comma and
// are quoted per Nominal units, so each rate is Value / Nominal.
func ParseDailyRates(body []byte) (map[string]float64, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("ParseDailyRates: parse XML: %w", err)
	}

	valutes := doc.FindElements("//ValCurs/Valute")
	if len(valutes) == 0 {
		return nil, fmt.Errorf("ParseDailyRates: no Valute elements")
	}

	rates := map[string]float64{"RUB": 1}
	for _, v := range valutes {
		code := childText(v, "CharCode")
		if code == "" {
			continue
		}
		value, err := decimal.NewFromString(strings.Replace(childText(v, "Value"), ",", ".", 1))
		if err != nil {
			return nil, fmt.Errorf("ParseDailyRates: %s value: %w", code, err)
		}
		nominal, err := decimal.NewFromString(childText(v, "Nominal"))
		if err != nil || nominal.IsZero() {
			return nil, fmt.Errorf("ParseDailyRates: %s nominal %q", code, childText(v, "Nominal"))
		}
		rates[strings.ToUpper(code)] = value.Div(nominal).Round(4).InexactFloat64()
	}
	return rates, nil
}

func childText(e *etree.Element, tag string) string {
	child := e.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
