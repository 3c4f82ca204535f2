package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Converter turns a fiat-denominated price into satoshis at the current
// exchange rate. The rate is looked up at call time, so the result can drift
// between invoice creation and settlement.
type Converter interface {
	FiatAsSats(ctx context.Context, amount float64, currency string) (int64, error)
}

// AllowedCurrencies are the fiat codes schedules may be priced in, besides
// the base unit "sat".
var AllowedCurrencies = []string{
	"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "BRL", "CZK", "INR",
}

// IsAllowedCurrency reports whether code is "sat" or a supported fiat code.
func IsAllowedCurrency(code string) bool {
	if code == "sat" {
		return true
	}
	for _, c := range AllowedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// HostConverter asks the host platform for exchange rates and caches them in
// redis for a short window. Without redis every call hits the host, which is
// still correct, just slower.
type HostConverter struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
	cacheTTL   time.Duration
}

func NewHostConverter(baseURL string, redisClient *redis.Client) *HostConverter {
	return &HostConverter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		redis:      redisClient,
		cacheTTL:   time.Minute,
	}
}

// FiatAsSats converts amount (in whole fiat units, e.g. 9.99 USD) to sats.
func (c *HostConverter) FiatAsSats(ctx context.Context, amount float64, currency string) (int64, error) {
	rate, err := c.satsPerUnit(ctx, currency)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(amount * rate)), nil
}

func (c *HostConverter) satsPerUnit(ctx context.Context, currency string) (float64, error) {
	cacheKey := "lncalendar:rate:" + currency

	if c.redis != nil {
		if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			if rate, err := strconv.ParseFloat(val, 64); err == nil {
				return rate, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/rate/"+currency, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate lookup for %s returned %d", currency, resp.StatusCode)
	}

	var body struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if body.Rate <= 0 {
		return 0, fmt.Errorf("invalid rate %f for %s", body.Rate, currency)
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKey, strconv.FormatFloat(body.Rate, 'f', -1, 64), c.cacheTTL).Err(); err != nil {
			log.Debug().Err(err).Msg("rate cache write failed")
		}
	}
	return body.Rate, nil
}
