package fortnite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultAPIHost = "https://fortnite-api.com"

var (
	fetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rarefeed_upstream_fetch_attempts_total",
		Help: "The total number of cosmetics fetch attempts against the upstream API",
	})

	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rarefeed_upstream_fetch_errors_total",
		Help: "The total number of failed cosmetics fetch attempts",
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rarefeed_upstream_fetch_duration_seconds",
		Help:    "Duration of cosmetics fetches against the upstream API",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // Start at 100ms, double each bucket, 10 buckets
	})

	cosmeticsFetched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rarefeed_upstream_cosmetics_fetched",
		Help: "Number of cosmetics returned by the most recent successful fetch",
	})
)

type Client struct {
	host   string
	apiKey string
	http   *http.Client
}

// NewClient creates a client for the fortnite-api.com cosmetics API.
// The API key is optional for the public cosmetics endpoints.
func NewClient(host string, apiKey string) *Client {
	if host == "" {
		host = DefaultAPIHost
	}
	return &Client{
		host:   host,
		apiKey: apiKey,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CosmeticValue is a value/displayValue pair, e.g. a type or rarity.
type CosmeticValue struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

type CosmeticImages struct {
	Icon      string `json:"icon"`
	SmallIcon string `json:"smallIcon"`
}

// Cosmetic is one BR cosmetic as returned by /v2/cosmetics/br.
type Cosmetic struct {
	Id          string         `json:"id"`
	Name        string         `json:"name"`
	Type        CosmeticValue  `json:"type"`
	Rarity      CosmeticValue  `json:"rarity"`
	Images      CosmeticImages `json:"images"`
	ShopHistory []time.Time    `json:"shopHistory"`
}

// TypeValue prefers the machine value over the display value.
func (c Cosmetic) TypeValue() string {
	if c.Type.Value != "" {
		return c.Type.Value
	}
	return c.Type.DisplayValue
}

func (c Cosmetic) RarityValue() string {
	if c.Rarity.Value != "" {
		return c.Rarity.Value
	}
	return c.Rarity.DisplayValue
}

// IconURL falls back to the small icon when no full icon exists.
func (c Cosmetic) IconURL() string {
	if c.Images.Icon != "" {
		return c.Images.Icon
	}
	return c.Images.SmallIcon
}

type cosmeticsResponse struct {
	Status int        `json:"status"`
	Data   []Cosmetic `json:"data"`
}

// FetchCosmetics fetches all BR cosmetics with their shop history.
// Transport and server errors are retried with exponential backoff,
// client errors are not.
func (c *Client) FetchCosmetics(ctx context.Context) ([]Cosmetic, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute

	var cosmetics []Cosmetic

	operation := func() error {
		fetchAttempts.Inc()
		start := time.Now()

		result, err := c.fetchOnce(ctx)
		fetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			fetchErrors.Inc()
			log.Errorf("failed to fetch cosmetics: %s", err)
			return err
		}

		cosmetics = result
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	cosmeticsFetched.Set(float64(len(cosmetics)))
	return cosmetics, nil
}

func (c *Client) fetchOnce(ctx context.Context) ([]Cosmetic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/v2/cosmetics/br", nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// Client errors won't fix themselves on retry
		io.Copy(io.Discard, resp.Body)
		return nil, backoff.Permanent(fmt.Errorf("unexpected status: %s", resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var parsed cosmeticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	return parsed.Data, nil
}
