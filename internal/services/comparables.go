package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// ComparableListing is one observed listing for a similar item.
type ComparableListing struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Platform string  `json:"platform"`
	URL      string  `json:"url"`
	SoldAt   *string `json:"sold_at,omitempty"`
}

// ComparableSearcher looks up observed listings for an item. Zero
// results is a legitimate outcome, not an error: it sends the caller
// down the modeled-estimate fallback.
type ComparableSearcher interface {
	Search(ctx context.Context, query, categoryHint string, bounds models.PriceRange) ([]ComparableListing, error)
}

// HTTPComparables queries a comparable-listing search API. Retry
// policy lives here, in the client, not in the orchestrator.
type HTTPComparables struct {
	endpoint string
	apiKey   string
	client   *http.Client

	maxRetries   uint64
	retryBackoff time.Duration
}

func NewHTTPComparables(endpoint, apiKey string) *HTTPComparables {
	return &HTTPComparables{
		endpoint:     endpoint,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: 15 * time.Second},
		maxRetries:   2,
		retryBackoff: 500 * time.Millisecond,
	}
}

type searchResponse struct {
	Results []ComparableListing `json:"results"`
}

// Search queries the API with bounded exponential backoff on transient
// failures.
func (c *HTTPComparables) Search(ctx context.Context, query, categoryHint string, bounds models.PriceRange) ([]ComparableListing, error) {
	if query == "" {
		return nil, &models.ValidationError{Field: "query", Reason: "must not be empty"}
	}

	params := url.Values{}
	params.Set("q", query)
	if categoryHint != "" {
		params.Set("category", categoryHint)
	}
	if bounds.Max > 0 {
		params.Set("price_min", fmt.Sprintf("%.0f", bounds.Min))
		params.Set("price_max", fmt.Sprintf("%.0f", bounds.Max))
	}

	var results []ComparableListing
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-KEY", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return retry.RetryableError(fmt.Errorf("search returned %d", resp.StatusCode))
		default:
			return fmt.Errorf("search returned %d", resp.StatusCode)
		}

		var body searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode search response: %w", err)
		}
		results = body.Results
		return nil
	})
	if err != nil {
		return nil, Classify("comparables", err)
	}
	return results, nil
}

// AggregateEstimate folds observed listings into an observed
// PriceEstimate. Returns nil when there is nothing to aggregate.
func AggregateEstimate(listings []ComparableListing) *models.PriceEstimate {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
	}
	if len(prices) == 0 {
		return nil
	}
	sort.Float64s(prices)

	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))
	median := prices[len(prices)/2]
	if len(prices)%2 == 0 {
		median = (prices[len(prices)/2-1] + prices[len(prices)/2]) / 2
	}

	// More comparables, more confidence; ten observed sales is as good
	// as it gets for second-hand data.
	confidence := 0.5 + 0.05*float64(len(prices))
	if confidence > 0.95 {
		confidence = 0.95
	}

	return &models.PriceEstimate{
		AveragePrice: math.Round(avg),
		MedianPrice:  math.Round(median),
		PriceRange: models.PriceRange{
			Min: math.Round(math.Min(prices[0], median*0.8)),
			Max: math.Round(math.Max(prices[len(prices)-1], median*1.3)),
		},
		SampleSize: len(prices),
		Confidence: confidence,
		Source:     models.SourceObserved,
		Suggestions: models.PriceSuggestions{
			Conservative: math.Round(median * 0.85),
			Market:       math.Round(median),
			Optimistic:   math.Round(median * 1.15),
		},
	}
}
