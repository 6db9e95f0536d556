package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// ListingPayload is what gets submitted to one marketplace.
type ListingPayload struct {
	Platform    string                `json:"platform"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Price       float64               `json:"price"`
	Condition   models.Condition      `json:"condition"`
	Category    string                `json:"category"`
	Attributes  models.ItemAttributes `json:"attributes"`
	ImageURLs   []string              `json:"image_urls,omitempty"`
}

// PublishReceipt identifies the created remote listing.
type PublishReceipt struct {
	Platform    string `json:"platform"`
	PlatformID  string `json:"platform_id"`
	PlatformURL string `json:"platform_url"`
}

// Publisher submits a listing to one marketplace.
type Publisher interface {
	Platform() string
	Submit(ctx context.Context, payload ListingPayload) (*PublishReceipt, error)
}

// PublishOutcome records one platform's result. One platform failing
// never fails the others.
type PublishOutcome struct {
	Platform string          `json:"platform"`
	Receipt  *PublishReceipt `json:"receipt,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// PublisherRegistry holds one Publisher per marketplace.
type PublisherRegistry struct {
	publishers map[string]Publisher
}

func NewPublisherRegistry(publishers ...Publisher) *PublisherRegistry {
	r := &PublisherRegistry{publishers: make(map[string]Publisher, len(publishers))}
	for _, p := range publishers {
		r.publishers[p.Platform()] = p
	}
	return r
}

// Dispatch submits each payload to its platform's publisher,
// isolating failures per platform.
func (r *PublisherRegistry) Dispatch(ctx context.Context, payloads []ListingPayload) []PublishOutcome {
	outcomes := make([]PublishOutcome, 0, len(payloads))
	for _, payload := range payloads {
		outcome := PublishOutcome{Platform: payload.Platform}

		pub, ok := r.publishers[payload.Platform]
		if !ok {
			outcome.Error = fmt.Sprintf("no publisher registered for %s", payload.Platform)
			outcomes = append(outcomes, outcome)
			continue
		}

		receipt, err := pub.Submit(ctx, payload)
		if err != nil {
			outcome.Error = Classify(payload.Platform+" publish", err).Error()
		} else {
			outcome.Receipt = receipt
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// StubPublisher stands in for a real marketplace integration. The
// contract is the interesting part; the HTTP plumbing per marketplace
// is swapped in behind the same interface.
type StubPublisher struct {
	platform string
	baseURL  string
}

func NewStubPublisher(platform, baseURL string) *StubPublisher {
	return &StubPublisher{platform: platform, baseURL: baseURL}
}

func (s *StubPublisher) Platform() string { return s.platform }

func (s *StubPublisher) Submit(ctx context.Context, payload ListingPayload) (*PublishReceipt, error) {
	if payload.Title == "" || payload.Price <= 0 {
		return nil, &models.ValidationError{Field: "payload", Reason: "title and positive price are required"}
	}
	id := uuid.NewString()
	return &PublishReceipt{
		Platform:    s.platform,
		PlatformID:  id,
		PlatformURL: fmt.Sprintf("%s/listing/%s", s.baseURL, id),
	}, nil
}
