package agents

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/santiagofavero/Autoselll-sub000/internal/config"
	"github.com/santiagofavero/Autoselll-sub000/internal/models"
	"github.com/santiagofavero/Autoselll-sub000/internal/services"
)

// VisionAgent extracts structured item attributes and a first price
// guess from a product photo. It is judge-and-extract only: the copy
// for the final listing comes from the Copywriter, not from here.
type VisionAgent struct {
	client *openai.Client
	config *config.Config
}

func NewVisionAgent(cfg *config.Config) *VisionAgent {
	return &VisionAgent{
		client: openai.NewClient(cfg.OpenAI.APIKey),
		config: cfg,
	}
}

// VisionRequest identifies the image to analyze. Hints are optional
// seller-provided context ("bought 2021", "original box included").
type VisionRequest struct {
	ImageURL string `json:"image_url"`
	Hints    string `json:"hints,omitempty"`
	Language string `json:"language,omitempty"`
}

// VisionResult pairs the extracted attributes with the model's raw
// price guess. The guess is modeled, not observed: downstream price
// validation replaces it whenever comparables exist.
type VisionResult struct {
	Attributes           models.ItemAttributes `json:"attributes"`
	RawPriceEstimate     models.PriceEstimate  `json:"raw_price_estimate"`
	EstimatedNewPriceNOK *float64              `json:"estimated_new_price_nok,omitempty"`
	AgeHint              string                `json:"age_hint,omitempty"`
	PremiumBrand         bool                  `json:"premium_brand"`
}

type visionReply struct {
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	ModelNumber      string   `json:"model_number"`
	Category         string   `json:"category"`
	Condition        string   `json:"condition"`
	Color            string   `json:"color"`
	TechnicalSpecs   []string `json:"technical_specs"`
	BrandConfidence  float64  `json:"brand_confidence"`
	ModelConfidence  float64  `json:"model_confidence"`
	EstimatedNewNOK  *float64 `json:"estimated_new_price_nok"`
	EstimatedUsedNOK float64  `json:"estimated_used_price_nok"`
	AgeHint          string   `json:"age_hint"`
	PremiumBrand     bool     `json:"premium_brand"`
}

// Analyze runs the vision model over the image and parses its reply.
func (a *VisionAgent) Analyze(ctx context.Context, req VisionRequest) (*VisionResult, error) {
	if req.ImageURL == "" {
		return nil, &models.ValidationError{Field: "image_url", Reason: "must not be empty"}
	}
	language := req.Language
	if language == "" {
		language = "Norwegian"
	}

	prompt := fmt.Sprintf(`You are a second-hand marketplace item analyst. Identify the item in the photo for a %s marketplace listing.

SELLER HINTS (may be empty):
%s

OUTPUT FORMAT (JSON only):
{
  "brand": "...",
  "model": "...",
  "model_number": "...",
  "category": "electronics|furniture|clothing|sports|appliances|other",
  "condition": "new|like_new|used_good|used_fair|for_parts",
  "color": "...",
  "technical_specs": ["..."],
  "brand_confidence": 0.0-1.0,
  "model_confidence": 0.0-1.0,
  "estimated_new_price_nok": number or null,
  "estimated_used_price_nok": number,
  "age_hint": "free text age guess, e.g. '2 years' or '2019'",
  "premium_brand": true|false
}

RULES:
- Judge condition from visible wear only, never assume better than shown
- confidence reflects how certain the identification is, not item quality
- estimated prices are NOK; null new price if the item is unidentifiable
- Return ONLY the JSON, no explanations.`, language, req.Hints)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.config.OpenAI.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: req.ImageURL, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, services.Classify("vision", fmt.Errorf("vision call failed: %w", err))
	}

	var reply visionReply
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &reply); err != nil {
		return nil, services.Classify("vision", fmt.Errorf("parse vision output: %w", err))
	}

	condition := models.Condition(reply.Condition)
	if !condition.Valid() {
		condition = models.ConditionUsedGood
	}

	result := &VisionResult{
		Attributes: models.ItemAttributes{
			Brand:           reply.Brand,
			Model:           reply.Model,
			ModelNumber:     reply.ModelNumber,
			Category:        reply.Category,
			Condition:       condition,
			Color:           reply.Color,
			TechnicalSpecs:  reply.TechnicalSpecs,
			BrandConfidence: clamp01(reply.BrandConfidence),
			ModelConfidence: clamp01(reply.ModelConfidence),
		},
		EstimatedNewPriceNOK: reply.EstimatedNewNOK,
		AgeHint:              reply.AgeHint,
		PremiumBrand:         reply.PremiumBrand,
		RawPriceEstimate:     rawEstimate(reply),
	}
	return result, nil
}

// rawEstimate shapes the model's single used-price guess into the
// shared estimate contract. It is always modeled with low confidence.
func rawEstimate(reply visionReply) models.PriceEstimate {
	price := reply.EstimatedUsedNOK
	if price <= 0 {
		price = 100
	}
	return models.PriceEstimate{
		AveragePrice: price,
		MedianPrice:  price,
		PriceRange:   models.PriceRange{Min: price * 0.8, Max: price * 1.3},
		SampleSize:   0,
		Confidence:   0.35,
		Source:       models.SourceModeled,
		Suggestions: models.PriceSuggestions{
			Conservative: price * 0.85,
			Market:       price,
			Optimistic:   price * 1.15,
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
