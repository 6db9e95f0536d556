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

// Copywriter produces the final listing text per target platform. It
// writes only from the facts the pipeline verified; it is not allowed
// to invent specs or claims.
type Copywriter struct {
	client *openai.Client
	config *config.Config
}

func NewCopywriter(cfg *config.Config) *Copywriter {
	return &Copywriter{
		client: openai.NewClient(cfg.OpenAI.APIKey),
		config: cfg,
	}
}

type CopyRequest struct {
	Attributes      models.ItemAttributes `json:"attributes"`
	Price           float64               `json:"price"`
	TargetPlatforms []string              `json:"target_platforms"`
	Language        string                `json:"language,omitempty"`
}

// PlatformCopy is the listing text for one marketplace.
type PlatformCopy struct {
	Platform    string   `json:"platform"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

type ListingCopy struct {
	Copies     []PlatformCopy `json:"copies"`
	Confidence float64        `json:"confidence"`
}

// Generate writes listing copy for every target platform in one call.
func (w *Copywriter) Generate(ctx context.Context, req CopyRequest) (*ListingCopy, error) {
	if len(req.TargetPlatforms) == 0 {
		return nil, &models.ValidationError{Field: "target_platforms", Reason: "must not be empty"}
	}
	if req.Price <= 0 {
		return nil, &models.ValidationError{Field: "price", Reason: "must be positive"}
	}
	language := req.Language
	if language == "" {
		language = "Norwegian"
	}

	attrsJSON, _ := json.MarshalIndent(req.Attributes, "", "  ")
	platformsJSON, _ := json.Marshal(req.TargetPlatforms)

	prompt := fmt.Sprintf(`You are a marketplace COPYWRITER working under strict constraints.

CRITICAL CONSTRAINTS:
- Use ONLY the verified item facts below
- Do NOT invent specs, history or claims
- State the condition honestly, including flaws
- Write in %s

ITEM FACTS:
%s

ASKING PRICE: %.0f NOK

TARGET PLATFORMS:
%s

Write one listing per platform, adapted to its conventions (FINN: factual and spec-forward; Facebook: short and casual; Tise: style-conscious; eBay/Amazon: English, searchable title).

OUTPUT FORMAT (JSON only):
{
  "copies": [
    { "platform": "...", "title": "max 80 chars", "description": "3-6 sentences", "keywords": ["..."] }
  ],
  "confidence": 0.0-1.0
}

Return ONLY the JSON.`, language, string(attrsJSON), req.Price, string(platformsJSON))

	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: w.config.OpenAI.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, services.Classify("copywriter", fmt.Errorf("copywriter call failed: %w", err))
	}

	var output ListingCopy
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &output); err != nil {
		return nil, services.Classify("copywriter", fmt.Errorf("parse copywriter output: %w", err))
	}
	if len(output.Copies) == 0 {
		return nil, services.Classify("copywriter", fmt.Errorf("copywriter returned no copies"))
	}
	return &output, nil
}
