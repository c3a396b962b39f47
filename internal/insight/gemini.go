package insight

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-3-flash-preview"

// Gemini is a Model backed by the Generative Language API. The answer is
// constrained to a JSON array of {title, content, type} objects.
type Gemini struct {
	svc   *generativelanguage.Service
	model string
}

// NewGemini creates a client. endpoint overrides the API base URL when set.
func NewGemini(ctx context.Context, apiKey, model, endpoint string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating generative language client: %w", err)
	}

	return &Gemini{svc: svc, model: model}, nil
}

func responseSchema() *generativelanguage.Schema {
	return &generativelanguage.Schema{
		Type: "ARRAY",
		Items: &generativelanguage.Schema{
			Type: "OBJECT",
			Properties: map[string]generativelanguage.Schema{
				"title":   {Type: "STRING"},
				"content": {Type: "STRING"},
				"type": {
					Type:        "STRING",
					Enum:        []string{string(TypeSuggestion), string(TypeWarning), string(TypeTip)},
					Description: "The type of insight: suggestion, warning, or tip",
				},
			},
			Required: []string{"title", "content", "type"},
		},
	}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: prompt}},
			},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}

	resp, err := g.svc.Models.GenerateContent("models/"+g.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyAnswer
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return text.String(), nil
}
