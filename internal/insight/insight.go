// Package insight turns the dashboard summary into short advice produced by a
// generative model.
package insight

import "context"

type Type string

const (
	TypeSuggestion Type = "suggestion"
	TypeWarning    Type = "warning"
	TypeTip        Type = "tip"
)

// Insight is one piece of advice. Insights are never persisted.
type Insight struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Type    Type   `json:"type" validate:"required,oneof=suggestion warning tip"`
}

// Model sends a single prompt and returns the raw JSON text of the answer,
// which is expected to be an array of Insight objects.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
