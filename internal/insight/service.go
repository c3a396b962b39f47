package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/summary"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

const DefaultTimeout = 30 * time.Second

var errEmptyAnswer = errors.New("model returned no content")

type Options struct {
	BusinessName string
	Currency     string
	VATRate      decimal.Decimal
	EarningRate  decimal.Decimal
	Locale       language.Tag
	Timeout      time.Duration
}

type Service struct {
	model    Model
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewService builds the adapter. A nil model disables insights.
func NewService(model Model, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.Locale == language.Und {
		opts.Locale = language.English
	}

	if opts.Currency == "" {
		opts.Currency = "RWF"
	}

	if opts.VATRate.IsZero() {
		opts.VATRate = invoice.DefaultRates.VAT
	}

	if opts.EarningRate.IsZero() {
		opts.EarningRate = invoice.DefaultRates.Earning
	}

	return &Service{
		model:    model,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		now:      time.Now,
	}
}

// Enabled reports whether a model is wired in.
func (s *Service) Enabled() bool {
	return s.model != nil
}

// Generate asks the model for insights about the given records. Every failure
// is logged and yields an empty slice.
func (s *Service) Generate(
	ctx context.Context,
	invoices []*invoice.Invoice,
	transactions []*transaction.Transaction,
	projects []*project.Project,
) []Insight {
	if s.model == nil {
		return []Insight{}
	}

	sum := summary.Compute(invoices, transactions, projects, s.now())

	insights, err := s.generate(ctx, BuildPrompt(sum, s.opts))
	if err != nil {
		slog.Error("failed to generate insights", "error", err)
		return []Insight{}
	}

	return insights
}

func (s *Service) generate(ctx context.Context, prompt string) ([]Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}

	return s.parse(raw)
}

func (s *Service) parse(raw string) ([]Insight, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return nil, errEmptyAnswer
	}

	var insights []Insight
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, fmt.Errorf("decoding insights: %w", err)
	}

	for i, in := range insights {
		if err := s.validate.Struct(in); err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
	}

	if insights == nil {
		insights = []Insight{}
	}

	return insights, nil
}
