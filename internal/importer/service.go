package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/MrJamesThe3rd/getrich/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

var ErrUnknownSource = errors.New("unknown import source")

type Service struct {
	importers   map[Source]Importer
	categorizer Categorizer
}

// NewService registers the built-in importers. categorizer may be nil.
func NewService(categorizer Categorizer) *Service {
	return &Service{
		importers: map[Source]Importer{
			SourceBankCSV: bankcsv.NewParser(),
		},
		categorizer: categorizer,
	}
}

// Import parses r and, when a categorizer is set, fills in learned categories.
func (s *Service) Import(ctx context.Context, source Source, r io.Reader) ([]transaction.CreateParams, error) {
	if source == "" {
		source = SourceBankCSV
	}

	imp, ok := s.importers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	params, err := imp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	slog.Info("statement parsed", "source", source, "entries", len(params))

	if s.categorizer != nil {
		params = s.categorizer.Categorize(ctx, params)
	}

	return params, nil
}

// Sources lists the registered statement formats.
func (s *Service) Sources() []Source {
	return slices.Sorted(maps.Keys(s.importers))
}
