package engine

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/playerstats/pkg/models"
	"github.com/rs/zerolog/log"
)

// Fetcher is the interface that all page engines must implement
type Fetcher interface {
	// Fetch retrieves and parses the page at opts.URL
	Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error)

	// Name returns the name of the fetcher implementation
	Name() string
}

// Extractor derives one result from a parsed document
type Extractor func(doc *goquery.Document) any

// Extractors maps result names to the extractor producing them
type Extractors map[string]Extractor

// Spider fetches a single page and runs every extractor against it.
// Results are keyed by extractor name.
func Spider(ctx context.Context, f Fetcher, opts models.RequestOptions, extractors Extractors) (map[string]any, error) {
	if f == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	page, err := f.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	if page.Document == nil {
		return nil, NewEngineError(ErrCodeParseError, "fetcher returned no document", ErrParseError).
			WithDetail("url", opts.URL)
	}

	results := make(map[string]any, len(extractors))
	for name, extract := range extractors {
		results[name] = extract(page.Document)
		log.Debug().Str("extractor", name).Msg("Extractor finished")
	}

	log.Debug().
		Str("url", page.URL).
		Str("fetcher", f.Name()).
		Int("status", page.StatusCode).
		Int("extractors", len(results)).
		Msg("Spider completed")

	return results, nil
}
