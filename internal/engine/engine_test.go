package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/playerstats/pkg/models"
)

type stubFetcher struct {
	html  string
	err   error
	noDoc bool
	calls int
}

func (f *stubFetcher) Name() string { return "StubFetcher" }

func (f *stubFetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	page := &models.Page{URL: opts.URL, StatusCode: 200}
	if f.noDoc {
		return page, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return nil, err
	}
	page.Document = doc
	return page, nil
}

func TestSpider_RunsEveryExtractor(t *testing.T) {
	f := &stubFetcher{html: `<html><head><title>Roster</title></head><body><p>a</p><p>b</p></body></html>`}

	results, err := Spider(context.Background(), f, models.RequestOptions{URL: "http://example.com"}, Extractors{
		"title": func(doc *goquery.Document) any { return doc.Find("title").Text() },
		"paragraphs": func(doc *goquery.Document) any {
			return doc.Find("p").Length()
		},
	})
	if err != nil {
		t.Fatalf("Spider failed: %v", err)
	}

	if f.calls != 1 {
		t.Errorf("Expected a single fetch, got %d", f.calls)
	}
	if results["title"] != "Roster" {
		t.Errorf("Expected title 'Roster', got %v", results["title"])
	}
	if results["paragraphs"] != 2 {
		t.Errorf("Expected 2 paragraphs, got %v", results["paragraphs"])
	}
}

func TestSpider_FetchError(t *testing.T) {
	fetchErr := NewEngineError(ErrCodeNetworkError, "failed to fetch URL", ErrNetworkError)
	f := &stubFetcher{err: fetchErr}

	called := false
	_, err := Spider(context.Background(), f, models.RequestOptions{URL: "http://example.com"}, Extractors{
		"x": func(doc *goquery.Document) any { called = true; return nil },
	})

	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("Expected network error, got %v", err)
	}
	if called {
		t.Error("Extractor ran after a failed fetch")
	}
}

func TestSpider_MissingDocument(t *testing.T) {
	_, err := Spider(context.Background(), &stubFetcher{noDoc: true}, models.RequestOptions{URL: "http://example.com"}, nil)

	if code, ok := CodeOf(err); !ok || code != ErrCodeParseError {
		t.Errorf("Expected %s, got %v", ErrCodeParseError, err)
	}
}

func TestSpider_NilFetcher(t *testing.T) {
	if _, err := Spider(context.Background(), nil, models.RequestOptions{}, nil); err == nil {
		t.Error("Expected error for nil fetcher")
	}
}

func TestEngineError_Is(t *testing.T) {
	err := NewEngineError(ErrCodeTimeout, "request timed out", ErrTimeout).WithDetail("url", "http://example.com")

	if !errors.Is(err, &EngineError{Code: ErrCodeTimeout}) {
		t.Error("Expected match by code")
	}
	if errors.Is(err, &EngineError{Code: ErrCodeHTTPStatus}) {
		t.Error("Unexpected match for a different code")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("Expected match on underlying error")
	}
	if err.Details["url"] != "http://example.com" {
		t.Errorf("Unexpected details: %v", err.Details)
	}
	if got := err.Error(); got != "TIMEOUT: request timed out: request timeout" {
		t.Errorf("Unexpected message: %q", got)
	}
}
