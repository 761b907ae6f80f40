// internal/engine/static/scraper.go
package static

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/law-makers/playerstats/internal/engine"
	"github.com/law-makers/playerstats/internal/ratelimit"
	"github.com/law-makers/playerstats/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// Scraper implements engine.Fetcher for static HTML pages.
// It uses raw HTTP requests and goquery for parsing.
type Scraper struct {
	limiter   ratelimit.RateLimiter
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// New creates a new static Scraper with dependency injection
func New(lim ratelimit.RateLimiter, client *http.Client, timeout time.Duration, ua string) *Scraper {
	if client == nil {
		client = &http.Client{}
	}
	return &Scraper{
		limiter:   lim,
		client:    client,
		timeout:   timeout,
		userAgent: ua,
	}
}

// Name returns the name of this scraper
func (s *Scraper) Name() string {
	return "StaticScraper"
}

// Fetch retrieves and parses a static HTML page
func (s *Scraper) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("scraper", s.Name()).
		Msg("Starting fetch")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, engine.NewEngineError(engine.ErrCodeTimeout, "rate limit wait aborted", err).
				WithDetail("url", opts.URL)
		}
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "failed to create request", errors.Join(engine.ErrInvalidURL, err)).
			WithDetail("url", opts.URL)
	}

	// Set default headers
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	// Add custom headers
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	// Make request
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err).WithDetail("url", opts.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, engine.NewEngineError(engine.ErrCodeHTTPStatus, resp.Status, engine.ErrHTTPStatus).
			WithDetail("url", opts.URL).
			WithDetail("status", resp.StatusCode)
	}

	// Decode to UTF-8 using the Content-Type charset or the document's meta tag
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, "failed to decode response body", errors.Join(engine.ErrParseError, err)).
			WithDetail("url", opts.URL).
			WithDetail("content_type", resp.Header.Get("Content-Type"))
	}

	// Parse HTML with goquery, keeping paragraph tables nested
	doc, err := engine.ParseHTML(body)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, "failed to parse HTML", errors.Join(engine.ErrParseError, err)).
			WithDetail("url", opts.URL)
	}

	responseTime := time.Since(start).Milliseconds()

	page := &models.Page{
		URL:          opts.URL,
		StatusCode:   resp.StatusCode,
		Title:        strings.TrimSpace(doc.Find("title").First().Text()),
		Headers:      make(map[string]string),
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
		Document:     doc,
	}

	// Extract headers
	for key, values := range resp.Header {
		if len(values) > 0 {
			page.Headers[key] = values[0]
		}
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", responseTime).
		Msg("Fetch completed")

	return page, nil
}

// classifyTransportError maps an http.Client error to an engine error
func classifyTransportError(err error) *engine.EngineError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return engine.NewEngineError(engine.ErrCodeTimeout, "request timed out", errors.Join(engine.ErrTimeout, err))
	}
	return engine.NewEngineError(engine.ErrCodeNetworkError, "failed to fetch URL", errors.Join(engine.ErrNetworkError, err))
}
