// internal/engine/dynamic/scraper.go
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/playerstats/internal/engine"
	"github.com/law-makers/playerstats/internal/ratelimit"
	"github.com/law-makers/playerstats/pkg/models"
	"github.com/rs/zerolog/log"
)

// settleDelay lets initial scripts run before the DOM is read
const settleDelay = 300 * time.Millisecond

// Scraper implements engine.Fetcher using headless Chrome.
// Pages are rendered by chromedp and the resulting DOM is parsed with goquery.
type Scraper struct {
	limiter    ratelimit.RateLimiter
	timeout    time.Duration
	userAgent  string
	chromePath string
	headless   bool
}

// Options configures a dynamic Scraper
type Options struct {
	Limiter    ratelimit.RateLimiter
	Timeout    time.Duration
	UserAgent  string
	ChromePath string
	Headless   bool
}

// New creates a new dynamic Scraper
func New(opts Options) *Scraper {
	return &Scraper{
		limiter:    opts.Limiter,
		timeout:    opts.Timeout,
		userAgent:  opts.UserAgent,
		chromePath: opts.ChromePath,
		headless:   opts.Headless,
	}
}

// Name returns the name of this scraper
func (d *Scraper) Name() string {
	return "DynamicScraper"
}

// Fetch renders the page in a fresh browser and parses the final DOM
func (d *Scraper) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("scraper", d.Name()).
		Msg("Starting fetch")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Rendering includes browser startup and the settle wait
	timeout += time.Duration(opts.WaitSeconds) * time.Second

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, engine.NewEngineError(engine.ErrCodeTimeout, "rate limit wait aborted", err).
				WithDetail("url", opts.URL)
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, d.allocatorOptions(opts)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	page := &models.Page{
		URL:       opts.URL,
		FetchedAt: time.Now(),
		Headers:   make(map[string]string),
	}

	// Capture status code and headers of the document response
	var mu sync.Mutex
	captured := false
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if !isPageResponse(resp, captured) {
			return
		}
		captured = true
		page.StatusCode = int(resp.Response.Status)
		for key, value := range resp.Response.Headers {
			if s, ok := value.(string); ok {
				page.Headers[key] = s
			}
		}
	})

	var title, outerHTML string
	tasks := chromedp.Tasks{network.Enable()}
	if len(opts.Headers) > 0 {
		extra := make(network.Headers, len(opts.Headers))
		for key, value := range opts.Headers {
			extra[key] = value
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(extra))
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			wait := settleDelay + time.Duration(opts.WaitSeconds)*time.Second
			if opts.WaitSeconds > 0 {
				log.Debug().Int("wait_seconds", opts.WaitSeconds).Msg("Waiting after navigation before reading DOM")
			}
			select {
			case <-time.After(wait):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery),
	)

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, classifyBrowserError(err).WithDetail("url", opts.URL)
	}

	doc, err := parseDocument(outerHTML)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, "failed to parse rendered HTML", errors.Join(engine.ErrParseError, err)).
			WithDetail("url", opts.URL)
	}

	mu.Lock()
	defer mu.Unlock()

	if page.StatusCode >= 400 {
		return nil, engine.NewEngineError(engine.ErrCodeHTTPStatus, fmt.Sprintf("%d", page.StatusCode), engine.ErrHTTPStatus).
			WithDetail("url", opts.URL).
			WithDetail("status", page.StatusCode)
	}

	page.Title = strings.TrimSpace(title)
	page.Document = doc
	page.ResponseTime = time.Since(start).Milliseconds()

	log.Debug().
		Str("url", opts.URL).
		Int("status", page.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Msg("Fetch completed")

	return page, nil
}

func (d *Scraper) allocatorOptions(opts models.RequestOptions) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
	}

	if d.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if d.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(d.userAgent))
	}
	if path := FindChrome(d.chromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	return allocOpts
}

// parseDocument builds a goquery document from rendered outer HTML.
// The browser has already applied its own doctype rules to the live DOM.
func parseDocument(outerHTML string) (*goquery.Document, error) {
	return engine.ParseHTML(strings.NewReader(outerHTML))
}

// classifyBrowserError maps a chromedp failure to an engine error
func classifyBrowserError(err error) *engine.EngineError {
	if errors.Is(err, context.DeadlineExceeded) {
		return engine.NewEngineError(engine.ErrCodeTimeout, "page render timed out", errors.Join(engine.ErrTimeout, err))
	}
	return engine.NewEngineError(engine.ErrCodeBrowserCrash, "chromedp execution failed", errors.Join(engine.ErrBrowserCrash, err))
}

// isPageResponse reports whether resp carries the navigated page itself.
// Chrome reports redirects on the request, so the first document response
// belongs to the main frame whatever its final URL. Frames load later.
func isPageResponse(resp *network.EventResponseReceived, captured bool) bool {
	return !captured && resp.Response != nil && resp.Type == network.ResourceTypeDocument
}
