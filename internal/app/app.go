// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/playerstats/internal/config"
	"github.com/law-makers/playerstats/internal/engine"
	"github.com/law-makers/playerstats/internal/engine/dynamic"
	"github.com/law-makers/playerstats/internal/engine/static"
	"github.com/law-makers/playerstats/internal/player"
	"github.com/law-makers/playerstats/internal/ratelimit"
	"github.com/law-makers/playerstats/internal/reqctx"
	"github.com/law-makers/playerstats/internal/utils/output"
	urlutil "github.com/law-makers/playerstats/internal/utils/url"
	"github.com/law-makers/playerstats/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PlayerStatsKey names the extractor whose result is written to disk
const PlayerStatsKey = "playerStats"

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per run. Use Close() to release resources on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Fetcher     engine.Fetcher
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures the global zerolog logger from the config
//   - Creates the rate limiter for domain-based request throttling
//   - Initializes the HTTP client with proxy and timeouts
//   - Selects the static or headless-browser fetcher for cfg.Mode
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	mode, ok := models.ParseMode(cfg.Mode)
	if !ok {
		return nil, fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}

	logger := configureLogging(cfg, os.Stderr)

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: transport,
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Bool("proxy", cfg.Proxy != "").
		Msg("HTTP client initialized")

	var fetcher engine.Fetcher
	switch mode {
	case models.ModeSPA:
		fetcher = dynamic.New(dynamic.Options{
			Limiter:    rateLimiter,
			Timeout:    cfg.HTTPTimeout,
			UserAgent:  cfg.UserAgent,
			ChromePath: cfg.ChromePath,
			Headless:   cfg.BrowserHeadless,
		})
	default:
		fetcher = static.New(rateLimiter, httpClient, cfg.HTTPTimeout, cfg.UserAgent)
	}
	logger.Debug().Str("fetcher", fetcher.Name()).Msg("Fetcher initialized")

	return &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Fetcher:     fetcher,
		startTime:   time.Now(),
	}, nil
}

// configureLogging sets the global zerolog level and logger
func configureLogging(cfg *config.Config, w io.Writer) zerolog.Logger {
	var level zerolog.Level
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	default:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger
}

// DownloadPlayerStats fetches targetURL, extracts every player table and
// writes the records to outPath. It returns the number of records written.
func (a *Application) DownloadPlayerStats(ctx context.Context, targetURL, outPath string) (int, error) {
	ctx = reqctx.WithRequestContext(ctx, targetURL)
	logger := reqctx.Logger(ctx)

	if err := urlutil.ValidateURL(targetURL); err != nil {
		return 0, reqctx.NewRequestError(ctx, engine.NewEngineError(engine.ErrCodeValidation, err.Error(), engine.ErrInvalidURL).
			WithDetail("url", targetURL))
	}

	opts := models.RequestOptions{
		URL:         targetURL,
		Headers:     a.Config.Headers,
		Timeout:     a.Config.HTTPTimeout,
		Proxy:       a.Config.Proxy,
		WaitSeconds: a.Config.WaitSeconds,
	}

	selector := a.Config.TableSelector
	results, err := engine.Spider(ctx, a.Fetcher, opts, engine.Extractors{
		PlayerStatsKey: func(doc *goquery.Document) any {
			return player.ExtractSelection(doc.Selection, selector)
		},
	})
	if err != nil {
		return 0, reqctx.NewRequestError(ctx, fmt.Errorf("failed to fetch %s: %w", targetURL, err))
	}

	records, ok := results[PlayerStatsKey].([]player.Record)
	if !ok {
		return 0, reqctx.NewRequestError(ctx, fmt.Errorf("unexpected %s result type %T", PlayerStatsKey, results[PlayerStatsKey]))
	}

	if err := output.SaveJSON(outPath, records); err != nil {
		return 0, reqctx.NewRequestError(ctx, err)
	}

	logger.Info().
		Str("output", outPath).
		Int("players", len(records)).
		Dur("elapsed", reqctx.GetRequestContext(ctx).Elapsed()).
		Msg("Player stats saved")

	return len(records), nil
}

// Close releases idle connections held by the application.
// The context bounds any shutdown work.
func (a *Application) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
