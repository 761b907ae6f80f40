package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/law-makers/playerstats/internal/utils/headers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment variables read by Load
const (
	EnvUserAgent  = "PLAYERSTATS_USER_AGENT"
	EnvProxy      = "PLAYERSTATS_PROXY"
	EnvChromePath = "PLAYERSTATS_CHROME_PATH"
	EnvOutput     = "PLAYERSTATS_OUTPUT"
	EnvSelector   = "PLAYERSTATS_SELECTOR"
	EnvMode       = "PLAYERSTATS_MODE"
	EnvTimeout    = "PLAYERSTATS_TIMEOUT"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP/Scraping
	HTTPTimeout time.Duration
	UserAgent   string
	Proxy       string
	Headers     map[string]string

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Fetch engine
	Mode            string
	BrowserHeadless bool
	ChromePath      string
	WaitSeconds     int

	// Extraction and output
	TableSelector string
	OutputPath    string
}

// Default returns a Config populated with the built-in defaults
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		HTTPTimeout:     DefaultHTTPTimeout,
		UserAgent:       DefaultUserAgent,
		Headers:         map[string]string{},
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		Mode:            DefaultMode,
		BrowserHeadless: DefaultBrowserHeadless,
		WaitSeconds:     DefaultWaitSeconds,
		TableSelector:   DefaultTableSelector,
		OutputPath:      DefaultOutputPath(),
	}
}

// DefaultOutputPath resolves DefaultOutputName against the directory
// holding the running executable.
func DefaultOutputPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Clean(DefaultOutputName)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultOutputName)
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv(EnvSelector); v != "" {
		cfg.TableSelector = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.HTTPTimeout = d
	}
	return nil
}

// applyFlags copies explicitly set flags over the env/default values
func applyFlags(cfg *Config, cmd *cobra.Command) error {
	if s, ok := changed(cmd, "user-agent"); ok && s != "" {
		cfg.UserAgent = s
	}
	if s, ok := changed(cmd, "proxy"); ok {
		cfg.Proxy = s
	}
	if s, ok := changed(cmd, "timeout"); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if s, ok := changed(cmd, "json"); ok && s == "true" {
		cfg.JSONLog = true
	}
	if s, ok := changed(cmd, "verbose"); ok && s == "true" {
		cfg.LogLevel = "debug"
	}
	if s, ok := changed(cmd, "quiet"); ok && s == "true" {
		cfg.LogLevel = "error"
	}
	if s, ok := changed(cmd, "output"); ok && s != "" {
		cfg.OutputPath = s
	}
	if s, ok := changed(cmd, "selector"); ok {
		cfg.TableSelector = s
	}
	if s, ok := changed(cmd, "mode"); ok {
		cfg.Mode = s
	}
	if s, ok := changed(cmd, "chrome-path"); ok {
		cfg.ChromePath = s
	}
	if s, ok := changed(cmd, "wait"); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("--wait: %w", err)
		}
		cfg.WaitSeconds = n
	}
	if f := lookupFlag(cmd, "header"); f != nil && f.Changed {
		values, err := cmd.Flags().GetStringArray("header")
		if err != nil {
			return err
		}
		parsed, err := headers.Parse(values)
		if err != nil {
			return err
		}
		cfg.Headers = parsed
	}
	return nil
}

func changed(cmd *cobra.Command, name string) (string, bool) {
	f := lookupFlag(cmd, name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

// lookupFlag finds a flag before or after cobra merges persistent flags
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.PersistentFlags().Lookup(name)
}
