package config

import (
	"fmt"
	"net/url"

	"github.com/andybalholm/cascadia"
	"github.com/law-makers/playerstats/pkg/models"
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if _, ok := models.ParseMode(c.Mode); !ok {
		return fmt.Errorf("invalid mode: %s (must be static or spa)", c.Mode)
	}
	if _, err := cascadia.Compile(c.TableSelector); err != nil {
		return fmt.Errorf("invalid table selector %q: %w", c.TableSelector, err)
	}
	if c.WaitSeconds < 0 || c.WaitSeconds > MaxWaitSeconds {
		return fmt.Errorf("wait must be between 0 and %d seconds", MaxWaitSeconds)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy URL: %s", c.Proxy)
		}
	}
	return nil
}
