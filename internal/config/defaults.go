package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "error"
	DefaultJSONLog         = false
	DefaultUserAgent       = "PlayerStats/1.0 (https://github.com/law-makers/playerstats)"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultRateLimitRPS    = 2.0
	DefaultRateLimitBurst  = 1
	DefaultMode            = "static"
	DefaultBrowserHeadless = true
	DefaultTableSelector   = "p table"
	DefaultWaitSeconds     = 0
	MaxWaitSeconds         = 60

	// DefaultOutputName is resolved against the executable's directory
	DefaultOutputName = "../player-data.json"
)
