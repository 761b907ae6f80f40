package models

import (
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page represents a fetched and parsed web page
type Page struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	Title        string            `json:"title,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`

	// Document is the parsed page, queried by extractors
	Document *goquery.Document `json:"-"`
}

// ScraperMode defines the engine mode to use
type ScraperMode string

const (
	ModeStatic ScraperMode = "static"
	ModeSPA    ScraperMode = "spa"
)

// ParseMode converts a flag value to a ScraperMode
func ParseMode(s string) (ScraperMode, bool) {
	switch ScraperMode(s) {
	case ModeStatic, "":
		return ModeStatic, true
	case ModeSPA:
		return ModeSPA, true
	default:
		return "", false
	}
}

// RequestOptions contains options for fetching a page
type RequestOptions struct {
	URL         string
	Headers     map[string]string
	Timeout     time.Duration
	Proxy       string
	WaitSeconds int
}
