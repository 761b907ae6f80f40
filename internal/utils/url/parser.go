package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
)

var httpScheme = regexp.MustCompile(`^https?://`)

// ValidateURL performs comprehensive URL validation
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// FindURLArg returns the first argument that starts with http:// or https://.
// Other arguments are ignored.
func FindURLArg(args []string) (string, bool) {
	for _, arg := range args {
		if httpScheme.MatchString(arg) {
			return arg, true
		}
	}
	return "", false
}
