package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/playerstats/internal/config"
	"github.com/law-makers/playerstats/internal/engine"
	"github.com/rs/zerolog"
)

const rosterPage = `<html><head><title>Roster</title></head><body>
<p><table>
<tr><td>Rex</td></tr>
<tr><td>Key Techniques: Bite, Howl</td></tr>
<tr><td>Location: North Ridge</td></tr>
<tr><td>LV</td><td>1</td><td>2</td></tr>
<tr><td>HP</td><td>10</td><td>n/a</td></tr>
</table></p>
</body></html>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.HTTPTimeout = 5 * time.Second
	cfg.RateLimitRPS = 100
	cfg.OutputPath = filepath.Join(t.TempDir(), "player-data.json")
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestNew_SelectsFetcherByMode(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"static", "StaticScraper"},
		{"spa", "DynamicScraper"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Mode = tt.mode
			a := newTestApp(t, cfg)
			if a.Fetcher.Name() != tt.want {
				t.Errorf("Fetcher = %s, want %s", a.Fetcher.Name(), tt.want)
			}
		})
	}
}

func TestNew_UnsupportedMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = "hybrid"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error for unsupported mode")
	}
}

func TestDownloadPlayerStats(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(rosterPage))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Headers = map[string]string{"Cookie": "session=abc"}
	a := newTestApp(t, cfg)

	n, err := a.DownloadPlayerStats(context.Background(), server.URL+"/players", cfg.OutputPath)
	if err != nil {
		t.Fatalf("DownloadPlayerStats failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 player, got %d", n)
	}
	if gotCookie != "session=abc" {
		t.Errorf("Expected custom header to be sent, got %q", gotCookie)
	}

	got, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := `[{"name":"Rex","keyTechniques":["Bite","Howl"],"location":"North Ridge","stats":[{"level":1,"hp":10},{"level":2,"hp":null}],"region":"North"}]`
	if string(got) != want {
		t.Errorf("Unexpected output:\n got %s\nwant %s", got, want)
	}
}

func TestDownloadPlayerStats_DoctypePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html>\n" + rosterPage))
	}))
	defer server.Close()

	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	n, err := a.DownloadPlayerStats(context.Background(), server.URL, cfg.OutputPath)
	if err != nil {
		t.Fatalf("DownloadPlayerStats failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 player from a doctype page, got %d", n)
	}
}

func TestDownloadPlayerStats_NoTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>No roster today</p></body></html>`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	n, err := a.DownloadPlayerStats(context.Background(), server.URL, cfg.OutputPath)
	if err != nil {
		t.Fatalf("DownloadPlayerStats failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 players, got %d", n)
	}

	got, _ := os.ReadFile(cfg.OutputPath)
	if string(got) != "[]" {
		t.Errorf("Expected empty array, got %s", got)
	}
}

func TestDownloadPlayerStats_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	_, err := a.DownloadPlayerStats(context.Background(), server.URL, cfg.OutputPath)
	if !errors.Is(err, &engine.EngineError{Code: engine.ErrCodeHTTPStatus}) {
		t.Fatalf("Expected HTTP status error, got %v", err)
	}
	if _, statErr := os.Stat(cfg.OutputPath); !os.IsNotExist(statErr) {
		t.Error("Output file written despite fetch failure")
	}
}

func TestDownloadPlayerStats_InvalidURL(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	_, err := a.DownloadPlayerStats(context.Background(), "http:///players", cfg.OutputPath)
	if !errors.Is(err, engine.ErrInvalidURL) {
		t.Errorf("Expected invalid URL error, got %v", err)
	}
}

func TestDownloadPlayerStats_CustomSelector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Replace(rosterPage, "<p><table>", `<div class="roster"><table>`, 1)))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.TableSelector = "div.roster table"
	a := newTestApp(t, cfg)

	n, err := a.DownloadPlayerStats(context.Background(), server.URL, cfg.OutputPath)
	if err != nil {
		t.Fatalf("DownloadPlayerStats failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 player with custom selector, got %d", n)
	}
}

func TestConfigureLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	logger := configureLogging(&config.Config{LogLevel: "debug", JSONLog: true}, &buf)
	logger.Debug().Str("k", "v").Msg("hello")

	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Errorf("Expected JSON log line, got %q", buf.String())
	}

	buf.Reset()
	logger = configureLogging(&config.Config{LogLevel: "error", JSONLog: true}, &buf)
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be suppressed at error level, got %q", buf.String())
	}
}
