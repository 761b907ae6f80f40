package static

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/law-makers/playerstats/internal/engine"
	"github.com/law-makers/playerstats/internal/ratelimit"
	"github.com/law-makers/playerstats/pkg/models"
)

func newTestScraper() *Scraper {
	return New(
		ratelimit.NewDomainLimiter(100, 10),
		&http.Client{Timeout: 30 * time.Second},
		5*time.Second,
		"TestScraper/1.0",
	)
}

func TestScraper_Fetch_BasicHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>
<head><title> Player Stats </title></head>
<body><p><table><tr><td>Rex</td></tr></table></p></body>
</html>`))
	}))
	defer server.Close()

	page, err := newTestScraper().Fetch(context.Background(), models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", page.StatusCode)
	}
	if page.Title != "Player Stats" {
		t.Errorf("Expected title 'Player Stats', got '%s'", page.Title)
	}
	if page.Headers["Content-Type"] != "text/html; charset=utf-8" {
		t.Errorf("Unexpected Content-Type header: %q", page.Headers["Content-Type"])
	}
	if page.Document == nil {
		t.Fatal("Expected a parsed document")
	}
	if n := page.Document.Find("p table").Length(); n != 1 {
		t.Errorf("Expected 1 paragraph table, got %d", n)
	}
}

func TestScraper_Fetch_DoctypeKeepsParagraphTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<!DOCTYPE html>
<html><head><title>Roster</title></head>
<body><p><table><tr><td>Rex</td></tr></table></p></body>
</html>`))
	}))
	defer server.Close()

	page, err := newTestScraper().Fetch(context.Background(), models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if n := page.Document.Find("p table").Length(); n != 1 {
		t.Errorf("Expected table to stay inside its paragraph, got %d matches", n)
	}
	if page.Title != "Roster" {
		t.Errorf("Expected title 'Roster', got '%s'", page.Title)
	}
}

func TestScraper_Fetch_Latin1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html><head><title>Jos\xe9</title></head><body><p><table><tr><td>Ni\xf1o</td></tr></table></p></body></html>"))
	}))
	defer server.Close()

	page, err := newTestScraper().Fetch(context.Background(), models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if page.Title != "José" {
		t.Errorf("Expected decoded title 'José', got %q", page.Title)
	}
	if cell := page.Document.Find("p table td").Text(); cell != "Niño" {
		t.Errorf("Expected decoded cell 'Niño', got %q", cell)
	}
}

func TestScraper_Fetch_Headers(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Custom-Header")
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	opts := models.RequestOptions{
		URL:     server.URL,
		Headers: map[string]string{"X-Custom-Header": "TestValue"},
	}
	if _, err := newTestScraper().Fetch(context.Background(), opts); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotUA != "TestScraper/1.0" {
		t.Errorf("Expected User-Agent 'TestScraper/1.0', got '%s'", gotUA)
	}
	if gotCustom != "TestValue" {
		t.Errorf("Expected custom header 'TestValue', got '%s'", gotCustom)
	}
}

func TestScraper_Fetch_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestScraper().Fetch(context.Background(), models.RequestOptions{URL: server.URL})
	if err == nil {
		t.Fatal("Expected error for 404 response, got nil")
	}
	if code, _ := engine.CodeOf(err); code != engine.ErrCodeHTTPStatus {
		t.Errorf("Expected code %s, got %s", engine.ErrCodeHTTPStatus, code)
	}
	if !errors.Is(err, engine.ErrHTTPStatus) {
		t.Errorf("Expected error to wrap ErrHTTPStatus: %v", err)
	}
}

func TestScraper_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	opts := models.RequestOptions{URL: server.URL, Timeout: 50 * time.Millisecond}
	_, err := newTestScraper().Fetch(context.Background(), opts)
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	if code, _ := engine.CodeOf(err); code != engine.ErrCodeTimeout {
		t.Errorf("Expected code %s, got %s (%v)", engine.ErrCodeTimeout, code, err)
	}
}

func TestScraper_Fetch_InvalidURL(t *testing.T) {
	_, err := newTestScraper().Fetch(context.Background(), models.RequestOptions{URL: "http://[::1"})
	if err == nil {
		t.Fatal("Expected error for invalid URL, got nil")
	}
	if !errors.Is(err, engine.ErrInvalidURL) {
		t.Errorf("Expected error to wrap ErrInvalidURL: %v", err)
	}
}

func TestScraper_Fetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestScraper().Fetch(context.Background(), models.RequestOptions{URL: url})
	if err == nil {
		t.Fatal("Expected error for closed server, got nil")
	}
	if code, _ := engine.CodeOf(err); code != engine.ErrCodeNetworkError {
		t.Errorf("Expected code %s, got %s", engine.ErrCodeNetworkError, code)
	}
}

func TestScraper_Name(t *testing.T) {
	if name := newTestScraper().Name(); name != "StaticScraper" {
		t.Errorf("Expected name 'StaticScraper', got '%s'", name)
	}
}
