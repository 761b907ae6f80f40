package engine

import (
	"bytes"
	"io"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// leadingDoctype matches a doctype preceded only by whitespace or comments,
// with an optional byte order mark
var leadingDoctype = regexp.MustCompile(`(?i)^\x{FEFF}?((?:\s|<!--[\s\S]*?-->)*)<!doctype[^>]*>`)

// ParseHTML parses a page with its leading doctype dropped. Without a
// doctype the parser runs in quirks mode, where a <table> opened inside a
// <p> stays nested in it instead of closing the paragraph first.
func ParseHTML(r io.Reader) (*goquery.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src = leadingDoctype.ReplaceAll(src, []byte("$1"))

	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}
