// Package goquery implements HTML table extraction and link discovery for
// WARN listings using goquery.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/warn"
	"golang.org/x/net/html/charset"
)

// parse decodes body to UTF-8, honoring any <meta charset>, and parses it.
// Several state sites still serve windows-1252 pages.
func parse(body []byte) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(body), "text/html")
	if err != nil {
		return nil, warn.Errorf(warn.EINVALID, "failed to decode HTML: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, warn.Errorf(warn.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// resolveURL resolves href against base with the fragment stripped.
// Returns empty string if href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

func parseBase(pageURL string) (*url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, warn.Errorf(warn.EINVALID, "invalid base URL: %v", err)
	}
	return base, nil
}
