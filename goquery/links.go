package goquery

import (
	"net/url"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/warn"
)

// Compile-time interface verification.
var (
	_ warn.NextLinkFinder = (*PageLinkFinder)(nil)
	_ warn.LinkCollector  = (*LinkCollector)(nil)
)

// PageLinkFinder finds the link to the next page of a listing: an anchor
// inside the pager container whose query parameter names page n+1.
type PageLinkFinder struct {
	container string
	param     string
}

// NewPageLinkFinder creates a PageLinkFinder. Empty arguments select
// warn.DefaultLinkContainer and warn.DefaultPageParam.
func NewPageLinkFinder(container, param string) *PageLinkFinder {
	if container == "" {
		container = warn.DefaultLinkContainer
	}
	if param == "" {
		param = warn.DefaultPageParam
	}
	return &PageLinkFinder{container: container, param: param}
}

// NextURL returns the absolute URL of page number+1 if the page links to it.
func (f *PageLinkFinder) NextURL(body []byte, pageURL string, number int) (string, bool, error) {
	base, err := parseBase(pageURL)
	if err != nil {
		return "", false, err
	}
	doc, err := parse(body)
	if err != nil {
		return "", false, err
	}

	want := strconv.Itoa(number + 1)
	var next string
	doc.Find(f.container).Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return true
		}
		resolved := resolveURL(base, href)
		u, err := url.Parse(resolved)
		if err != nil || u.Query().Get(f.param) != want {
			return true
		}
		next = resolved
		return false
	})

	return next, next != "", nil
}

// LinkCollector collects document links from an index page.
type LinkCollector struct {
	pattern *regexp.Regexp
}

// NewLinkCollector creates a LinkCollector keeping links whose absolute URL
// matches pattern. An empty pattern keeps every HTTP link.
func NewLinkCollector(pattern string) (*LinkCollector, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, warn.Errorf(warn.EINVALID, "invalid link pattern %q: %v", pattern, err)
	}
	return &LinkCollector{pattern: re}, nil
}

// CollectLinks returns matching links in document order without duplicates.
func (c *LinkCollector) CollectLinks(body []byte, pageURL string) ([]string, error) {
	base, err := parseBase(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] || !c.pattern.MatchString(resolved) {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links, nil
}
