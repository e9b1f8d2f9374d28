// Package bloom tracks the URLs a crawl has visited behind a Bloom filter.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// VisitedSet records visited page URLs. The Bloom filter answers negatives;
// its positives are confirmed against an exact set, so a false positive
// never reports an unvisited page as visited. URLs differing only by
// fragment are the same page.
//
// VisitedSet is not safe for concurrent use.
type VisitedSet struct {
	filter  *bloom.BloomFilter
	exact   map[string]struct{}
	refuted int
}

// NewVisitedSet creates a VisitedSet sized for n expected pages with the
// given false positive rate for the Bloom pre-check.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		filter: bloom.NewWithEstimates(max(n, 1), fpRate),
		exact:  make(map[string]struct{}),
	}
}

// Visit marks url as visited. It reports false if url was already visited.
func (s *VisitedSet) Visit(url string) bool {
	url = Normalize(url)
	if s.visited(url) {
		return false
	}
	s.filter.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Visited reports whether url has been visited.
func (s *VisitedSet) Visited(url string) bool {
	return s.visited(Normalize(url))
}

func (s *VisitedSet) visited(url string) bool {
	if !s.filter.TestString(url) {
		return false
	}
	if _, ok := s.exact[url]; ok {
		return true
	}
	s.refuted++
	return false
}

// Len returns the number of visited pages.
func (s *VisitedSet) Len() int { return len(s.exact) }

// Refuted returns how many Bloom positives the exact set has overruled.
func (s *VisitedSet) Refuted() int { return s.refuted }

// Normalize strips the fragment from url.
func Normalize(url string) string {
	if i := strings.IndexByte(url, '#'); i != -1 {
		return url[:i]
	}
	return url
}
