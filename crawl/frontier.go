package crawl

import (
	"container/heap"
	"sync"

	"github.com/fwojciec/warn/bloom"
)

// Hop is one pending page of a paginated listing.
type Hop struct {
	Number int
	URL    string
}

// Frontier is the pending-page queue of a pagination crawl. Hops pop in
// ascending page order and every URL is admitted at most once.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	visited *bloom.VisitedSet
	queue   *hopHeap
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom pre-check.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &hopHeap{}
	heap.Init(h)
	return &Frontier{
		visited: bloom.NewVisitedSet(n, fpRate),
		queue:   h,
	}
}

// Push adds a hop to the frontier.
// Returns false if its URL has already been seen.
// URLs differing only by fragment are considered duplicates.
func (f *Frontier) Push(hop Hop) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.visited.Visit(hop.URL) {
		return false
	}
	hop.URL = bloom.Normalize(hop.URL)
	heap.Push(f.queue, hop)
	return true
}

// Pop returns the pending hop with the lowest page number.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Hop, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return Hop{}, false
	}
	hop, _ := heap.Pop(f.queue).(Hop)
	return hop, true
}

// Len returns the number of pending hops.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been queued before.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Visited(rawURL)
}

// Visited returns the number of distinct URLs admitted so far.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Len()
}

// hopHeap implements heap.Interface ordered by page number.
type hopHeap []Hop

func (h hopHeap) Len() int { return len(h) }

func (h hopHeap) Less(i, j int) bool {
	return h[i].Number < h[j].Number
}

func (h hopHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *hopHeap) Push(x any) {
	hop, _ := x.(Hop)
	*h = append(*h, hop)
}

func (h *hopHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
