package warn

// Page is one fetched unit of a paginated listing.
type Page struct {
	Number int // logical page number, starting at 1
	URL    string
	Key    CacheKey
	Body   []byte
}

// PageChain is the ordered sequence of pages of one logical document,
// ascending by page number.
type PageChain []*Page

// PageKeyFunc returns the cache key for a logical page number.
type PageKeyFunc func(page int) CacheKey

// NextLinkFinder locates the "next page" link of a paginated listing.
type NextLinkFinder interface {
	// NextURL returns the absolute URL of page number+1, if the body
	// advertises one. pageURL is used to resolve relative links.
	NextURL(body []byte, pageURL string, number int) (next string, ok bool, err error)
}

// LinkCollector discovers document URLs on an index page.
type LinkCollector interface {
	// CollectLinks returns absolute URLs in document order, without
	// duplicates.
	CollectLinks(body []byte, pageURL string) ([]string, error)
}
