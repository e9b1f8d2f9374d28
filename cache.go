package warn

import (
	"context"
	"strings"
)

// CacheKey identifies one fetched artifact, e.g. "fl/2020_page_3" or
// "fl/2016.pdf". Keys are stable across runs for the same logical resource
// and partitioned by source so different sources never collide.
type CacheKey string

// NewCacheKey builds a key from a source identifier and sub-identifiers
// joined with underscores: NewCacheKey("fl", "2020", "page", "3") is
// "fl/2020_page_3".
func NewCacheKey(source string, parts ...string) CacheKey {
	return CacheKey(source + "/" + strings.Join(parts, "_"))
}

// WithExt returns the key with a file extension appended. Binary artifacts
// such as PDFs are stored with a content-appropriate extension.
func (k CacheKey) WithExt(ext string) CacheKey {
	if ext == "" || strings.HasSuffix(string(k), ext) {
		return k
	}
	return k + CacheKey(ext)
}

// Source returns the source partition of the key.
func (k CacheKey) Source() string {
	source, _, _ := strings.Cut(string(k), "/")
	return source
}

// Validate returns an error if the key cannot be safely mapped to storage.
func (k CacheKey) Validate() error {
	source, rest, ok := strings.Cut(string(k), "/")
	if !ok || source == "" || rest == "" {
		return Errorf(EINVALID, "cache key %q must have the form source/name", k)
	}
	if strings.ContainsAny(rest, `/\`) {
		return Errorf(EINVALID, "cache key %q has a path separator in its name", k)
	}
	if source == ".." || source == "." || rest == ".." || rest == "." {
		return Errorf(EINVALID, "cache key %q escapes the cache", k)
	}
	return nil
}

func (k CacheKey) String() string { return string(k) }

// CacheEntry is a cached artifact. Entries are immutable once written and
// only replaced by an explicit re-fetch.
type CacheEntry struct {
	Key     CacheKey
	Payload []byte
	Hash    string // xxhash of Payload, hex

	// FromCache is true when the entry was served without a network fetch.
	FromCache bool
}

// CacheStore persists fetched artifacts by key.
type CacheStore interface {
	// Read returns the payload stored under key.
	// Returns ENOTFOUND if nothing is stored. Read never touches the network.
	Read(ctx context.Context, key CacheKey) ([]byte, error)

	// Write stores payload under key. Writing an identical payload is a
	// no-op; a different payload replaces the previous one. Readers never
	// observe a partially written entry.
	Write(ctx context.Context, key CacheKey, payload []byte) error
}
