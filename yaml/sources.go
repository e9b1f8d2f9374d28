// Package yaml loads source definitions from YAML documents.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/fwojciec/warn"
	"gopkg.in/yaml.v3"
)

// document is the top-level layout of a sources file.
type document struct {
	Sources []*warn.Source `yaml:"sources"`
}

// LoadSources reads and parses the sources file at path.
func LoadSources(path string) ([]*warn.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, warn.Errorf(warn.ENOTFOUND, "sources file %s not found", path)
		}
		return nil, err
	}
	return ParseSources(data)
}

// ParseSources decodes a sources document, applies defaults and validates
// every source. Unknown keys and duplicate source ids are rejected.
func ParseSources(data []byte) ([]*warn.Source, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, warn.Errorf(warn.EINVALID, "sources document is empty")
		}
		return nil, warn.Errorf(warn.EINVALID, "parsing sources: %v", err)
	}
	if len(doc.Sources) == 0 {
		return nil, warn.Errorf(warn.EINVALID, "at least one source is required")
	}

	seen := make(map[string]bool, len(doc.Sources))
	for i, src := range doc.Sources {
		if src == nil {
			return nil, warn.Errorf(warn.EINVALID, "sources[%d] is empty", i)
		}
		src.SetDefaults()
		if err := src.Validate(); err != nil {
			return nil, err
		}
		if seen[src.ID] {
			return nil, warn.Errorf(warn.EINVALID, "duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
	}
	return doc.Sources, nil
}
