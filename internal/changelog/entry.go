// Package changelog defines the Keep a Changelog entry model produced by
// LLM generation and consumed by verification.
package changelog

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Category is a Keep a Changelog section name.
type Category string

const (
	Added      Category = "Added"
	Changed    Category = "Changed"
	Deprecated Category = "Deprecated"
	Removed    Category = "Removed"
	Fixed      Category = "Fixed"
	Security   Category = "Security"
)

// Categories lists all valid categories in render order.
var Categories = []Category{Added, Changed, Deprecated, Removed, Fixed, Security}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a string (case-insensitive) to a Category.
func ParseCategory(s string) (Category, bool) {
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Entry is one generated changelog line: a category plus a human-readable
// description. Immutable once created.
type Entry struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Output is the structured payload expected from a generation backend.
type Output struct {
	Entries []Entry `json:"entries"`
}

// ParseOutput decodes a JSON document into Output and validates every
// entry. The input must already be bare JSON; fence/noise stripping is the
// caller's concern.
func ParseOutput(jsonStr string) (*Output, error) {
	var out Output
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, eris.Wrap(err, "changelog: decode output")
	}

	for i, e := range out.Entries {
		cat, ok := ParseCategory(string(e.Category))
		if !ok {
			return nil, eris.Errorf("changelog: entry %d has unknown category %q", i, e.Category)
		}
		out.Entries[i].Category = cat
		if strings.TrimSpace(e.Description) == "" {
			return nil, eris.Errorf("changelog: entry %d has empty description", i)
		}
	}

	return &out, nil
}
