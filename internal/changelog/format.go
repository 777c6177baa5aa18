package changelog

import (
	"fmt"
	"strings"
	"time"
)

// FormatSection renders entries as a Keep a Changelog version section.
// Categories appear in canonical order; empty categories are omitted.
// Used for terminal preview only; file persistence lives with the caller.
func FormatSection(version string, date time.Time, entries []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] - %s\n", version, date.Format("2006-01-02"))

	byCategory := make(map[Category][]Entry, len(Categories))
	for _, e := range entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	for _, cat := range Categories {
		group := byCategory[cat]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", cat)
		for _, e := range group {
			fmt.Fprintf(&b, "- %s\n", e.Description)
		}
	}

	return b.String()
}
