// Package verify cross-checks generated changelog claims against the
// repository before they are trusted: it extracts keywords per entry,
// searches the tree for supporting evidence and unfinished-work markers,
// and folds the results into a bounded confidence score per claim.
package verify

import (
	"github.com/sells-group/shipnote/internal/changelog"
)

// ScanSummary counts search outcomes for one entry. Successful plus
// failed always equals total; a mechanism error counts as failed, zero
// matches still counts as successful.
type ScanSummary struct {
	TotalKeywords      int
	SuccessfulSearches int
	FailedSearches     int
}

// EntryEvidence is the verification outcome for one changelog entry.
type EntryEvidence struct {
	Entry    changelog.Entry
	Summary  ScanSummary
	Findings []StubFinding

	// Confidence is in [0, 100]; 100 means no penalty was applied.
	Confidence int

	// Warnings holds one entry per penalty source. Empty exactly when
	// Confidence is 100.
	Warnings []string

	// Unverifiable marks an entry for which no keyword search produced
	// any supporting evidence.
	Unverifiable bool
}

// Degraded reports whether any penalty was applied to this entry.
func (e EntryEvidence) Degraded() bool {
	return len(e.Warnings) > 0
}

// Report is the immutable aggregate over all entries of one run.
type Report struct {
	Entries  []EntryEvidence
	Degraded bool

	// AllUnverifiable is set when the run produced entries but none of
	// them could be supported by evidence. Distinct from an empty report,
	// which just means there was nothing to verify.
	AllUnverifiable bool
}

// NewReport folds per-entry evidence into a report. The fold is
// order-independent, so evidence may arrive from parallel scans in any
// order.
func NewReport(evidence []EntryEvidence) *Report {
	r := &Report{Entries: evidence}

	unverifiable := 0
	for _, e := range evidence {
		if e.Degraded() {
			r.Degraded = true
		}
		if e.Unverifiable {
			unverifiable++
		}
	}
	r.AllUnverifiable = len(evidence) > 0 && unverifiable == len(evidence)
	return r
}

// MeanConfidence averages entry confidence, or 0 for an empty report.
func (r *Report) MeanConfidence() int {
	if len(r.Entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range r.Entries {
		sum += e.Confidence
	}
	return sum / len(r.Entries)
}
