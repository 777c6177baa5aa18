package verify

import "fmt"

// Penalties are the confidence deductions per evidence problem. The
// magnitudes are tuning knobs; the hard contract is that each applied
// penalty lowers confidence, never raises it, and the result stays in
// [0, 100].
type Penalties struct {
	// FailedSearch applies per search whose mechanism errored. Distinct
	// from a search that ran fine and found nothing.
	FailedSearch int

	// StubFinding applies per deduplicated unfinished-work marker found
	// near a claim's evidence.
	StubFinding int

	// Unverifiable applies once when no keyword produced any supporting
	// evidence.
	Unverifiable int

	// ClaimMismatch applies per numeric claim the evidence contradicts.
	ClaimMismatch int
}

// DefaultPenalties returns the standard deductions.
func DefaultPenalties() Penalties {
	return Penalties{
		FailedSearch:  5,
		StubFinding:   15,
		Unverifiable:  30,
		ClaimMismatch: 20,
	}
}

// scanResult is the raw outcome of scanning one entry, before scoring.
type scanResult struct {
	summary        ScanSummary
	findings       []StubFinding
	failedKeywords []string
	unverifiable   bool
	mismatches     []NumericClaim
}

// scoreEntry folds a scan result into a confidence score and warnings.
// Starts at 100 and deducts per penalty source; every deduction appends
// exactly one warning, so warnings are empty iff confidence is 100.
func scoreEntry(res scanResult, p Penalties) (int, []string) {
	confidence := 100
	var warnings []string

	for _, kw := range res.failedKeywords {
		confidence -= p.FailedSearch
		warnings = append(warnings, fmt.Sprintf("search for %q failed; claim could not be checked", kw))
	}

	for _, f := range res.findings {
		confidence -= p.StubFinding
		warnings = append(warnings, fmt.Sprintf("%s marker at %s:%d suggests unfinished work: %s", f.Category, f.File, f.Line, f.Excerpt))
	}

	if res.unverifiable {
		confidence -= p.Unverifiable
		warnings = append(warnings, "no supporting evidence found for this claim")
	}

	for _, c := range res.mismatches {
		confidence -= p.ClaimMismatch
		warnings = append(warnings, fmt.Sprintf("claimed %q but the count could not be confirmed", c.Text))
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence, warnings
}
