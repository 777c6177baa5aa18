package verify

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/shipnote/internal/changelog"
)

// maxStubCheckFiles caps how many evidence files get a stub sweep per
// keyword.
const maxStubCheckFiles = 5

// Scanner verifies changelog entries against a repository tree. Safe for
// concurrent use; the repository is only ever read.
type Scanner struct {
	searcher    Searcher
	penalties   Penalties
	concurrency int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithPenalties overrides the default confidence deductions.
func WithPenalties(p Penalties) ScannerOption {
	return func(s *Scanner) { s.penalties = p }
}

// WithConcurrency bounds the parallel per-entry scan workers.
func WithConcurrency(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScanner creates a Scanner over the given search mechanism.
func NewScanner(searcher Searcher, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		searcher:    searcher,
		penalties:   DefaultPenalties(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify scans every entry in parallel and folds the results into a
// report. Entries scan independently against the read-only tree, so
// worker order does not affect the outcome. Cancellation discards all
// partial results.
func (s *Scanner) Verify(ctx context.Context, entries []changelog.Entry, repoRoot string) (*Report, error) {
	evidence := make([]EntryEvidence, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evidence[i] = s.scanEntry(gctx, entry, repoRoot)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewReport(evidence), nil
}

// scanEntry checks one entry's claims against the tree. Search-mechanism
// failures degrade confidence; they never abort the run.
func (s *Scanner) scanEntry(ctx context.Context, entry changelog.Entry, repoRoot string) EntryEvidence {
	keywords := ExtractKeywords(entry.Description)

	res := scanResult{}
	res.summary.TotalKeywords = len(keywords)

	anySupport := false
	swept := map[string]struct{}{}
	var stubMatches []Match

	for _, kw := range keywords {
		files, err := s.searcher.FilesWithMatches(ctx, repoRoot, kw)
		if err != nil {
			res.summary.FailedSearches++
			res.failedKeywords = append(res.failedKeywords, kw)
			zap.L().Debug("keyword search failed",
				zap.String("keyword", kw),
				zap.Error(err),
			)
			continue
		}
		res.summary.SuccessfulSearches++

		if len(files) == 0 {
			continue
		}
		anySupport = true

		// Sweep the evidence files for unfinished-work markers.
		if len(files) > maxStubCheckFiles {
			files = files[:maxStubCheckFiles]
		}
		for _, f := range files {
			if _, done := swept[f]; done {
				continue
			}
			swept[f] = struct{}{}

			matches, err := s.searcher.Matches(ctx, repoRoot, stubSearchPattern, f)
			if err != nil {
				zap.L().Debug("stub sweep failed", zap.String("file", f), zap.Error(err))
				continue
			}
			stubMatches = append(stubMatches, matches...)
		}
	}

	res.findings = Classify(stubMatches)
	res.unverifiable = len(keywords) > 0 && !anySupport
	res.mismatches = s.checkNumericClaims(ctx, entry.Description, repoRoot)

	confidence, warnings := scoreEntry(res, s.penalties)
	return EntryEvidence{
		Entry:        entry,
		Summary:      res.summary,
		Findings:     res.findings,
		Confidence:   confidence,
		Warnings:     warnings,
		Unverifiable: res.unverifiable,
	}
}

// checkNumericClaims verifies countable assertions against source text.
// A claim is contradicted when its subject appears in the tree but the
// claimed count never does on a word boundary.
func (s *Scanner) checkNumericClaims(ctx context.Context, description, repoRoot string) []NumericClaim {
	var mismatches []NumericClaim

	for _, claim := range ExtractNumericClaims(description) {
		files, err := s.searcher.FilesWithMatches(ctx, repoRoot, claim.Subject)
		if err != nil || len(files) == 0 {
			continue
		}

		if len(files) > maxStubCheckFiles {
			files = files[:maxStubCheckFiles]
		}
		countRe := claimCountRe(claim.Count)
		supported := false
		for _, f := range files {
			matches, err := s.searcher.Matches(ctx, repoRoot, claim.Subject, f)
			if err != nil {
				continue
			}
			for _, m := range matches {
				if countRe.MatchString(m.Text) {
					supported = true
					break
				}
			}
			if supported {
				break
			}
		}
		if !supported {
			mismatches = append(mismatches, claim)
		}
	}
	return mismatches
}
