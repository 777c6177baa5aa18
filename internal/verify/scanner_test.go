package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shipnote/internal/changelog"
)

// fakeSearcher serves matches from an in-memory map of file contents.
// Patterns listed in failing error out, simulating mechanism failures.
type fakeSearcher struct {
	mu      sync.Mutex
	files   map[string]string
	failing map[string]bool
	calls   int
}

func (f *fakeSearcher) FilesWithMatches(_ context.Context, _, pattern string) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failing[pattern] {
		return nil, errors.New("search backend exploded")
	}
	var out []string
	for name, content := range f.files {
		if containsAnyFold(content, pattern) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (f *fakeSearcher) Matches(_ context.Context, _, pattern, file string) ([]Match, error) {
	if f.failing[pattern] {
		return nil, errors.New("search backend exploded")
	}
	var out []Match
	for i, line := range strings.Split(f.files[file], "\n") {
		if containsAnyFold(line, pattern) {
			out = append(out, Match{File: file, Line: i + 1, Text: line})
		}
	}
	return out, nil
}

func containsAnyFold(text, pattern string) bool {
	lower := strings.ToLower(text)
	for _, alt := range strings.Split(pattern, "|") {
		if strings.Contains(lower, strings.ToLower(alt)) {
			return true
		}
	}
	return false
}

func TestVerify_CleanEntry(t *testing.T) {
	searcher := &fakeSearcher{files: map[string]string{
		"server.go": "func StartWebsocket() error {\n\treturn listenAndServe()\n}",
	}}
	s := NewScanner(searcher)

	report, err := s.Verify(context.Background(), []changelog.Entry{
		{Category: changelog.Added, Description: "Added websocket listener"},
	}, "/repo")
	require.NoError(t, err)

	require.Len(t, report.Entries, 1)
	e := report.Entries[0]
	assert.Equal(t, 100, e.Confidence)
	assert.False(t, e.Degraded())
	assert.False(t, report.Degraded)
	assert.False(t, report.AllUnverifiable)
}

func TestVerify_StubFindingDegradesEntry(t *testing.T) {
	searcher := &fakeSearcher{files: map[string]string{
		"auth.go": "func OAuth2Flow() error {\n\t// TODO: implement token refresh for OAuth2\n\treturn nil\n}",
	}}
	s := NewScanner(searcher)

	report, err := s.Verify(context.Background(), []changelog.Entry{
		{Category: changelog.Added, Description: "Implemented full OAuth2 flow"},
	}, "/repo")
	require.NoError(t, err)

	e := report.Entries[0]
	require.Len(t, e.Findings, 1)
	assert.Equal(t, StubTodo, e.Findings[0].Category)
	assert.Equal(t, "auth.go", e.Findings[0].File)
	assert.Less(t, e.Confidence, 100)
	assert.NotEmpty(t, e.Warnings)
	assert.True(t, e.Degraded())
	assert.True(t, report.Degraded)
}

func TestVerify_SummaryInvariant(t *testing.T) {
	searcher := &fakeSearcher{
		files:   map[string]string{"pipeline.go": "type Pipeline struct{}"},
		failing: map[string]bool{"telemetry": true},
	}
	s := NewScanner(searcher)

	report, err := s.Verify(context.Background(), []changelog.Entry{
		{Category: changelog.Changed, Description: "Reworked pipeline telemetry"},
	}, "/repo")
	require.NoError(t, err)

	sum := report.Entries[0].Summary
	assert.Equal(t, sum.TotalKeywords, sum.SuccessfulSearches+sum.FailedSearches)
	assert.GreaterOrEqual(t, sum.SuccessfulSearches, 0)
	assert.Equal(t, 1, sum.FailedSearches)

	// Mechanism failure degrades, never aborts.
	assert.True(t, report.Entries[0].Degraded())
}

func TestVerify_AllUnverifiableDistinctFromEmpty(t *testing.T) {
	searcher := &fakeSearcher{files: map[string]string{}}
	s := NewScanner(searcher)

	report, err := s.Verify(context.Background(), []changelog.Entry{
		{Category: changelog.Added, Description: "Added quantum flux capacitor"},
		{Category: changelog.Fixed, Description: "Fixed chrono destabilizer drift"},
	}, "/repo")
	require.NoError(t, err)
	assert.True(t, report.AllUnverifiable)
	assert.True(t, report.Degraded)

	empty, err := s.Verify(context.Background(), nil, "/repo")
	require.NoError(t, err)
	assert.False(t, empty.AllUnverifiable)
	assert.False(t, empty.Degraded)
}

func TestVerify_OrderIndependentFold(t *testing.T) {
	evidence := []EntryEvidence{
		{Confidence: 100},
		{Confidence: 40, Warnings: []string{"w"}, Unverifiable: true},
		{Confidence: 70, Warnings: []string{"w"}},
	}
	forward := NewReport(evidence)
	reversed := NewReport([]EntryEvidence{evidence[2], evidence[1], evidence[0]})

	assert.Equal(t, forward.Degraded, reversed.Degraded)
	assert.Equal(t, forward.AllUnverifiable, reversed.AllUnverifiable)
	assert.Equal(t, forward.MeanConfidence(), reversed.MeanConfidence())
}

func TestVerify_CancellationDiscardsPartials(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &fakeSearcher{files: map[string]string{"a.go": "package a"}}
	s := NewScanner(searcher)

	report, err := s.Verify(ctx, []changelog.Entry{
		{Category: changelog.Added, Description: "Added something searchable"},
	}, "/repo")
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestVerify_NumericClaimMismatch(t *testing.T) {
	searcher := &fakeSearcher{files: map[string]string{
		"templates.go": "// templates registry for UTF-8 export formats",
	}}
	s := NewScanner(searcher)

	report, err := s.Verify(context.Background(), []changelog.Entry{
		{Category: changelog.Added, Description: "Added 8 templates"},
	}, "/repo")
	require.NoError(t, err)

	e := report.Entries[0]
	// "UTF-8" in the source must not satisfy the count of 8.
	assert.Less(t, e.Confidence, 100)
	found := false
	for _, w := range e.Warnings {
		if strings.Contains(w, "8 templates") {
			found = true
		}
	}
	assert.True(t, found, "expected a claim-mismatch warning, got %v", e.Warnings)
}
