package verify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/shipnote/internal/textutil"
)

// StubCategory names one kind of unfinished-work marker. The set is
// closed: downstream consumers can switch on it to decide how damning a
// finding is.
type StubCategory string

const (
	StubTodo                StubCategory = "todo"
	StubFixme               StubCategory = "fixme"
	StubXXX                 StubCategory = "xxx"
	StubHack                StubCategory = "hack"
	StubUnimplementedMacro  StubCategory = "unimplemented_macro"
	StubTodoMacro           StubCategory = "todo_macro"
	StubPanicNotImplemented StubCategory = "panic_not_implemented"
	StubStubComment         StubCategory = "stub_comment"
	StubPlaceholderComment  StubCategory = "placeholder_comment"
	StubNotImplementedError StubCategory = "not_implemented_error"
	StubNotImplementedRaise StubCategory = "not_implemented_raise"
	StubNotYetImplemented   StubCategory = "not_yet_implemented"
	StubComingSoon          StubCategory = "coming_soon"
)

// stubRule pairs a detection pattern with its category. Order matters:
// the first rule matching a line wins, later rules cannot re-flag it.
type stubRule struct {
	category StubCategory
	pattern  *regexp.Regexp
}

var stubRules = []stubRule{
	{StubUnimplementedMacro, regexp.MustCompile(`unimplemented!`)},
	{StubTodoMacro, regexp.MustCompile(`todo!`)},
	{StubPanicNotImplemented, regexp.MustCompile(`panic\(["!]?.*not implemented`)},
	{StubNotImplementedRaise, regexp.MustCompile(`raise NotImplementedError`)},
	{StubNotImplementedError, regexp.MustCompile(`ErrNotImplemented|errors\.New\("not implemented"\)|NotImplemented`)},
	{StubNotYetImplemented, regexp.MustCompile(`(?i)not yet implemented`)},
	{StubComingSoon, regexp.MustCompile(`(?i)coming soon`)},
	{StubStubComment, regexp.MustCompile(`(?i)//\s*stub|#\s*stub\b`)},
	{StubPlaceholderComment, regexp.MustCompile(`(?i)//\s*placeholder|#\s*placeholder\b`)},
	{StubTodo, regexp.MustCompile(`\bTODO\b`)},
	{StubFixme, regexp.MustCompile(`\bFIXME\b`)},
	{StubXXX, regexp.MustCompile(`\bXXX\b`)},
	{StubHack, regexp.MustCompile(`\bHACK\b`)},
}

// stubSearchPattern is the union of all rules, for a single search pass
// per file.
const stubSearchPattern = `TODO|FIXME|XXX|HACK|unimplemented!|todo!|not implemented|not yet implemented|NotImplemented|// stub|// placeholder|coming soon`

// maxExcerptBytes caps how much of a matched line lands in a finding.
const maxExcerptBytes = 200

// StubFinding is one occurrence of an unfinished-work marker.
type StubFinding struct {
	Category StubCategory
	File     string
	Line     int
	Excerpt  string
}

// ClassifyLine matches a single line against the stub rules.
func ClassifyLine(line string) (StubCategory, bool) {
	for _, rule := range stubRules {
		if rule.pattern.MatchString(line) {
			return rule.category, true
		}
	}
	return "", false
}

// Classify scans matched lines and returns deduplicated findings. A line
// flagged by several rules, or surfaced by several searches, yields one
// finding keyed on (file, line).
func Classify(matches []Match) []StubFinding {
	seen := map[string]struct{}{}
	var findings []StubFinding

	for _, m := range matches {
		category, ok := ClassifyLine(m.Text)
		if !ok {
			continue
		}
		key := m.File + ":" + strconv.Itoa(m.Line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		findings = append(findings, StubFinding{
			Category: category,
			File:     m.File,
			Line:     m.Line,
			Excerpt:  textutil.Truncate(strings.TrimSpace(m.Text), maxExcerptBytes),
		})
	}
	return findings
}
