package llm

import (
	"regexp"
	"strings"

	"github.com/sells-group/shipnote/internal/textutil"
)

// Prompt input limits, following OWASP LLM prompt-injection guidance.
const (
	maxPromptInputLength = 10_000
	maxPromptInputLines  = 50
)

var (
	// Injection phrasings that commit messages and diffs have no business
	// containing verbatim.
	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
		regexp.MustCompile(`(?i)disregard\s+(all\s+)?prior\s+instructions`),
		regexp.MustCompile(`(?i)you\s+are\s+now\s+a`),
		regexp.MustCompile(`(?i)system\s*prompt\s*:`),
		regexp.MustCompile(`(?i)<\s*/?\s*system\s*>`),
	}

	ansiEscapeRe     = regexp.MustCompile(`\x1b(\[[0-9;?]*[a-zA-Z]|.)`)
	runsOfBlankLines = regexp.MustCompile(`\n{3,}`)
)

// SanitizeForPrompt cleans untrusted text (commit subjects, diff hunks)
// before embedding it in a generation prompt: strips control characters
// and ANSI escapes, neutralizes markdown structure, filters known
// injection phrasings, and caps line count and byte length.
//
// The length cap never splits a multi-byte character.
func SanitizeForPrompt(text string) string {
	// ANSI sequences go first; stripping the ESC byte alone would leave
	// their printable tails behind.
	result := ansiEscapeRe.ReplaceAllString(text, "")
	result = stripControlChars(result)

	// Code fences and headers could be read as instructions by the model.
	result = strings.ReplaceAll(result, "```", "'''")
	result = strings.ReplaceAll(result, "## ", "// ")
	result = strings.ReplaceAll(result, "# ", "/ ")

	for _, re := range injectionPatterns {
		result = re.ReplaceAllString(result, "[filtered]")
	}

	result = runsOfBlankLines.ReplaceAllString(result, "\n\n")

	lines := strings.Split(result, "\n")
	if len(lines) > maxPromptInputLines {
		lines = lines[:maxPromptInputLines]
	}
	result = strings.Join(lines, "\n")

	return textutil.Truncate(result, maxPromptInputLength)
}

func stripControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}
