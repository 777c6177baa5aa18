package verify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// stopWords are filler and changelog boilerplate terms that make useless
// search targets.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
		"be", "have", "has", "had", "do", "does", "did", "will", "would",
		"could", "should", "may", "might", "must", "shall", "can", "need",
		"new", "add", "added", "change", "changed", "fix", "fixed", "update",
		"updated", "remove", "removed", "improve", "improved", "support",
		"supported", "feature", "features", "now", "using", "use", "based",
		"all", "any", "some", "more", "less", "better", "best", "first",
		"initial", "release", "version", "multiple", "various", "several",
		"this", "that", "when", "where", "also", "into", "over", "full",
	} {
		stopWords[w] = struct{}{}
	}
}

// genericNouns are non-countable subjects excluded from numeric-claim
// verification; "3 bytes" or "2 panics" in a description is prose, not a
// checkable inventory claim.
var genericNouns = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"handling", "panic", "panics", "byte", "bytes", "error", "errors",
		"time", "times", "way", "ways", "case", "cases", "issue", "issues",
		"bug", "bugs", "percent", "second", "seconds", "minute", "minutes",
		"line", "lines", "item", "items", "thing", "things", "bit", "bits",
	} {
		genericNouns[w] = struct{}{}
	}
}

var (
	// CamelCase, snake_case, or plain words of 4+ letters.
	identRe = regexp.MustCompile(`[A-Z][a-z]+(?:[A-Z][a-z]+)*|[a-z]+(?:_[a-z]+)+|[A-Za-z]{4,}`)

	quotedRe = regexp.MustCompile("[\"'`]([^\"'`]+)[\"'`]")

	// Capitalized technology or product names, up to two words.
	properRe = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+)?)\b`)

	// The leading anchor keeps digits inside hyphenated compounds (UTF-8,
	// sha-256) from being read as counts.
	numericClaimRe = regexp.MustCompile(`(?:^|[^\w-])(\d+)\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`)
)

// ExtractKeywords derives searchable terms from a changelog description:
// identifiers, quoted names, and capitalized product names. Command-line
// flag tokens are dropped entirely; searching for "-v" or "--force"
// matches half the tree and proves nothing.
func ExtractKeywords(description string) []string {
	cleaned := dropFlagTokens(description)

	set := map[string]struct{}{}

	for _, word := range identRe.FindAllString(cleaned, -1) {
		w := strings.ToLower(word)
		if _, stop := stopWords[w]; stop {
			continue
		}
		if len(w) < 4 || len(w) > 30 {
			continue
		}
		set[w] = struct{}{}
	}

	for _, m := range quotedRe.FindAllStringSubmatch(cleaned, -1) {
		term := strings.ToLower(strings.TrimSpace(m[1]))
		if len(term) >= 3 && len(term) <= 50 && !strings.HasPrefix(term, "-") {
			set[term] = struct{}{}
		}
	}

	for _, m := range properRe.FindAllStringSubmatch(cleaned, -1) {
		term := m[1]
		switch term {
		case "Added", "Changed", "Deprecated", "Removed", "Fixed", "Security", "The", "This", "With":
			continue
		}
		set[strings.ToLower(term)] = struct{}{}
	}

	keywords := make([]string, 0, len(set))
	for k := range set {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// dropFlagTokens removes whitespace-delimited tokens with a leading dash
// before extraction runs.
func dropFlagTokens(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(strings.Trim(f, "\"'`"), "-") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// NumericClaim is a countable assertion from a description, e.g. "8
// templates" parses to {Count: 8, Subject: "templates"}.
type NumericClaim struct {
	Count   int
	Subject string
	Text    string
}

// ExtractNumericClaims finds countable assertions in a description.
// Claims about generic non-countable nouns and implausible counts are
// skipped.
func ExtractNumericClaims(description string) []NumericClaim {
	var claims []NumericClaim
	for _, m := range numericClaimRe.FindAllStringSubmatch(description, -1) {
		count, err := strconv.Atoi(m[1])
		if err != nil || count == 0 || count > 1000 {
			continue
		}
		subject := trimTrailingStopWords(strings.ToLower(strings.TrimSpace(m[2])))
		if subject == "" || isGenericSubject(subject) {
			continue
		}
		claims = append(claims, NumericClaim{
			Count:   count,
			Subject: subject,
			Text:    m[1] + " " + subject,
		})
	}
	return claims
}

// trimTrailingStopWords drops stop words off the end of a subject so a
// phrase like "templates and" in "8 templates and 6 languages" searches
// for "templates", not the literal conjunction.
func trimTrailingStopWords(subject string) string {
	words := strings.Fields(subject)
	for len(words) > 0 {
		if _, stop := stopWords[words[len(words)-1]]; !stop {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func isGenericSubject(subject string) bool {
	for _, word := range strings.Fields(subject) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, generic := genericNouns[word]; !generic {
			return false
		}
	}
	return true
}

// claimCountRe matches a claimed count standing alone as a token.
// Hyphenated compounds like "UTF-8" never support a claim of 8 of
// anything. Callers scanning many lines should compile once per claim.
func claimCountRe(count int) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\w-])` + strconv.Itoa(count) + `(?:[^\w-]|$)`)
}

// ClaimSupportedBy reports whether text mentions the claimed count on a
// word boundary.
func ClaimSupportedBy(text string, claim NumericClaim) bool {
	return claimCountRe(claim.Count).MatchString(text)
}
