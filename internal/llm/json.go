package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of an LLM response that may be
// wrapped in markdown fences or surrounded by conversational text.
//
// Tries, in order: a ```json fenced block, a bare ``` fenced block whose
// content starts with '{', balanced-brace extraction from surrounding
// text, and finally the trimmed input unchanged.
func ExtractJSON(response string) string {
	trimmed := strings.TrimSpace(response)

	if start := strings.Index(trimmed, "```json"); start >= 0 {
		rest := trimmed[start+7:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	if start := strings.Index(trimmed, "```"); start >= 0 {
		rest := trimmed[start+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			inner := strings.TrimSpace(rest[:end])
			if strings.HasPrefix(inner, "{") {
				return inner
			}
		}
	}

	if jsonStr, ok := findValidJSONObject(trimmed); ok {
		return jsonStr
	}

	return trimmed
}

// findValidJSONObject scans every '{' in the input and returns the first
// candidate that decodes as JSON, using balanced-brace extraction with
// string-escape awareness to cut off trailing text.
func findValidJSONObject(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		candidate := text[i:]

		// Fast path: the remainder is clean JSON.
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}

		if extracted, ok := extractBalancedBraces(candidate); ok {
			if json.Valid([]byte(extracted)) {
				return extracted, true
			}
		}
	}
	return "", false
}

// extractBalancedBraces returns the prefix of text with balanced braces,
// respecting JSON string literals and escape sequences so braces inside
// strings do not affect depth.
func extractBalancedBraces(text string) (string, bool) {
	depth := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(text); i++ {
		if escapeNext {
			escapeNext = false
			continue
		}
		switch text[i] {
		case '\\':
			if inString {
				escapeNext = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[:i+1], true
				}
			}
		}
	}
	return "", false
}
