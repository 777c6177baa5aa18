// Package textutil provides byte-safe helpers for text that crosses
// process boundaries (provider output, scanned file excerpts).
package textutil

import "unicode/utf8"

// Truncate returns s cut to at most maxBytes bytes without ever splitting
// a multi-byte character. It is a total function: any input yields a
// valid, possibly shorter, string.
func Truncate(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// TruncateWithEllipsis truncates like Truncate and appends "..." when
// anything was removed.
func TruncateWithEllipsis(s string, maxBytes int) string {
	t := Truncate(s, maxBytes)
	if len(t) < len(s) {
		return t + "..."
	}
	return t
}
