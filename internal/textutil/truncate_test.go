package textutil

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate_ShortInput(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("expected unchanged string, got %q", got)
	}
}

func TestTruncate_ExactBoundary(t *testing.T) {
	if got := Truncate("hello", 5); got != "hello" {
		t.Errorf("expected unchanged string, got %q", got)
	}
}

func TestTruncate_ASCII(t *testing.T) {
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestTruncate_NeverSplitsMultibyteRune(t *testing.T) {
	// "héllo" with é as two bytes; cutting at 2 lands mid-rune.
	s := "héllo"
	got := Truncate(s, 2)
	if got != "h" {
		t.Errorf("expected %q, got %q", "h", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("result is not valid UTF-8: %q", got)
	}
}

func TestTruncate_EmojiBoundary(t *testing.T) {
	s := "ok\U0001F680done" // rocket is 4 bytes at offset 2
	for max := 0; max <= len(s); max++ {
		got := Truncate(s, max)
		if !utf8.ValidString(got) {
			t.Errorf("max=%d: result not valid UTF-8: %q", max, got)
		}
		if len(got) > max {
			t.Errorf("max=%d: result longer than budget: %d bytes", max, len(got))
		}
	}
}

func TestTruncate_ZeroAndNegative(t *testing.T) {
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := Truncate("abc", -1); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := TruncateWithEllipsis("hello world", 5); got != "hello..." {
		t.Errorf("expected %q, got %q", "hello...", got)
	}
	if got := TruncateWithEllipsis("hi", 5); got != "hi" {
		t.Errorf("expected %q, got %q", "hi", got)
	}
}
