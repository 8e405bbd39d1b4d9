package digest

import (
	"testing"
)

func TestFNV1a(t *testing.T) {
	testCases := []struct {
		input    string
		expected uint32
	}{
		{"", 0x811c9dc5},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := FNV1a(tc.input); got != tc.expected {
				t.Errorf("Expected FNV1a(%q) to be %#x, but got %#x", tc.input, tc.expected, got)
			}
		})
	}
}

func TestFNV1aIsStable(t *testing.T) {
	if FNV1a("2025-09-05") != FNV1a("2025-09-05") {
		t.Error("Expected identical keys to hash identically")
	}
	if FNV1a("2025-09-05") == FNV1a("2025-09-06") {
		t.Error("Expected adjacent days to hash differently")
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("Title", "Body", "2025-09-01")
		b := Fingerprint("Title", "Body", "2025-09-01")
		if a != b {
			t.Error("Expected fingerprints of identical entries to match")
		}
	})

	t.Run("line endings are ignored", func(t *testing.T) {
		a := Fingerprint("Title", "line one\nline two", "2025-09-01")
		b := Fingerprint("Title", "line one\r\nline two\r\n", "2025-09-01")
		if a != b {
			t.Error("Expected CRLF and LF bodies to fingerprint the same")
		}
	})

	t.Run("order sensitive", func(t *testing.T) {
		a := Fingerprint("A", "B", "2025-09-01")
		b := Fingerprint("B", "A", "2025-09-01")
		if a == b {
			t.Error("Expected swapped fields to change the fingerprint")
		}
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		a := Fingerprint("ab", "c", "2025-09-01")
		b := Fingerprint("a", "bc", "2025-09-01")
		if a == b {
			t.Error("Expected shifted field boundaries to change the fingerprint")
		}
	})

	t.Run("separator characters inside fields", func(t *testing.T) {
		a := Fingerprint("a\x1fb", "c", "2025-09-01")
		b := Fingerprint("a", "b\x1fc", "2025-09-01")
		if a == b {
			t.Error("Expected text moved across a field boundary to change the fingerprint")
		}
	})

	t.Run("digits inside fields", func(t *testing.T) {
		a := Fingerprint("1:a", "", "2025-09-01")
		b := Fingerprint("", "a", "2025-09-01")
		if a == b {
			t.Error("Expected length-like text in a field to change the fingerprint")
		}
	})

	t.Run("case is significant", func(t *testing.T) {
		if Fingerprint("Title", "Body", "2025-09-01") == Fingerprint("title", "body", "2025-09-01") {
			t.Error("Expected a case-only edit to change the fingerprint")
		}
	})
}
