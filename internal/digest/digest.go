// Package digest holds the deterministic hashes used for day selection and
// catalog change detection. Neither is meant to be secure.
package digest

import (
	"crypto/sha256"
	"fmt"
	"hash/fnv"
	"strings"
)

// FNV1a returns the 32-bit FNV-1a hash of s.
func FNV1a(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Normalize trims surrounding whitespace and normalizes line endings so that a
// catalog re-saved with CRLF endings does not look edited.
func Normalize(part string) string {
	p := strings.ReplaceAll(part, "\r\n", "\n")
	return strings.TrimSpace(p)
}

// Fingerprint returns the change-detection hash of a catalog entry. Field order
// matters: swapping title and body produces a different fingerprint.
func Fingerprint(title, body, releaseKey string) string {
	h := sha256.New()
	for _, part := range []string{title, body, releaseKey} {
		// Length-prefixed so text moving across a field boundary changes the sum.
		p := Normalize(part)
		fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
