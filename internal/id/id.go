// Package id generates short prefixed identifiers for search sessions and stream clients.
// Book IDs are UUIDs and do not come from here.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used across the server.
const (
	PrefixSession = "srch"
	PrefixClient  = "sse"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	size     = 16
)

// Generate returns prefix, a dash, and 16 lowercase alphanumerics,
// e.g. "srch-4f9k2m0q8z1c7b3x".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", prefix, err)
	}
	return prefix + "-" + nid, nil
}

// Has reports whether s looks like an ID generated with prefix.
func Has(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok || len(rest) != size {
		return false
	}
	return strings.Trim(rest, alphabet) == ""
}
