// Package utils holds small helpers shared across the webarchive packages
// that don't deserve their own package.
package utils

import (
	"strings"
	"unicode"

	"github.com/apex/log/handlers/cli"
)

var normalPadding = cli.Default.Padding

// Indent wraps an apex/log log function so a single call logs at the given
// indentation level, then restores the default padding. Used to nest
// sub-frame log lines under their parent archive during extraction.
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// IsASCII reports whether s is entirely printable 7-bit ASCII.
func IsASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Unique returns s with duplicate and empty entries removed, preserving the
// order of first occurrence.
func Unique(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, elem := range s {
		if elem == "" || seen[elem] {
			continue
		}
		seen[elem] = true
		out = append(out, elem)
	}
	return out
}

// TrimLeadingSlash strips a single leading "/" from s, if present.
func TrimLeadingSlash(s string) string {
	return strings.TrimPrefix(s, "/")
}
