// Package text provides utilities for text normalization used throughout the
// extraction pipeline. Campaign sources mix full-width and half-width
// characters freely, so all keyword matching and date parsing operates on
// normalized text produced here.
package text

import (
	"strings"

	"golang.org/x/text/width"
)

// Normalize trims the string, collapses runs of whitespace to a single
// space, and folds full-width digits and punctuation to their half-width
// forms. This is the canonical form used for keyword matching, identity
// hashing fallback, and date parsing.
//
// Examples:
//
//	Normalize("  新規　口座開設  ")   // "新規 口座開設"
//	Normalize("２０２５年１月")        // "2025年1月"
func Normalize(s string) string {
	folded := width.Fold.String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// CountRunes counts the number of Unicode characters (runes) in the given
// text. It correctly handles multi-byte characters including Japanese text
// and emoji by counting runes instead of bytes.
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes shortens text to at most max runes, appending suffix when
// truncation occurred. Used when surfacing long campaign names in
// notifications and logs.
func TruncateRunes(text string, max int, suffix string) string {
	if CountRunes(text) <= max {
		return text
	}
	runes := []rune(text)
	keep := max - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + suffix
}
