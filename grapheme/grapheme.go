// Package grapheme measures user-perceived characters in text node values.
// All offsets are byte offsets.
package grapheme

import "github.com/rivo/uniseg"

// Before returns the byte length of the grapheme cluster that ends at, or
// contains the byte before, offset. It returns 0 at the start of text.
func Before(text string, offset int) int {
	if offset <= 0 || text == "" {
		return 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		from, to := g.Positions()
		if from < offset && offset <= to {
			return offset - from
		}
	}
	return 0
}

// After returns the byte length of the grapheme cluster that starts at, or
// contains, offset. It returns 0 at the end of text.
func After(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(text) {
		return 0
	}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		from, to := g.Positions()
		if from <= offset && offset < to {
			return to - offset
		}
	}
	return 0
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	return uniseg.GraphemeClusterCount(text)
}
