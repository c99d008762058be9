// Package search implements case-insensitive wildcard matching over item
// text. Patterns use * (any run of characters, including none) and ?
// (exactly one character); everything else matches literally. Patterns are
// anchored at both ends, so a pattern without wildcards must equal the
// whole text.
package search

import (
	"strings"

	"jrnl/internal/item"
)

// Match reports whether text matches pattern, ignoring case.
func Match(pattern, text string) bool {
	p := []rune(strings.ToLower(pattern))
	t := []rune(strings.ToLower(text))

	// Two-pointer scan with backtracking to the most recent star.
	var pi, ti int
	star, starTi := -1, 0
	for ti < len(t) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == t[ti]):
			pi++
			ti++
		case pi < len(p) && p[pi] == '*':
			star = pi
			starTi = ti
			pi++
		case star >= 0:
			starTi++
			pi = star + 1
			ti = starTi
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// Entry pairs an item with the text the pattern runs against.
type Entry struct {
	Item item.Item
	Text string
}

// Filter returns the items whose text matches pattern, in corpus order.
func Filter(corpus []Entry, pattern string) []item.Item {
	var out []item.Item
	for _, e := range corpus {
		if Match(pattern, e.Text) {
			out = append(out, e.Item)
		}
	}
	return out
}
