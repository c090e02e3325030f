// Package utils holds small helpers shared across layers. Nothing here may
// depend on domain or transport types.
package utils

import "strconv"

// AtoiDefault parses s as an int, falling back to def when s is empty or not
// a number. Used for query parameters like page and page_size where a bad
// value should degrade to the default rather than fail the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to the inclusive range [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
