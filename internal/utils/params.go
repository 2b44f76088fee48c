package utils

import "strconv"

// ParseID reads a numeric path parameter. Malformed or negative input
// yields 0, which no row ever has, so lookups with it fail naturally.
func ParseID(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
