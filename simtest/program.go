package simtest

import "strings"

// Program joins lines of IC10 source with newlines, so table-driven tests
// can write a program as a Go string slice instead of one long literal.
func Program(lines ...string) string {
	return strings.Join(lines, "\n")
}
