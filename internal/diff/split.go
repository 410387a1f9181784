package diff

import "strings"

// lineSeparator is the only line terminator. A "\r" before it stays part of
// the line so that equality remains exact.
const lineSeparator = "\n"

// SplitLines splits s into lines. A trailing separator does not produce an
// empty final line, and the empty string yields a single empty line.
func SplitLines(s string) []string {
	lines := strings.Split(s, lineSeparator)
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines up to the trailing separator.
func JoinLines(lines []string) string {
	return strings.Join(lines, lineSeparator)
}

// textLines returns the lines the engine diffs for a text. Empty text has no
// lines, so diffing "" against "x" yields a single added record.
func textLines(s string) []string {
	if s == "" {
		return nil
	}
	return SplitLines(s)
}
