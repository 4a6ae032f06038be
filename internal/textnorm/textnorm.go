// Package textnorm holds the whitespace utilities shared by every stage of
// the extraction pipeline.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Space collapses runs of blank-class whitespace (space, tab, CR, FF, VT)
// into a single space and trims the result. Line feeds are kept.
func Space(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastBlank := false
	for _, r := range s {
		if isBlank(r) {
			if !lastBlank {
				b.WriteByte(' ')
				lastBlank = true
			}
			continue
		}
		b.WriteRune(r)
		lastBlank = false
	}
	return strings.TrimFunc(b.String(), unicode.IsSpace)
}

// Line collapses every whitespace run, line feeds included, into a single
// space. Use it for text that must render on one output line.
func Line(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Len returns the number of characters in s after trimming surrounding
// whitespace.
func Len(s string) int {
	return utf8.RuneCountInString(strings.TrimFunc(s, unicode.IsSpace))
}

// SplitLines splits s on \n, \r\n and \r. A trailing line break does not
// produce a trailing empty line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

func isBlank(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}
