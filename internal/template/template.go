// Package template assembles the plain-text envelope around emitted lines.
//
// Every result, successful or not, starts with a BEGIN line and ends with an
// END line so consumers only need to look for the envelope markers.
package template

import (
	"strings"

	"github.com/hyperifyio/goextract/internal/emit"
)

const (
	Begin = "BEGIN"
	End   = "END"
	// NoURLs is the whole response when a batch has nothing to process.
	NoURLs = "ERROR: no_urls\n"
)

// Render builds the success envelope. title must already be resolved.
func Render(url, title string, lines []string) string {
	out := make([]string, 0, len(lines)+4)
	out = append(out, Begin, "URL: "+url, "Title: "+title)
	out = append(out, lines...)
	out = append(out, End)
	return strings.Join(out, "\n")
}

// Failure is the envelope used when no content tree could be produced. It
// carries no Title line.
func Failure(url string) string {
	return envelope(url, "ERROR: "+emit.ContentNotFound)
}

// FetchFailure reports a fetch error by its kind name.
func FetchFailure(url, kind string) string {
	return envelope(url, "ERROR: "+emit.ContentNotFound+" ("+kind+")")
}

// JoinBatch joins per-URL results with a blank line and ends the whole
// batch with a single newline.
func JoinBatch(results []string) string {
	if len(results) == 0 {
		return NoURLs
	}
	return strings.Join(results, "\n\n") + "\n"
}

func envelope(url, line string) string {
	return strings.Join([]string{Begin, "URL: " + url, line, End}, "\n")
}
