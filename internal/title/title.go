// Package title resolves the document title from the selected candidate,
// the structural strategy and the raw page.
package title

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/goextract/internal/dom"
	"github.com/hyperifyio/goextract/internal/textnorm"
)

// NoTitle is reported when every source is empty.
const NoTitle = "(no title)"

// Resolve returns the first non-empty of: the first h1 in selected, the
// structural strategy's title, and the raw page's <title>. Values are
// whitespace-normalized.
func Resolve(selected *dom.Tree, structuralTitle, rawHTML string) string {
	if t := Heading(selected); t != "" {
		return t
	}
	if t := textnorm.Line(structuralTitle); t != "" {
		return t
	}
	if t := PageTitle(rawHTML); t != "" {
		return t
	}
	return NoTitle
}

// Heading returns the normalized text of the first h1 in t, or "".
func Heading(t *dom.Tree) string {
	if t == nil {
		return ""
	}
	return textnorm.Line(dom.VisibleText(t.Find("h1").First()))
}

// PageTitle returns the normalized <title> of rawHTML, or "".
func PageTitle(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	return textnorm.Line(dom.VisibleText(doc.Find("title").First()))
}
