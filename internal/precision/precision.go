// Package precision is the precision-heuristic strategy. It runs trafilatura
// tuned for precision, with its readability and distiller fallbacks off, so
// it stays independent of the structural strategy. Some real content may be
// lost in exchange for less boilerplate.
package precision

import (
	"errors"
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/hyperifyio/goextract/internal/candidate"
	"github.com/hyperifyio/goextract/internal/dom"
	"github.com/hyperifyio/goextract/internal/textnorm"
)

const (
	// HeadingBonus applies when the cleaned tree has section headings.
	HeadingBonus = 0.10
	// NoHeadingPenalty applies otherwise.
	NoHeadingPenalty = 0.08
)

// ErrNoContent is returned when trafilatura keeps nothing.
var ErrNoContent = errors.New("precision: no content")

// Strategy implements candidate.Strategy on top of go-trafilatura.
type Strategy struct{}

// New returns the precision-heuristic strategy.
func New() Strategy { return Strategy{} }

func (Strategy) Name() candidate.Name { return candidate.PrecisionHeuristic }

func (Strategy) Multiplier(hasHeadings bool) float64 {
	if hasHeadings {
		return 1 + HeadingBonus
	}
	return 1 - NoHeadingPenalty
}

// Options returns the trafilatura settings used for pageURL: precision
// focus, no fallback extractors, tables kept, comments and links dropped.
func Options(pageURL string) trafilatura.Options {
	opts := trafilatura.Options{
		Focus:           trafilatura.FavorPrecision,
		EnableFallback:  false,
		ExcludeComments: true,
		ExcludeTables:   false,
		HtmlDateMode:    trafilatura.Disabled,
	}
	if u, err := nurl.ParseRequestURI(pageURL); err == nil {
		opts.OriginalURL = u
	}
	return opts
}

// Extract runs trafilatura over rawHTML and moves its content onto a fresh
// tree. When the content has no elements the plain text becomes paragraphs.
// The reported title is page metadata only; the title resolver never uses it.
func (Strategy) Extract(rawHTML, pageURL string) (candidate.Extraction, error) {
	res, err := trafilatura.Extract(strings.NewReader(rawHTML), Options(pageURL))
	if err != nil {
		return candidate.Extraction{}, fmt.Errorf("trafilatura: %w", err)
	}
	var tree *dom.Tree
	if hasElements(res.ContentNode) {
		tree = Remap(res.ContentNode)
	} else {
		tree = Paragraphs(res.ContentText)
	}
	if tree.Empty() {
		return candidate.Extraction{}, ErrNoContent
	}
	return candidate.Extraction{Title: textnorm.Line(res.Metadata.Title), Tree: tree}, nil
}

func hasElements(n *html.Node) bool {
	if n == nil {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// Remap moves the children of content into the body of a new tree. Headings
// are clamped to h2..h5, block-level code becomes pre and attributes are
// dropped. content is left empty.
func Remap(content *html.Node) *dom.Tree {
	t := dom.New()
	body := t.Body().Get(0)
	for c := content.FirstChild; c != nil; {
		next := c.NextSibling
		content.RemoveChild(c)
		body.AppendChild(c)
		c = next
	}
	dom.Walk(body, func(n *html.Node) bool {
		if n == body || n.Type != html.ElementNode {
			return true
		}
		switch strings.ToLower(n.Data) {
		case "h1":
			dom.Rename(n, "h2")
		case "h6":
			dom.Rename(n, "h5")
		case "code":
			if n.Parent == body {
				dom.Rename(n, "pre")
			}
		}
		n.Attr = nil
		return true
	})
	return t
}

// Paragraphs builds a tree with one paragraph per non-empty line of text.
func Paragraphs(text string) *dom.Tree {
	t := dom.New()
	body := t.Body().Get(0)
	for _, line := range textnorm.SplitLines(text) {
		if l := textnorm.Space(line); l != "" {
			p := dom.NewElement("p")
			p.AppendChild(dom.NewText(l))
			body.AppendChild(p)
		}
	}
	return t
}
