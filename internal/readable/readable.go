// Package readable is the structural-heuristic strategy: the classic
// readability algorithm that keeps the largest coherent content block.
package readable

import (
	"errors"
	"fmt"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/hyperifyio/goextract/internal/candidate"
	"github.com/hyperifyio/goextract/internal/dom"
	"github.com/hyperifyio/goextract/internal/textnorm"
)

// HeadingBonus rewards structured articles over dense unstructured blobs.
const HeadingBonus = 0.15

// ErrNoContent is returned when readability finds no article.
var ErrNoContent = errors.New("readable: no content")

// Strategy implements candidate.Strategy on top of go-readability.
type Strategy struct{}

// New returns the structural-heuristic strategy.
func New() Strategy { return Strategy{} }

func (Strategy) Name() candidate.Name { return candidate.StructuralHeuristic }

func (Strategy) Multiplier(hasHeadings bool) float64 {
	if hasHeadings {
		return 1 + HeadingBonus
	}
	return 1
}

// Extract runs readability over rawHTML and parses its content into a new
// tree. The readability title is normalized and reported as-is.
func (Strategy) Extract(rawHTML, pageURL string) (candidate.Extraction, error) {
	var u *nurl.URL
	if pageURL != "" {
		if parsed, err := nurl.Parse(pageURL); err == nil {
			u = parsed
		}
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return candidate.Extraction{}, fmt.Errorf("readability: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return candidate.Extraction{}, ErrNoContent
	}
	tree, err := dom.Parse(article.Content)
	if err != nil {
		return candidate.Extraction{}, err
	}
	unwrapPage(tree)
	return candidate.Extraction{
		Title: textnorm.Space(article.Title),
		Tree:  tree,
	}, nil
}

// unwrapPage drops the identifying attributes readability puts on its page
// wrappers so the noise filter judges the article content, not the wrapper.
func unwrapPage(t *dom.Tree) {
	t.Find(`div[id^="readability-page"]`).RemoveAttr("id").RemoveAttr("class")
}
