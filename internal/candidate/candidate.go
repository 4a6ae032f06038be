// Package candidate defines the scored extraction record shared by all
// strategies, the cleaning pipeline that produces it, and the selector that
// arbitrates between candidates.
package candidate

import (
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/clean"
	"github.com/hyperifyio/goextract/internal/dom"
	"github.com/hyperifyio/goextract/internal/siterules"
)

// Name identifies the strategy that produced a candidate.
type Name string

const (
	StructuralHeuristic Name = "structural"
	PrecisionHeuristic  Name = "precision"
)

// Extraction is a strategy's raw output before shared cleaning.
type Extraction struct {
	Title string
	Tree  *dom.Tree
}

// Strategy is one independent way of locating the main content of a page.
type Strategy interface {
	Name() Name
	// Extract parses rawHTML into a fresh tree owned by the caller.
	Extract(rawHTML, pageURL string) (Extraction, error)
	// Multiplier returns the strategy's score adjustment given whether the
	// cleaned tree has section headings.
	Multiplier(hasHeadings bool) float64
}

// Candidate is one strategy's scored attempt for a single page.
type Candidate struct {
	Name        Name
	Title       string
	Tree        *dom.Tree
	Text        string
	LinkDensity float64
	Score       float64
}

// TextLen is the length of the cleaned text in characters.
func (c *Candidate) TextLen() int {
	if c == nil {
		return 0
	}
	return utf8.RuneCountInString(c.Text)
}

// Build runs s and then the shared cleaning steps in order: script removal,
// site rules, noise filter, link density, anchor unwrapping, text and score.
// Panics inside the strategy are returned as errors.
func Build(s Strategy, rawHTML, pageURL, host string, rules *siterules.Registry) (c *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("%s: panic: %v", s.Name(), r)
		}
	}()

	ex, err := s.Extract(rawHTML, pageURL)
	if err != nil {
		return nil, err
	}
	if ex.Tree == nil {
		return nil, fmt.Errorf("%s: no tree", s.Name())
	}

	tree := ex.Tree
	clean.RemoveScripts(tree)
	rules.Apply(host, tree)
	clean.DropNoise(tree)
	ld := clean.LinkDensity(tree)
	clean.UnwrapAnchors(tree)
	text := tree.Text()

	score := float64(utf8.RuneCountInString(text)) * (1.0 - ld)
	score *= s.Multiplier(tree.HasHeadings())

	c = &Candidate{
		Name:        s.Name(),
		Title:       ex.Title,
		Tree:        tree,
		Text:        text,
		LinkDensity: ld,
		Score:       score,
	}
	log.Debug().
		Str("strategy", string(c.Name)).
		Int("text_len", c.TextLen()).
		Float64("link_density", ld).
		Float64("score", score).
		Msg("candidate built")
	return c, nil
}
