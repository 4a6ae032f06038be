// Package dom provides the content tree used by every extraction stage.
//
// A Tree exclusively owns its nodes: each strategy parses its own copy of the
// markup, so cleaning passes over one tree can never affect another.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmptyDocument is returned when there is no markup to parse.
var ErrEmptyDocument = errors.New("dom: empty document")

// HeadingSelector matches the section headings the emitter understands.
const HeadingSelector = "h2, h3, h4, h5"

// Tree is a mutable HTML tree owned by a single candidate.
type Tree struct {
	doc *goquery.Document
}

// Parse builds a new Tree from markup. Fragments are wrapped in the usual
// html/head/body skeleton by the HTML5 parser.
func Parse(markup string) (*Tree, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrEmptyDocument
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Tree{doc: goquery.NewDocumentFromNode(root)}, nil
}

// New returns an empty tree with a body to append to.
func New() *Tree {
	root, _ := html.Parse(strings.NewReader("<html><head></head><body></body></html>"))
	return &Tree{doc: goquery.NewDocumentFromNode(root)}
}

// Document exposes the underlying goquery document.
func (t *Tree) Document() *goquery.Document { return t.doc }

// Find runs a CSS selector against the whole tree.
func (t *Tree) Find(selector string) *goquery.Selection { return t.doc.Find(selector) }

// Body returns the body element, or the document root when there is none.
func (t *Tree) Body() *goquery.Selection {
	if b := t.doc.Find("body").First(); b.Length() > 0 {
		return b
	}
	return t.doc.Selection
}

// Empty reports whether the body holds no elements and no visible text.
func (t *Tree) Empty() bool {
	body := t.Body()
	for _, n := range body.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.ElementNode:
				return false
			case html.TextNode:
				if strings.TrimSpace(c.Data) != "" {
					return false
				}
			}
		}
	}
	return true
}

// Text returns the visible text of the whole tree.
func (t *Tree) Text() string { return VisibleText(t.doc.Selection) }

// HasHeadings reports whether the tree contains at least one h2-h5 element.
func (t *Tree) HasHeadings() bool { return t.doc.Find(HeadingSelector).Length() > 0 }

// HTML renders the tree back to markup. Used for debugging output.
func (t *Tree) HTML() string {
	out, err := goquery.OuterHtml(t.doc.Selection)
	if err != nil {
		return ""
	}
	return out
}

// VisibleText joins every trimmed, non-empty text run below sel with a
// single space.
func VisibleText(sel *goquery.Selection) string {
	return JoinText(sel, " ", true)
}

// JoinText walks sel in document order and joins its text runs with sep.
// With strip set, each run is trimmed and empty runs are dropped.
func JoinText(sel *goquery.Selection, sep string, strip bool) string {
	parts := make([]string, 0, 16)
	for _, n := range sel.Nodes {
		parts = collectText(parts, n, strip)
	}
	return strings.Join(parts, sep)
}

// NodeText is JoinText for a single node.
func NodeText(n *html.Node, sep string, strip bool) string {
	return strings.Join(collectText(nil, n, strip), sep)
}

func collectText(parts []string, n *html.Node, strip bool) []string {
	if n == nil {
		return parts
	}
	if n.Type == html.TextNode {
		s := n.Data
		if strip {
			s = strings.TrimSpace(s)
			if s == "" {
				return parts
			}
		}
		return append(parts, s)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectText(parts, c, strip)
	}
	return parts
}

// IsElement reports whether n is an element with one of the given tag names.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, t := range tags {
		if strings.EqualFold(n.Data, t) {
			return true
		}
	}
	return false
}

// Rename changes an element's tag in place, keeping attributes and children.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Attr returns the value of key on n, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}
