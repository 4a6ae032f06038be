// Package clean implements the structural passes every candidate tree goes
// through before it is scored: script removal, boilerplate pruning, link
// density measurement and anchor unwrapping.
package clean

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/hyperifyio/goextract/internal/dom"
)

var scriptTags = []string{"script", "style", "noscript", "template"}

var landmarkTags = []string{"header", "footer", "nav", "aside"}

// RemoveScripts deletes script, style, noscript and template elements.
func RemoveScripts(t *dom.Tree) int {
	return removeWhere(t, func(n *html.Node) bool {
		return dom.IsElement(n, scriptTags...)
	})
}

// DropNoise removes boilerplate from t in three passes: attribute signals,
// caption/credit signals, then header/footer/nav/aside landmarks. A match
// removes the whole subtree. It returns the number of removed elements.
func DropNoise(t *dom.Tree) int {
	removed := removeWhere(t, hasNoiseAttr)
	removed += removeWhere(t, hasCaptionAttr)
	removed += removeWhere(t, func(n *html.Node) bool {
		return dom.IsElement(n, landmarkTags...)
	})
	return removed
}

// hasNoiseAttr checks id, name, each class token and every data-* value
// independently.
func hasNoiseAttr(n *html.Node) bool {
	if n.Type != html.ElementNode || len(n.Attr) == 0 {
		return false
	}
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case key == "id" || key == "name":
			if IsNoise(a.Val) {
				return true
			}
		case key == "class":
			for _, c := range strings.Fields(a.Val) {
				if IsNoise(c) {
					return true
				}
			}
		case strings.HasPrefix(key, "data-"):
			if IsNoise(a.Val) {
				return true
			}
		}
	}
	return false
}

func hasCaptionAttr(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	classes := strings.Join(strings.Fields(dom.Attr(n, "class")), " ")
	return IsCaption(classes + " " + dom.Attr(n, "id"))
}

func removeWhere(t *dom.Tree, match func(*html.Node) bool) int {
	removed := 0
	for _, root := range t.Document().Nodes {
		dom.Walk(root, func(n *html.Node) bool {
			if n.Parent != nil && match(n) {
				n.Parent.RemoveChild(n)
				removed++
				return false
			}
			return true
		})
	}
	return removed
}

// LinkDensity returns the share of visible text that sits inside anchors,
// clamped to [0,1]. A tree without visible text scores 1.
func LinkDensity(t *dom.Tree) float64 {
	total := utf8.RuneCountInString(t.Text())
	if total == 0 {
		return 1.0
	}
	linkChars := 0
	t.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkChars += utf8.RuneCountInString(dom.VisibleText(a))
	})
	ld := float64(linkChars) / float64(max(1, total))
	return min(max(ld, 0.0), 1.0)
}

// UnwrapAnchors replaces every anchor with its visible text.
func UnwrapAnchors(t *dom.Tree) int {
	count := 0
	t.Find("a").Each(func(_ int, a *goquery.Selection) {
		n := a.Get(0)
		if n.Parent == nil {
			return
		}
		text := dom.VisibleText(a)
		if text != "" {
			n.Parent.InsertBefore(dom.NewText(text), n)
		}
		n.Parent.RemoveChild(n)
		count++
	})
	return count
}
