package title

import (
	"testing"

	"github.com/hyperifyio/goextract/internal/dom"
)

func mustTree(t *testing.T, markup string) *dom.Tree {
	t.Helper()
	tree, err := dom.Parse(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestResolve_Priority(t *testing.T) {
	raw := `<html><head><title>  Page
	title </title></head><body></body></html>`

	withH1 := mustTree(t, `<h1> Main   <em>heading</em></h1><h1>Second</h1>`)
	if got := Resolve(withH1, "Structural", raw); got != "Main heading" {
		t.Fatalf("h1 should win, got %q", got)
	}

	noH1 := mustTree(t, `<p>text</p>`)
	if got := Resolve(noH1, "  Structural\ttitle ", raw); got != "Structural title" {
		t.Fatalf("structural title should win, got %q", got)
	}
	if got := Resolve(noH1, "", raw); got != "Page title" {
		t.Fatalf("page title should win, got %q", got)
	}
	if got := Resolve(noH1, " ", "<p>no title here</p>"); got != NoTitle {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := Resolve(nil, "", ""); got != NoTitle {
		t.Fatalf("expected placeholder for nil tree, got %q", got)
	}
}

func TestResolve_EmptyH1FallsThrough(t *testing.T) {
	tree := mustTree(t, `<h1>  </h1><p>text</p>`)
	if got := Resolve(tree, "Fallback", ""); got != "Fallback" {
		t.Fatalf("empty h1 must not win, got %q", got)
	}
}
