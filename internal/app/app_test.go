package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const storyHTML = `<!doctype html>
<html><head><title>Harbour news</title></head>
<body>
<nav><a href="/">Home</a> <a href="/news">News</a></nav>
<article>
<h2>Ferry schedule changes</h2>
<p>The harbour authority announced that the morning ferry will depart twenty minutes earlier from next Monday, giving commuters more time to connect with the regional trains.</p>
<p>Evening departures stay the same, and the weekend timetable is not affected by the change at all according to the announcement.</p>
</article>
</body></html>`

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := Defaults()
	cfg.MaxAttempts = 1
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestApp_Extract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(storyHTML))
	}))
	defer ts.Close()

	a := newTestApp(t)
	out := a.Extract(context.Background(), ts.URL+"/story\n\n"+ts.URL+"/missing\n"+ts.URL+"/story\n")
	if !strings.HasSuffix(out, "END\n") || strings.Count(out, "BEGIN") != 2 {
		t.Fatalf("expected two envelopes, got %q", out)
	}
	first, second, _ := strings.Cut(out, "\n\n")
	if !strings.Contains(first, "Body:") || !strings.Contains(first, "morning ferry") {
		t.Fatalf("story not extracted: %q", first)
	}
	if !strings.Contains(second, "ERROR: ") || strings.Contains(second, "Title:") {
		t.Fatalf("expected error envelope, got %q", second)
	}
}

func TestApp_ExtractNoURLs(t *testing.T) {
	a := newTestApp(t)
	if got := a.Extract(context.Background(), "  \n\n"); got != "ERROR: no_urls\n" {
		t.Fatalf("got %q", got)
	}
}

func TestApp_ExtractFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(p, []byte(storyHTML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	a := newTestApp(t)
	out, err := a.ExtractFile(p, "https://harbour.example/ferry")
	if err != nil {
		t.Fatalf("extract file: %v", err)
	}
	if !strings.HasPrefix(out, "BEGIN\nURL: https://harbour.example/ferry\nTitle: ") {
		t.Fatalf("unexpected envelope %q", out)
	}
	if _, err := a.ExtractFile(filepath.Join(t.TempDir(), "nope.html"), "https://x"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Workers = -2
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNew_SiteRules(t *testing.T) {
	cfg := Defaults()
	cfg.SiteRulesPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for missing site rules file")
	}
	p := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(p, []byte("sites:\n  harbour.example:\n    remove: [\".ad\"]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.SiteRulesPath = p
	if _, err := New(cfg); err != nil {
		t.Fatalf("new with rules: %v", err)
	}
}
