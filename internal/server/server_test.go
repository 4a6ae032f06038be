package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hyperifyio/goextract/internal/batch"
	"github.com/hyperifyio/goextract/internal/template"
)

type recordRunner struct {
	urls      []string
	preferAlt bool
}

func (r *recordRunner) Run(_ context.Context, urls []string, preferAlt bool) string {
	r.urls, r.preferAlt = urls, preferAlt
	if len(urls) == 0 {
		return template.NoURLs
	}
	return template.JoinBatch([]string{template.Failure(urls[0])})
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestHealth(t *testing.T) {
	resp := do(t, New(&recordRunner{}), http.MethodGet, "/health", "", "")
	if resp.StatusCode != http.StatusOK || readBody(t, resp) != "ok" {
		t.Fatalf("unexpected health response %d", resp.StatusCode)
	}
}

func TestExtract_JSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantURLs  int
		preferAlt bool
	}{
		{"default prefer_alt", `{"urls": "https://a.test/\nhttps://b.test/\nhttps://a.test/"}`, 2, true},
		{"explicit false", `{"urls": "https://a.test/", "prefer_alt": false}`, 1, false},
		{"falsy zero", `{"urls": "https://a.test/", "prefer_alt": 0}`, 1, false},
		{"truthy string", `{"urls": "https://a.test/", "prefer_alt": "yes"}`, 1, true},
		{"url list", `{"urls": ["https://a.test/", "https://b.test/"]}`, 2, true},
		{"malformed", `{"urls": `, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &recordRunner{}
			resp := do(t, New(run), http.MethodPost, "/extract", "application/json; charset=utf-8", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Fatalf("unexpected content type %q", ct)
			}
			if len(run.urls) != tt.wantURLs || run.preferAlt != tt.preferAlt {
				t.Fatalf("got urls=%q preferAlt=%t", run.urls, run.preferAlt)
			}
		})
	}
}

func TestExtract_Form(t *testing.T) {
	run := &recordRunner{}
	form := url.Values{"urls": {"https://a.test/\n\nhttps://b.test/"}}
	resp := do(t, New(run), http.MethodPost, "/extract", "application/x-www-form-urlencoded", form.Encode())
	body := readBody(t, resp)
	if len(run.urls) != 2 || run.preferAlt {
		t.Fatalf("form defaults wrong: urls=%q preferAlt=%t", run.urls, run.preferAlt)
	}
	if !strings.HasPrefix(body, "BEGIN\nURL: https://a.test/\n") || !strings.HasSuffix(body, "END\n") {
		t.Fatalf("unexpected body %q", body)
	}

	for _, v := range []string{"on", "true", "1"} {
		form.Set("prefer_alt", v)
		do(t, New(run), http.MethodPost, "/extract", "application/x-www-form-urlencoded", form.Encode())
		if !run.preferAlt {
			t.Fatalf("prefer_alt=%s should enable alternates", v)
		}
	}
}

func TestExtract_NoURLs(t *testing.T) {
	p := &batch.Processor{}
	resp := do(t, New(p), http.MethodPost, "/extract", "application/x-www-form-urlencoded", "urls=")
	if got := readBody(t, resp); got != "ERROR: no_urls\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestExtract_MethodNotAllowed(t *testing.T) {
	resp := do(t, New(&recordRunner{}), http.MethodGet, "/extract", "", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, []string, bool) string { panic("boom") }

func TestRecoverer(t *testing.T) {
	resp := do(t, New(panicRunner{}), http.MethodPost, "/extract", "application/json", `{"urls":"https://a.test/"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from recoverer, got %d", resp.StatusCode)
	}
}
