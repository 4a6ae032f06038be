package template

import (
	"strings"
	"testing"
)

// checkEnvelope asserts exactly one BEGIN first and one END last.
func checkEnvelope(t *testing.T, out string) {
	t.Helper()
	lines := strings.Split(out, "\n")
	if lines[0] != Begin || lines[len(lines)-1] != End {
		t.Fatalf("envelope markers misplaced: %q", out)
	}
	begins, ends := 0, 0
	for _, l := range lines {
		switch l {
		case Begin:
			begins++
		case End:
			ends++
		}
	}
	if begins != 1 || ends != 1 {
		t.Fatalf("expected one BEGIN and one END, got %d/%d in %q", begins, ends, out)
	}
}

func TestRender(t *testing.T) {
	out := Render("https://example.com/a", "A title", []string{"H2: A", "Body:", "hello world"})
	want := "BEGIN\nURL: https://example.com/a\nTitle: A title\nH2: A\nBody:\nhello world\nEND"
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
	checkEnvelope(t, out)
}

func TestRender_NoLines(t *testing.T) {
	out := Render("u", "t", nil)
	if out != "BEGIN\nURL: u\nTitle: t\nEND" {
		t.Fatalf("unexpected %q", out)
	}
	checkEnvelope(t, out)
}

func TestFailures(t *testing.T) {
	out := Failure("https://example.com")
	if out != "BEGIN\nURL: https://example.com\nERROR: content_not_found\nEND" {
		t.Fatalf("unexpected %q", out)
	}
	if strings.Contains(out, "Title:") {
		t.Fatalf("failure envelope must not carry a title")
	}
	checkEnvelope(t, out)

	out = FetchFailure("https://example.com", "Timeout")
	if out != "BEGIN\nURL: https://example.com\nERROR: content_not_found (Timeout)\nEND" {
		t.Fatalf("unexpected %q", out)
	}
	checkEnvelope(t, out)
}

func TestJoinBatch(t *testing.T) {
	if got := JoinBatch(nil); got != NoURLs {
		t.Fatalf("expected no_urls, got %q", got)
	}
	got := JoinBatch([]string{"BEGIN\nA\nEND", "BEGIN\nB\nEND"})
	if got != "BEGIN\nA\nEND\n\nBEGIN\nB\nEND\n" {
		t.Fatalf("unexpected batch %q", got)
	}
}
