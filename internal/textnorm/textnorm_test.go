package textnorm

import "testing"

func TestSpace_CollapsesBlankRuns(t *testing.T) {
	cases := map[string]string{
		"  hello   world  ":  "hello world",
		"a\t\tb":             "a b",
		"a\r\f\vb":           "a b",
		"keep\nnewline":      "keep\nnewline",
		"\n  padded  \n":     "padded",
		"":                   "",
		"\u00a0nbsp\u00a0":  "nbsp",
		"one  \n  two":       "one \n two",
	}
	for in, want := range cases {
		if got := Space(in); got != want {
			t.Fatalf("Space(%q)=%q want %q", in, got, want)
		}
	}
}

func TestLine_FoldsNewlines(t *testing.T) {
	if got := Line("Lorem ipsum\n   dolor\tsit "); got != "Lorem ipsum dolor sit" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Line(" \n\t "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestLen_CountsRunesAfterTrim(t *testing.T) {
	if got := Len("  héllo  "); got != 5 {
		t.Fatalf("Len=%d want 5", got)
	}
	if got := Len("日本語"); got != 3 {
		t.Fatalf("Len=%d want 3", got)
	}
	if got := Len("   "); got != 0 {
		t.Fatalf("Len=%d want 0", got)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\r\nb\rc\n")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %q want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
	if SplitLines("") != nil {
		t.Fatalf("expected nil for empty input")
	}
	if got := SplitLines("x\n\n"); len(got) != 2 || got[1] != "" {
		t.Fatalf("expected interior blank line kept, got %q", got)
	}
}
