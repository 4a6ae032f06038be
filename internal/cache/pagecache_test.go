package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPageCache_SaveLoad(t *testing.T) {
	c := New(t.TempDir())
	ctx := context.Background()
	e := Entry{URL: "https://a.test/x", FinalURL: "https://a.test/y", ContentType: "text/html", ETag: `"1"`}
	if err := c.Save(ctx, e, []byte("<p>hi</p>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := c.Load(ctx, e.URL)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.FinalURL != e.FinalURL || got.ETag != e.ETag || got.SavedAt.IsZero() {
		t.Fatalf("unexpected entry %+v", got)
	}
	body, err := c.Body(ctx, e.URL)
	if err != nil || string(body) != "<p>hi</p>" {
		t.Fatalf("unexpected body %q err=%v", body, err)
	}
	if _, err := c.Load(ctx, "https://a.test/missing"); err == nil {
		t.Fatalf("expected miss")
	}
}

func TestPageCache_Disabled(t *testing.T) {
	c := New("  ")
	if c != nil {
		t.Fatalf("blank dir should disable the cache")
	}
	if _, err := c.Load(context.Background(), "u"); !errors.Is(err, ErrNoDir) {
		t.Fatalf("expected ErrNoDir, got %v", err)
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	ctx := context.Background()
	for _, u := range []string{"https://a.test/old", "https://a.test/new"} {
		if err := c.Save(ctx, Entry{URL: u}, []byte(u)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// Backdate one entry.
	p := filepath.Join(dir, key("https://a.test/old")+".meta.json")
	old := Entry{URL: "https://a.test/old", SavedAt: time.Now().Add(-48 * time.Hour)}
	b, _ := json.Marshal(old)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 removal, got %d err=%v", removed, err)
	}
	if _, err := c.Body(ctx, "https://a.test/old"); err == nil {
		t.Fatalf("old body should be gone")
	}
	if _, err := c.Body(ctx, "https://a.test/new"); err != nil {
		t.Fatalf("new body should remain: %v", err)
	}
	if n, _ := PurgeByAge(dir, 0); n != 0 {
		t.Fatalf("zero max age must not purge")
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.body"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %v err=%v", entries, err)
	}
	if err := ClearDir(""); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}
