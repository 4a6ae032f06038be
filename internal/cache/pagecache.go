// Package cache keeps fetched pages on disk so repeated extractions can
// revalidate with ETag / Last-Modified instead of downloading again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoDir is returned when the cache has no directory configured.
var ErrNoDir = errors.New("cache dir not configured")

// Entry is the metadata stored next to a cached page body.
type Entry struct {
	URL          string    `json:"url"`
	FinalURL     string    `json:"final_url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores pages as <key>.meta.json and <key>.body where key is
// sha256 of the requested URL. A nil *PageCache is a disabled cache.
type PageCache struct {
	Dir string
}

// New returns a cache rooted at dir, or nil when dir is blank.
func New(dir string) *PageCache {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	return &PageCache{Dir: dir}
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return ErrNoDir
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(k string) string { return filepath.Join(c.Dir, k+".meta.json") }
func (c *PageCache) bodyPath(k string) string { return filepath.Join(c.Dir, k+".body") }

// Load returns the metadata cached for url.
func (c *PageCache) Load(_ context.Context, url string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(key(url)))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// Body returns the cached body for url.
func (c *PageCache) Body(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(key(url)))
}

// Save writes body and then e's metadata, stamped with the current time.
// The meta file is replaced atomically so readers never see a partial entry.
func (c *PageCache) Save(_ context.Context, e Entry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	k := key(e.URL)
	if err := os.WriteFile(c.bodyPath(k), body, 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	e.SavedAt = time.Now().UTC()
	b, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(k) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(k))
}

// ClearDir removes dir and recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrNoDir
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeByAge removes entries whose SavedAt is older than maxAge and returns
// how many were removed. Unreadable or malformed meta files are skipped.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		if now.Sub(e.SavedAt) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
		return nil
	})
	if removed > 0 {
		log.Debug().Str("dir", dir).Int("removed", removed).Msg("cache purged")
	}
	return removed, err
}
