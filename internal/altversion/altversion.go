// Package altversion looks for AMP and print renderings of a page and
// switches to one when it carries clearly more text than the original.
package altversion

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/clean"
	"github.com/hyperifyio/goextract/internal/dom"
	"github.com/hyperifyio/goextract/internal/fetch"
	"github.com/hyperifyio/goextract/internal/textnorm"
)

const (
	// DefaultTimeout bounds each alternate fetch.
	DefaultTimeout = 15 * time.Second
	// DefaultRatio is how much longer an alternate must be to win.
	DefaultRatio = 1.1
)

var (
	ampHref   = regexp.MustCompile(`(?i)(\?|/)amp(\b|=)`)
	printHref = regexp.MustCompile(`(?i)(print|output=print)`)
)

// Fetcher is the subset of fetch.Client the resolver needs.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Resolver picks between a page and its alternate versions.
type Resolver struct {
	Fetcher Fetcher
	Timeout time.Duration
	Ratio   float64
}

// Candidates returns the alternate URLs advertised by rawHTML, resolved
// against pageURL: at most one AMP and one print URL, deduplicated.
func Candidates(pageURL, rawHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var hrefs []string
	if h := linkHref(doc, func(rel, media, typ string) bool { return strings.Contains(rel, "amphtml") }); h != "" {
		hrefs = append(hrefs, h)
	} else if h := anchorHref(doc, ampHref); h != "" {
		hrefs = append(hrefs, h)
	}
	if h := linkHref(doc, func(rel, media, typ string) bool {
		return strings.Contains(rel, "alternate") && strings.Contains(media+" "+typ, "print")
	}); h != "" {
		hrefs = append(hrefs, h)
	} else if h := anchorHref(doc, printHref); h != "" {
		hrefs = append(hrefs, h)
	}

	seen := make(map[string]bool, len(hrefs))
	out := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		ref, err := url.Parse(h)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out
}

func linkHref(doc *goquery.Document, match func(rel, media, typ string) bool) string {
	var href string
	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		media := strings.ToLower(s.AttrOr("media", ""))
		typ := strings.ToLower(s.AttrOr("type", ""))
		if !match(rel, media, typ) {
			return true
		}
		href = strings.TrimSpace(s.AttrOr("href", ""))
		return false
	})
	return href
}

func anchorHref(doc *goquery.Document, re *regexp.Regexp) string {
	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h := strings.TrimSpace(s.AttrOr("href", ""))
		if h == "" || !re.MatchString(h) {
			return true
		}
		href = h
		return false
	})
	return href
}

// TextLen is the visible text length of rawHTML, scripts and styles
// excluded.
func TextLen(rawHTML string) int {
	t, err := dom.Parse(rawHTML)
	if err != nil {
		return 0
	}
	clean.RemoveScripts(t)
	return textnorm.Len(t.Text())
}

// Resolve returns the URL and HTML to extract from. Alternates are tried in
// order and replace the current best when their text is more than Ratio
// times longer. Failed alternates count as empty. The original page is
// returned whenever nothing wins.
func (r *Resolver) Resolve(ctx context.Context, pageURL, rawHTML string) (string, string) {
	cands := Candidates(pageURL, rawHTML)
	if len(cands) == 0 || r.Fetcher == nil {
		return pageURL, rawHTML
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ratio := r.Ratio
	if ratio <= 0 {
		ratio = DefaultRatio
	}

	bestURL, bestHTML, bestLen := pageURL, rawHTML, TextLen(rawHTML)
	for _, u := range cands {
		finalURL, body, n := r.fetchLen(ctx, u, timeout)
		log.Debug().Str("url", pageURL).Str("alternate", u).Int("text_len", n).Int("best_len", bestLen).Msg("alternate version")
		if float64(n) > float64(bestLen)*ratio {
			bestURL, bestHTML, bestLen = finalURL, body, n
		}
	}
	return bestURL, bestHTML
}

func (r *Resolver) fetchLen(ctx context.Context, u string, timeout time.Duration) (string, string, int) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := r.Fetcher.Get(ctx, u)
	if err != nil {
		log.Debug().Err(err).Str("alternate", u).Msg("alternate fetch failed")
		return u, "", 0
	}
	body := resp.Text()
	return resp.URL, body, TextLen(body)
}
