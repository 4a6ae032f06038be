// Package batch extracts a list of URLs on a bounded worker pool and joins
// the per-URL envelopes in input order.
package batch

import (
	"context"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/goextract/internal/fetch"
	"github.com/hyperifyio/goextract/internal/template"
	"github.com/hyperifyio/goextract/internal/textnorm"
)

// PanicKind is reported when processing one URL panics.
const PanicKind = "InternalError"

// Fetcher downloads one page.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Extractor turns fetched HTML into an envelope.
type Extractor interface {
	Extract(finalURL, rawHTML string) string
}

// AltResolver optionally swaps a page for an alternate rendering.
type AltResolver interface {
	Resolve(ctx context.Context, pageURL, rawHTML string) (string, string)
}

// Processor wires fetching, alternate resolution and extraction.
type Processor struct {
	Fetcher Fetcher
	Engine  Extractor
	Alt     AltResolver
	// Workers bounds concurrent URLs. Zero means DefaultWorkers().
	Workers int
}

// DefaultWorkers is min(8, max(2, NumCPU)).
func DefaultWorkers() int {
	return min(8, max(2, runtime.NumCPU()))
}

// ParseURLs splits raw on line breaks, trims each line, drops blanks and
// keeps the first occurrence of each URL.
func ParseURLs(raw string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, line := range textnorm.SplitLines(raw) {
		u := strings.TrimSpace(line)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// Process returns the envelope for one URL. It never fails: fetch errors
// and panics are reported inside the envelope.
func (p *Processor) Process(ctx context.Context, rawURL string, preferAlt bool) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("url", rawURL).Interface("panic", r).Msg("extraction panicked")
			out = template.FetchFailure(rawURL, PanicKind)
		}
	}()

	resp, err := p.Fetcher.Get(ctx, rawURL)
	if err != nil {
		kind := fetch.KindName(err)
		log.Warn().Err(err).Str("url", rawURL).Str("kind", kind).Msg("fetch failed")
		return template.FetchFailure(rawURL, kind)
	}
	finalURL, html := resp.URL, resp.Text()
	if preferAlt && p.Alt != nil {
		finalURL, html = p.Alt.Resolve(ctx, finalURL, html)
	}
	return p.Engine.Extract(finalURL, html)
}

// Run processes urls concurrently and returns the joined batch body.
func (p *Processor) Run(ctx context.Context, urls []string, preferAlt bool) string {
	if len(urls) == 0 {
		return template.NoURLs
	}
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	results := make([]string, len(urls))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = p.Process(ctx, u, preferAlt)
			return nil
		})
	}
	_ = g.Wait()
	log.Info().Int("urls", len(urls)).Int("workers", workers).Msg("batch done")
	return template.JoinBatch(results)
}

// RunText parses raw and runs the batch.
func (p *Processor) RunText(ctx context.Context, raw string, preferAlt bool) string {
	return p.Run(ctx, ParseURLs(raw), preferAlt)
}

