// Package engine runs the extraction pipeline for one already-fetched page:
// candidate generation, selection, title resolution, block emission and
// template assembly.
package engine

import (
	"errors"
	nurl "net/url"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/goextract/internal/candidate"
	"github.com/hyperifyio/goextract/internal/clean"
	"github.com/hyperifyio/goextract/internal/emit"
	"github.com/hyperifyio/goextract/internal/precision"
	"github.com/hyperifyio/goextract/internal/readable"
	"github.com/hyperifyio/goextract/internal/siterules"
	"github.com/hyperifyio/goextract/internal/template"
	"github.com/hyperifyio/goextract/internal/title"
)

var (
	// ErrNoCandidate means every strategy failed.
	ErrNoCandidate = errors.New("engine: no candidate")
	// ErrEmptyContent means a candidate was selected but its tree is empty.
	ErrEmptyContent = errors.New("engine: empty content")
)

// Engine is stateless across calls and safe for concurrent use.
type Engine struct {
	strategies []candidate.Strategy
	rules      *siterules.Registry
	sequential bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSiteRules sets the per-host rule registry.
func WithSiteRules(r *siterules.Registry) Option {
	return func(e *Engine) { e.rules = r }
}

// WithStrategies replaces the default strategies. Order matters: earlier
// strategies win score ties.
func WithStrategies(s ...candidate.Strategy) Option {
	return func(e *Engine) { e.strategies = s }
}

// WithSequential runs strategies one after another.
func WithSequential() Option {
	return func(e *Engine) { e.sequential = true }
}

// New returns an engine running the structural and precision strategies.
func New(opts ...Option) *Engine {
	e := &Engine{
		strategies: []candidate.Strategy{readable.New(), precision.New()},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one successful extraction.
type Result struct {
	URL      string
	Title    string
	Blocks   []emit.Block
	Lines    []string
	Selected candidate.Name
}

// Candidates runs every strategy over rawHTML. The returned slice follows
// strategy order; failed strategies leave a nil entry.
func (e *Engine) Candidates(finalURL, rawHTML string) []*candidate.Candidate {
	host := hostname(finalURL)
	cands := make([]*candidate.Candidate, len(e.strategies))
	build := func(i int) {
		s := e.strategies[i]
		c, err := candidate.Build(s, rawHTML, finalURL, host, e.rules)
		if err != nil {
			log.Warn().Err(err).Str("url", finalURL).Str("strategy", string(s.Name())).Msg("strategy failed")
			return
		}
		cands[i] = c
	}

	if e.sequential {
		for i := range e.strategies {
			build(i)
		}
		return cands
	}
	var g errgroup.Group
	for i := range e.strategies {
		g.Go(func() error {
			build(i)
			return nil
		})
	}
	_ = g.Wait()
	return cands
}

// Result extracts rawHTML and returns the typed outcome.
func (e *Engine) Result(finalURL, rawHTML string) (Result, error) {
	cands := e.Candidates(finalURL, rawHTML)
	best := candidate.Select(cands...)
	if best == nil {
		return Result{URL: finalURL}, ErrNoCandidate
	}
	if best.Tree == nil || best.Tree.Empty() {
		return Result{URL: finalURL, Selected: best.Name}, ErrEmptyContent
	}

	structuralTitle := ""
	if c := candidate.Find(cands, candidate.StructuralHeuristic); c != nil {
		structuralTitle = c.Title
	}
	t := title.Resolve(best.Tree, structuralTitle, rawHTML)

	clean.RemoveScripts(best.Tree)
	clean.DropNoise(best.Tree)
	clean.UnwrapAnchors(best.Tree)

	blocks := emit.Blocks(best.Tree)
	log.Debug().
		Str("url", finalURL).
		Str("strategy", string(best.Name)).
		Float64("score", best.Score).
		Int("text_len", best.TextLen()).
		Int("blocks", len(blocks)).
		Msg("candidate selected")
	return Result{
		URL:      finalURL,
		Title:    t,
		Blocks:   blocks,
		Lines:    emit.Render(blocks),
		Selected: best.Name,
	}, nil
}

// Extract returns the template envelope for rawHTML. It never fails: missing
// content is reported inside the envelope.
func (e *Engine) Extract(finalURL, rawHTML string) string {
	res, err := e.Result(finalURL, rawHTML)
	if err != nil {
		log.Debug().Err(err).Str("url", finalURL).Msg("no content")
		return template.Failure(finalURL)
	}
	return template.Render(res.URL, res.Title, res.Lines)
}

func hostname(raw string) string {
	u, err := nurl.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
