// Package siterules is the per-domain extension point for extraction. A
// Registry maps a hostname to the structural selectors that should be
// stripped from that site's candidate trees before noise filtering.
package siterules

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/goextract/internal/dom"
)

// Rules configures extraction for one site.
type Rules struct {
	// RemoveSelectors are CSS selectors whose matches are deleted.
	RemoveSelectors []string `yaml:"remove" json:"remove"`
	// PreferSelector names the site's main content container. It is kept
	// as data; no stage consumes it yet.
	PreferSelector string `yaml:"prefer" json:"prefer"`
}

// File is the on-disk schema of a rules registry.
type File struct {
	Sites map[string]Rules `yaml:"sites" json:"sites"`
}

// Registry is safe for concurrent use. The zero value is an empty registry.
type Registry struct {
	mu    sync.RWMutex
	sites map[string]compiled
}

type compiled struct {
	rules     Rules
	selectors []cascadia.Selector
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sites: map[string]compiled{}}
}

// Register adds or replaces the rules for host. Invalid selectors are
// rejected.
func (r *Registry) Register(host string, rules Rules) error {
	host = normalizeHost(host)
	if host == "" {
		return fmt.Errorf("siterules: empty host")
	}
	c := compiled{rules: rules}
	for _, s := range rules.RemoveSelectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			return fmt.Errorf("siterules: %s: selector %q: %w", host, s, err)
		}
		c.selectors = append(c.selectors, sel)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sites == nil {
		r.sites = map[string]compiled{}
	}
	r.sites[host] = c
	return nil
}

// Lookup finds rules for host, trying the exact host and then the host
// without a leading "www.".
func (r *Registry) Lookup(host string) (Rules, bool) {
	c, ok := r.lookup(host)
	return c.rules, ok
}

func (r *Registry) lookup(host string) (compiled, bool) {
	if r == nil {
		return compiled{}, false
	}
	host = normalizeHost(host)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.sites[host]; ok {
		return c, true
	}
	if trimmed := strings.TrimPrefix(host, "www."); trimmed != host {
		c, ok := r.sites[trimmed]
		return c, ok
	}
	return compiled{}, false
}

// Len reports the number of registered hosts.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sites)
}

// Apply removes every node matching the host's selectors from t. It returns
// the number of removed nodes; hosts without rules are a no-op.
func (r *Registry) Apply(host string, t *dom.Tree) int {
	c, ok := r.lookup(host)
	if !ok || len(c.selectors) == 0 {
		return 0
	}
	removed := 0
	for _, sel := range c.selectors {
		matches := t.Document().FindMatcher(sel)
		removed += matches.Length()
		matches.Remove()
	}
	if removed > 0 {
		log.Debug().Str("host", host).Int("removed", removed).Msg("site rules applied")
	}
	return removed
}

// Load reads a YAML registry file and registers every site in it.
func Load(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site rules: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse site rules: %w", err)
	}
	reg := New()
	for host, rules := range f.Sites {
		if err := reg.Register(host, rules); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}
