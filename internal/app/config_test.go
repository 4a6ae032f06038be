package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
	p := writeFile(t, "goextract.yaml", `
addr: ":9000"
fetch:
  timeout: 7s
  maxAttempts: 2
preferAlt: false
workers: 6
siteRules: rules.yaml
cache:
  dir: /tmp/c
  maxAge: 24h
`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Defaults()
	ApplyFileConfig(&cfg, fc)
	if cfg.Addr != ":9000" || cfg.FetchTimeout != 7*time.Second || cfg.MaxAttempts != 2 {
		t.Fatalf("unexpected fetch settings: %+v", cfg)
	}
	if cfg.PreferAlt || cfg.Workers != 6 || cfg.SiteRulesPath != "rules.yaml" {
		t.Fatalf("unexpected behavior settings: %+v", cfg)
	}
	if cfg.CacheDir != "/tmp/c" || cfg.CacheMaxAge != 24*time.Hour {
		t.Fatalf("unexpected cache settings: %+v", cfg)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	p := writeFile(t, "goextract.json", `{"addr": ":9001", "fetch": {"acceptLanguage": "en"}}`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Defaults()
	ApplyFileConfig(&cfg, fc)
	if cfg.Addr != ":9001" || cfg.AcceptLanguage != "en" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.PreferAlt {
		t.Fatalf("absent preferAlt must keep the default")
	}
}

func TestLoadConfigFile_JSONDurations(t *testing.T) {
	p := writeFile(t, "goextract.json", `{"fetch": {"timeout": "20s", "retryBackoff": 1000000}, "cache": {"maxAge": "72h"}}`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Defaults()
	ApplyFileConfig(&cfg, fc)
	if time.Duration(fc.Fetch.Timeout) != 20*time.Second {
		t.Fatalf("timeout=%v, want 20s", time.Duration(fc.Fetch.Timeout))
	}
	if cfg.RetryBackoff != time.Millisecond || cfg.CacheMaxAge != 72*time.Hour {
		t.Fatalf("unexpected durations: backoff=%v maxAge=%v", cfg.RetryBackoff, cfg.CacheMaxAge)
	}
}

func TestLoadConfigFile_BadDuration(t *testing.T) {
	for name, body := range map[string]string{
		"bad.json": `{"fetch": {"timeout": "soon"}}`,
		"bad.yaml": "fetch:\n  timeout: soon\n",
	} {
		if _, err := LoadConfigFile(writeFile(t, name, body)); err == nil {
			t.Fatalf("%s: expected duration error", name)
		}
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	p := writeFile(t, "bad.json", `{"addr":`)
	if _, err := LoadConfigFile(p); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestApplyFileConfig_DoesNotOverrideNonDefaults(t *testing.T) {
	var fc FileConfig
	fc.Addr = ":9000"
	fc.Fetch.MaxAttempts = 9
	cfg := Defaults()
	cfg.Addr = ":7777"
	ApplyFileConfig(&cfg, fc)
	if cfg.Addr != ":7777" {
		t.Fatalf("flag value overwritten: %q", cfg.Addr)
	}
	if cfg.MaxAttempts != 9 {
		t.Fatalf("default value not filled: %d", cfg.MaxAttempts)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(Defaults()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cases := map[string]func(*Config){
		"negative timeout": func(c *Config) { c.FetchTimeout = -time.Second },
		"negative workers": func(c *Config) { c.Workers = -1 },
		"empty agent":      func(c *Config) { c.UserAgent = " " },
		"bad addr":         func(c *Config) { c.Addr = "8080" },
	}
	for name, mutate := range cases {
		cfg := Defaults()
		mutate(&cfg)
		if err := ValidateConfig(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefaults_UserAgentIsBrowserLike(t *testing.T) {
	if !strings.Contains(Defaults().UserAgent, "Chrome/") {
		t.Fatalf("unexpected default user agent %q", Defaults().UserAgent)
	}
}
