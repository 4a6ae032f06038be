package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig fills cfg fields that still hold their defaults from
// GOEXTRACT_* variables. PORT is honoured as ":$PORT" when GOEXTRACT_ADDR is
// unset. Unparsable values are ignored.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	d := Defaults()

	if cfg.Addr == d.Addr {
		if v := strings.TrimSpace(os.Getenv("GOEXTRACT_ADDR")); v != "" {
			cfg.Addr = v
		} else if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
			cfg.Addr = ":" + p
		}
	}
	setString(&cfg.UserAgent, d.UserAgent, os.Getenv("GOEXTRACT_USER_AGENT"))
	setString(&cfg.AcceptLanguage, d.AcceptLanguage, os.Getenv("GOEXTRACT_ACCEPT_LANGUAGE"))
	setString(&cfg.CacheDir, d.CacheDir, os.Getenv("GOEXTRACT_CACHE_DIR"))
	setString(&cfg.SiteRulesPath, d.SiteRulesPath, os.Getenv("GOEXTRACT_SITE_RULES"))

	if v, ok := envDuration("GOEXTRACT_FETCH_TIMEOUT"); ok {
		setDuration(&cfg.FetchTimeout, d.FetchTimeout, v)
	}
	if v, ok := envDuration("GOEXTRACT_CACHE_MAX_AGE"); ok {
		setDuration(&cfg.CacheMaxAge, d.CacheMaxAge, v)
	}
	if v, ok := envInt("GOEXTRACT_MAX_ATTEMPTS"); ok {
		setInt(&cfg.MaxAttempts, d.MaxAttempts, v)
	}
	if v, ok := envInt("GOEXTRACT_WORKERS"); ok {
		setInt(&cfg.Workers, d.Workers, v)
	}
	if v, ok := envBool("GOEXTRACT_PREFER_ALT"); ok && cfg.PreferAlt == d.PreferAlt {
		cfg.PreferAlt = v
	}
	if v, ok := envBool("GOEXTRACT_VERBOSE"); ok && v {
		cfg.Verbose = true
	}
	if v, ok := envBool("GOEXTRACT_CACHE_CLEAR"); ok && v {
		cfg.CacheClear = true
	}
}

func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	return d, err == nil
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
