package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Addr string `yaml:"addr" json:"addr"`

	Fetch struct {
		UserAgent       string        `yaml:"userAgent" json:"userAgent"`
		AcceptLanguage  string        `yaml:"acceptLanguage" json:"acceptLanguage"`
		Timeout         Duration `yaml:"timeout" json:"timeout"`
		AltTimeout      Duration `yaml:"altTimeout" json:"altTimeout"`
		MaxAttempts     int           `yaml:"maxAttempts" json:"maxAttempts"`
		RetryBackoff    Duration `yaml:"retryBackoff" json:"retryBackoff"`
		RedirectMaxHops int           `yaml:"redirectMaxHops" json:"redirectMaxHops"`
	} `yaml:"fetch" json:"fetch"`

	PreferAlt *bool  `yaml:"preferAlt" json:"preferAlt"`
	Workers   int    `yaml:"workers" json:"workers"`
	SiteRules string `yaml:"siteRules" json:"siteRules"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration is a config file duration. It accepts Go duration strings such
// as "20s" and plain integers, which are nanoseconds.
type Duration time.Duration

func parseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	return Duration(d), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("duration %s: want a string or integer", b)
		}
		*d = Duration(n)
		return nil
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig. Unknown extensions are
// tried as YAML and then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills every cfg field that still holds its default with
// the file's value, so flags and environment keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	d := Defaults()
	setString(&cfg.Addr, d.Addr, fc.Addr)
	setString(&cfg.UserAgent, d.UserAgent, fc.Fetch.UserAgent)
	setString(&cfg.AcceptLanguage, d.AcceptLanguage, fc.Fetch.AcceptLanguage)
	setDuration(&cfg.FetchTimeout, d.FetchTimeout, time.Duration(fc.Fetch.Timeout))
	setDuration(&cfg.AltFetchTimeout, d.AltFetchTimeout, time.Duration(fc.Fetch.AltTimeout))
	setInt(&cfg.MaxAttempts, d.MaxAttempts, fc.Fetch.MaxAttempts)
	setDuration(&cfg.RetryBackoff, d.RetryBackoff, time.Duration(fc.Fetch.RetryBackoff))
	setInt(&cfg.RedirectMaxHops, d.RedirectMaxHops, fc.Fetch.RedirectMaxHops)
	if fc.PreferAlt != nil && cfg.PreferAlt == d.PreferAlt {
		cfg.PreferAlt = *fc.PreferAlt
	}
	setInt(&cfg.Workers, d.Workers, fc.Workers)
	setString(&cfg.SiteRulesPath, d.SiteRulesPath, fc.SiteRules)
	setString(&cfg.CacheDir, d.CacheDir, fc.Cache.Dir)
	setDuration(&cfg.CacheMaxAge, d.CacheMaxAge, time.Duration(fc.Cache.MaxAge))
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

func setString(dst *string, def, v string) {
	if *dst == def && strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setInt(dst *int, def, v int) {
	if *dst == def && v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, def, v time.Duration) {
	if *dst == def && v > 0 {
		*dst = v
	}
}

// ValidateConfig rejects settings the application cannot run with.
func ValidateConfig(cfg Config) error {
	if cfg.FetchTimeout < 0 || cfg.AltFetchTimeout < 0 || cfg.RetryBackoff < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if cfg.MaxAttempts < 0 || cfg.Workers < 0 || cfg.RedirectMaxHops < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return errors.New("config: user agent is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("config: addr %q: %w", cfg.Addr, err)
	}
	return nil
}
