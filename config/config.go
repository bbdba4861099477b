// Package config supplies the externally provided knobs of the lint engine
// core: where the cache lives, whether it is enabled, lock and retry
// tuning. Values come from an optional YAML file overridden by CLOUDLINT_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration.
type Config struct {
	// CacheDir is the directory holding the persistent cache store.
	CacheDir string
	// NoCache disables all caching for the run.
	NoCache bool
	// LockTimeout bounds per-key cache lock acquisition.
	LockTimeout time.Duration
	// Retries is the number of API call attempts.
	Retries int
	// Multiplier is the exponential backoff base, in seconds per attempt.
	Multiplier float64
	// RandomPct jitters each backoff interval by up to ± this fraction.
	RandomPct float64
}

// fileConfig is the YAML shape; durations are strings like "2m30s".
type fileConfig struct {
	CacheDir    string  `yaml:"cache_dir"`
	NoCache     bool    `yaml:"no_cache"`
	LockTimeout string  `yaml:"lock_timeout"`
	Retries     int     `yaml:"retries"`
	Multiplier  float64 `yaml:"multiplier"`
	RandomPct   float64 `yaml:"random_pct"`
}

// Default returns the built-in configuration: cache under the user cache
// directory, 2 minute lock timeout, 5 attempts of 1.4^n seconds ±20%.
func Default() Config {
	dir := "cloudlint-cache"
	if base, err := os.UserCacheDir(); err == nil {
		dir = filepath.Join(base, "cloudlint")
	}
	return Config{
		CacheDir:    dir,
		LockTimeout: 2 * time.Minute,
		Retries:     5,
		Multiplier:  1.4,
		RandomPct:   0.2,
	}
}

// Load resolves the configuration: defaults, then the YAML file at path (if
// path is non-empty; a missing file is an error), then environment
// variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(buf, &fc); err != nil {
		return fmt.Errorf("config: cannot parse %s: %w", path, err)
	}
	if fc.CacheDir != "" {
		c.CacheDir = fc.CacheDir
	}
	if fc.NoCache {
		c.NoCache = true
	}
	if fc.LockTimeout != "" {
		d, err := str2duration.ParseDuration(fc.LockTimeout)
		if err != nil {
			return fmt.Errorf("config: invalid lock_timeout in %s: %w", path, err)
		}
		c.LockTimeout = d
	}
	if fc.Retries > 0 {
		c.Retries = fc.Retries
	}
	if fc.Multiplier > 0 {
		c.Multiplier = fc.Multiplier
	}
	if fc.RandomPct > 0 {
		c.RandomPct = fc.RandomPct
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CLOUDLINT_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("CLOUDLINT_NO_CACHE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid CLOUDLINT_NO_CACHE: %w", err)
		}
		c.NoCache = b
	}
	if v := os.Getenv("CLOUDLINT_LOCK_TIMEOUT"); v != "" {
		d, err := str2duration.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CLOUDLINT_LOCK_TIMEOUT: %w", err)
		}
		c.LockTimeout = d
	}
	if v := os.Getenv("CLOUDLINT_API_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("config: invalid CLOUDLINT_API_RETRIES %q", v)
		}
		c.Retries = n
	}
	return nil
}
