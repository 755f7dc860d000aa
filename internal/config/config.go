// Package config loads client settings from defaults, an optional TOML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Environment variables.
const (
	EnvConfigPath     = "SPLITMINT_CONFIG"
	EnvAPIBaseURL     = "SPLITMINT_API_URL"
	EnvListenAddr     = "LISTEN_ADDR"
	EnvStatePath      = "STATE_PATH"
	EnvLogLevel       = "LOG_LEVEL"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
)

const (
	defaultAPIBaseURL     = "http://127.0.0.1:8000"
	defaultListenAddr     = "127.0.0.1:3000"
	defaultStatePath      = "./data/splitmint-client.db"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Config holds the client settings.
type Config struct {
	// APIBaseURL is the root of the SplitMint REST API.
	APIBaseURL string

	// ListenAddr is where the web client listens.
	ListenAddr string

	// StatePath is the SQLite file holding the persisted session.
	StatePath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// AllowedOrigins is the CORS allow list of the web client.
	AllowedOrigins []string

	// RequestTimeout bounds every API call.
	RequestTimeout time.Duration
}

// fileConfig mirrors config.toml. Durations are strings such as "10s".
type fileConfig struct {
	APIBaseURL     string   `toml:"api_base_url"`
	ListenAddr     string   `toml:"listen_addr"`
	StatePath      string   `toml:"state_path"`
	LogLevel       string   `toml:"log_level"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIBaseURL:     defaultAPIBaseURL,
		ListenAddr:     defaultListenAddr,
		StatePath:      defaultStatePath,
		LogLevel:       defaultLogLevel,
		AllowedOrigins: append([]string{}, defaultAllowedOrigins...),
		RequestTimeout: defaultRequestTimeout,
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file at Path and then the environment.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path, os.LookupEnv)
}

// LoadFrom reads the TOML file at path (a missing file is skipped), applies
// variables from lookup and validates the result.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns SPLITMINT_CONFIG if set, else splitmint/config.toml under the
// user config directory.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "splitmint", "config.toml"), nil
}

func (c *Config) readFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setString(&c.APIBaseURL, fc.APIBaseURL)
	setString(&c.ListenAddr, fc.ListenAddr)
	setString(&c.StatePath, fc.StatePath)
	setString(&c.LogLevel, fc.LogLevel)
	if origins := normalizedList(fc.AllowedOrigins); len(origins) > 0 {
		c.AllowedOrigins = origins
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout in %s: %w", path, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	setString(&c.APIBaseURL, get(EnvAPIBaseURL))
	setString(&c.ListenAddr, get(EnvListenAddr))
	setString(&c.StatePath, get(EnvStatePath))
	setString(&c.LogLevel, get(EnvLogLevel))
	if v := get(EnvAllowedOrigins); v != "" {
		c.AllowedOrigins = normalizedList(strings.Split(v, ","))
	}
	if v := get(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.StatePath == "" {
		return errors.New("state_path is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func normalizedList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
