// Package config loads wikicard settings from a file and the environment.
//
// Sources are applied in order: built-in defaults, the config file (YAML, TOML or
// JSON, chosen by extension), then environment variables. A missing file is not an
// error.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/pkg/domain"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Server struct {
	Port int `mapstructure:"port" json:"port"`
}

type Log struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

type Wikipedia struct {
	BaseURL      string        `mapstructure:"base_url" json:"base_url"`
	ContactEmail string        `mapstructure:"contact_email" json:"contact_email"`
	Timeout      time.Duration `mapstructure:"timeout" json:"timeout"`
}

type Acquisition struct {
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts"`
}

// History selects the store of distributed articles. An empty Path picks a
// per-backend default under .wikicard/.
type History struct {
	Backend       string        `mapstructure:"backend" json:"backend"`
	Path          string        `mapstructure:"path" json:"path"`
	RedisAddr     string        `mapstructure:"redis_addr" json:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" json:"-"`
	RedisDB       int           `mapstructure:"redis_db" json:"redis_db"`
	Prefix        string        `mapstructure:"prefix" json:"prefix"`
	TTL           time.Duration `mapstructure:"ttl" json:"ttl"`
	ReadOnly      bool          `mapstructure:"read_only" json:"read_only"`
}

type Render struct {
	Theme      string `mapstructure:"theme" json:"theme"`
	Width      int    `mapstructure:"width" json:"width"`
	Height     int    `mapstructure:"height" json:"height"`
	Footer     string `mapstructure:"footer" json:"footer"`
	BrowserBin string `mapstructure:"browser_bin" json:"browser_bin"`
	ControlURL string `mapstructure:"control_url" json:"control_url"`
	Headless   bool   `mapstructure:"headless" json:"headless"`
	NoSandbox  bool   `mapstructure:"no_sandbox" json:"no_sandbox"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// Config is the full application configuration.
type Config struct {
	Server      Server      `mapstructure:"server" json:"server"`
	Log         Log         `mapstructure:"log" json:"log"`
	Wikipedia   Wikipedia   `mapstructure:"wikipedia" json:"wikipedia"`
	Acquisition Acquisition `mapstructure:"acquisition" json:"acquisition"`
	History     History     `mapstructure:"history" json:"history"`
	Render      Render      `mapstructure:"render" json:"render"`
	Metrics     Metrics     `mapstructure:"metrics" json:"metrics"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{Port: 8080},
		Log:    Log{Level: "info", Format: "text"},
		Wikipedia: Wikipedia{
			BaseURL:      "https://en.wikipedia.org/api/rest_v1",
			ContactEmail: "no-email-set",
			Timeout:      10 * time.Second,
		},
		Acquisition: Acquisition{MaxAttempts: 5},
		History: History{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
			Prefix:    "wikicard:history:",
		},
		Render: Render{
			Theme:    string(domain.ThemeLight),
			Width:    1080,
			Height:   1350,
			Headless: true,
		},
		Metrics: Metrics{Enabled: true},
	}
}

// envKeys maps environment variables to dotted config keys.
var envKeys = map[string]string{
	"WIKICARD_SERVER_PORT":              "server.port",
	"WIKICARD_LOG_LEVEL":                "log.level",
	"WIKICARD_LOG_FORMAT":               "log.format",
	"WIKICARD_WIKIPEDIA_BASE_URL":       "wikipedia.base_url",
	"WIKICARD_WIKIPEDIA_CONTACT_EMAIL":  "wikipedia.contact_email",
	"WIKI_CONTACT_EMAIL":                "wikipedia.contact_email",
	"WIKICARD_WIKIPEDIA_TIMEOUT":        "wikipedia.timeout",
	"WIKICARD_ACQUISITION_MAX_ATTEMPTS": "acquisition.max_attempts",
	"WIKICARD_HISTORY_BACKEND":          "history.backend",
	"WIKICARD_HISTORY_PATH":             "history.path",
	"WIKICARD_HISTORY_REDIS_ADDR":       "history.redis_addr",
	"WIKICARD_HISTORY_REDIS_PASSWORD":   "history.redis_password",
	"WIKICARD_HISTORY_REDIS_DB":         "history.redis_db",
	"WIKICARD_HISTORY_PREFIX":           "history.prefix",
	"WIKICARD_HISTORY_TTL":              "history.ttl",
	"WIKICARD_HISTORY_READ_ONLY":        "history.read_only",
	"WIKICARD_RENDER_THEME":             "render.theme",
	"WIKICARD_RENDER_WIDTH":             "render.width",
	"WIKICARD_RENDER_HEIGHT":            "render.height",
	"WIKICARD_RENDER_FOOTER":            "render.footer",
	"WIKICARD_RENDER_BROWSER_BIN":       "render.browser_bin",
	"WIKICARD_RENDER_CONTROL_URL":       "render.control_url",
	"WIKICARD_RENDER_HEADLESS":          "render.headless",
	"WIKICARD_RENDER_NO_SANDBOX":        "render.no_sandbox",
	"WIKICARD_METRICS_ENABLED":          "metrics.enabled",
}

// Load reads path and the process environment.
func Load(path string) (*Config, error) {
	return LoadFrom(path, os.LookupEnv)
}

// LoadFrom is Load with an explicit environment lookup.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	// WIKICARD_* wins over the legacy WIKI_CONTACT_EMAIL.
	if v, ok := lookup("WIKI_CONTACT_EMAIL"); ok && v != "" {
		setPath(raw, envKeys["WIKI_CONTACT_EMAIL"], v)
	}
	for env, key := range envKeys {
		if env == "WIKI_CONTACT_EMAIL" {
			continue
		}
		if v, ok := lookup(env); ok && v != "" {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	raw := map[string]any{}
	if path == "" {
		return raw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// setPath assigns value at a dotted key, creating intermediate maps.
func setPath(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error

	switch c.History.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("history.backend: unknown backend %q", c.History.Backend))
	}
	if _, err := domain.ParseTheme(c.Render.Theme); err != nil {
		errs = append(errs, fmt.Errorf("render.theme: %w", err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: out of range: %d", c.Server.Port))
	}
	if c.Acquisition.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("acquisition.max_attempts: must be at least 1"))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render: width and height must be positive"))
	}
	if c.Wikipedia.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("wikipedia.timeout: must be positive"))
	}
	return errors.Join(errs...)
}
