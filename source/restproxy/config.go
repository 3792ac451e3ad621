package restproxy

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	BaseURL        string        `koanf:"base_url"`        // proxy root, no trailing slash
	RequestTimeout time.Duration `koanf:"request_timeout"` // per HTTP call
	PollAttempts   int           `koanf:"poll_attempts"`   // record fetches per session
	PollInterval   time.Duration `koanf:"poll_interval"`   // wait between empty polls
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `VANE_PROXY__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("proxy schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider("VANE_PROXY__", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "VANE_PROXY__")), "__", ".")
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8082"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.PollAttempts == 0 {
		c.PollAttempts = 5
	}
	if c.PollInterval == 0 {
		c.PollInterval = 500 * time.Millisecond
	}
}
