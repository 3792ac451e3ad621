package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"vane/internal/weather"
)

const SupportedSchema = "v1"

type ServerSection struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

type LogSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type LiveSection struct {
	Topic    string `yaml:"topic"`
	Group    string `yaml:"group"`
	Consumer string `yaml:"consumer"`
	Latest   int    `yaml:"latest"`
}

type HistorySection struct {
	Topic         string `yaml:"topic"`
	Group         string `yaml:"group"`
	Consumer      string `yaml:"consumer"`
	WindowMinutes int    `yaml:"window_minutes"`
}

// File is the application config. Proxy and Stations point at their own
// files and are resolved relative to this one.
type File struct {
	SchemaVersion string         `yaml:"schema_version"`
	Proxy         string         `yaml:"proxy"`
	Stations      string         `yaml:"stations"`
	Server        ServerSection  `yaml:"server"`
	Log           LogSection     `yaml:"log"`
	Live          LiveSection    `yaml:"live"`
	History       HistorySection `yaml:"history"`
}

// Load parses the app YAML, validates schema_version, resolves relative
// sub-config paths, and fills defaults. A missing file yields defaults,
// so the service runs with no config on disk at all.
func Load(path string) (File, error) {
	var cfg File
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, err
			}
			if cfg.SchemaVersion == "" {
				cfg.SchemaVersion = SupportedSchema
			}
			if cfg.SchemaVersion != SupportedSchema {
				return cfg, fmt.Errorf("config schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
			}
			cfg.Proxy = resolvePath(path, cfg.Proxy)
			cfg.Stations = resolvePath(path, cfg.Stations)
		}
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(base), p)
}

// Subscription returns the live feed coordinates.
func (s LiveSection) Subscription() weather.Subscription {
	return weather.Subscription{Topic: s.Topic, Group: s.Group, Consumer: s.Consumer}
}

// Subscription returns the history feed coordinates.
func (s HistorySection) Subscription() weather.Subscription {
	return weather.Subscription{Topic: s.Topic, Group: s.Group, Consumer: s.Consumer}
}

// Window returns the trailing window as a duration.
func (s HistorySection) Window() time.Duration {
	return time.Duration(s.WindowMinutes) * time.Minute
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *File) {
	if c.SchemaVersion == "" {
		c.SchemaVersion = SupportedSchema
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9100
	}
	if c.Live.Topic == "" {
		c.Live.Topic = "weather"
	}
	if c.Live.Group == "" {
		c.Live.Group = "weather-group"
	}
	if c.Live.Consumer == "" {
		c.Live.Consumer = "weather-consumer"
	}
	if c.Live.Latest == 0 {
		c.Live.Latest = 5
	}
	if c.History.Topic == "" {
		c.History.Topic = "weather_history"
	}
	if c.History.Group == "" {
		c.History.Group = "weather-history-group"
	}
	if c.History.Consumer == "" {
		c.History.Consumer = "weather-history-consumer"
	}
	if c.History.WindowMinutes == 0 {
		c.History.WindowMinutes = 30
	}
}
