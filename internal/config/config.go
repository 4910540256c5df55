// Package config reads application configuration from environment variables
// and the optional column-map YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xaitan80/matchbrowser/internal/matches"
)

type Config struct {
	Source         string
	Addr           string
	DBPath         string
	ColumnsFile    string
	LogLevel       string
	TrustedProxies []string
	AdminTokenHash string
	Watch          bool
	Location       *time.Location
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Source:         env("SOURCE", "data/match_data.csv"),
		Addr:           env("ADDR", ":8080"),
		DBPath:         os.Getenv("DB_PATH"),
		ColumnsFile:    os.Getenv("COLUMNS_FILE"),
		LogLevel:       env("LOG_LEVEL", "info"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		Location:       time.Local,
	}
	if _, set := os.LookupEnv("DB_PATH"); !set {
		cfg.DBPath = "matchbrowser.db"
	}

	for _, p := range strings.Split(env("TRUSTED_PROXIES", "127.0.0.1,::1"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, p)
		}
	}

	if raw := os.Getenv("WATCH"); raw != "" {
		w, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid WATCH %q: %w", raw, err)
		}
		cfg.Watch = w
	}

	if name := os.Getenv("LOCATION"); name != "" && name != "Local" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCATION %q: %w", name, err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

// Layout returns the column layout from ColumnsFile, or the default layout
// when no file is configured.
func (c *Config) Layout() (matches.Layout, error) {
	if c.ColumnsFile == "" {
		return matches.DefaultLayout(), nil
	}
	return LoadLayout(c.ColumnsFile)
}

// LoadLayout reads a YAML column map. Roles left out of the file keep their
// default header names.
func LoadLayout(path string) (matches.Layout, error) {
	b, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return matches.Layout{}, fmt.Errorf("read columns file: %w", err)
	}
	return ParseLayout(b)
}

func ParseLayout(b []byte) (matches.Layout, error) {
	l := matches.DefaultLayout()
	if err := yaml.Unmarshal(b, &l); err != nil {
		return matches.Layout{}, fmt.Errorf("parse columns file: %w", err)
	}
	if err := l.Validate(); err != nil {
		return matches.Layout{}, err
	}
	return l, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
