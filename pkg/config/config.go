// Package config resolves meshstep settings. Sources are applied in order,
// later ones winning: built-in defaults, an optional YAML file, a .env file,
// then MESHSTEP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig classifies every validation and parse failure.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// Config is the resolved configuration.
type Config struct {
	OutputDir       string
	MaxVertices     int
	MaxFaces        int
	MinAreaFraction float64
	MaxPlanes       int
	Author          string
	Organization    string
	Debug           bool
	// LogJSON switches the log handler from text to JSON lines.
	LogJSON         bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir:       "outputs/runs",
		MaxVertices:     2_000_000,
		MaxFaces:        4_000_000,
		MinAreaFraction: 0.01,
		MaxPlanes:       12,
	}
}

// Validate checks ranges and names the first offending field.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.OutputDir) == "":
		return invalidField("config", "output_dir", "must not be empty")
	case c.MaxVertices <= 0:
		return invalidField("config", "limits.max_vertices", "must be positive")
	case c.MaxFaces <= 0:
		return invalidField("config", "limits.max_faces", "must be positive")
	case c.MinAreaFraction < 0 || c.MinAreaFraction > 1:
		return invalidField("config", "hints.min_area_fraction", "must be between 0 and 1")
	case c.MaxPlanes <= 0:
		return invalidField("config", "hints.max_planes", "must be positive")
	}
	return nil
}

// Option adjusts how Load finds its sources.
type Option func(*loader)

type loader struct {
	envFile   string
	lookupEnv func(string) (string, bool)
}

// WithEnvFile reads path instead of DefaultEnvFile. An empty path disables
// the .env source.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// WithLookupEnv replaces os.LookupEnv, for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *loader) { l.lookupEnv = fn }
}

// Load resolves the configuration. path names a YAML file and may be empty;
// a named file that does not exist is an error. A missing .env is not.
func Load(path string, opts ...Option) (Config, error) {
	l := loader{envFile: DefaultEnvFile, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(&l)
	}

	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		var dto yamlConfig
		if err := yaml.Unmarshal(b, &dto); err != nil {
			return Config{}, fmt.Errorf("config: %s: %v: %w", path, err, ErrInvalidConfig)
		}
		if err := dto.apply(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if l.envFile != "" {
		m, err := godotenv.Read(l.envFile)
		switch {
		case err == nil:
			dotenv = m
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("config: %s: %w", l.envFile, err)
		}
	}
	// Process environment wins over .env, as godotenv.Load would leave it.
	lookup := func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(lookup, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays MESHSTEP_* variables. OUTPUT_DIR is honored when
// MESHSTEP_OUTPUT_DIR is unset.
func applyEnv(lookup func(string) (string, bool), cfg *Config) error {
	if v, ok := lookup("OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	if v, ok := lookup("MESHSTEP_OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	if v, ok := lookup("MESHSTEP_AUTHOR"); ok {
		cfg.Author = v
	}
	if v, ok := lookup("MESHSTEP_ORGANIZATION"); ok {
		cfg.Organization = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MESHSTEP_MAX_VERTICES", &cfg.MaxVertices},
		{"MESHSTEP_MAX_FACES", &cfg.MaxFaces},
		{"MESHSTEP_MAX_PLANES", &cfg.MaxPlanes},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return invalidField("env", e.key, fmt.Sprintf("not an integer: %q", v))
		}
		*e.dst = n
	}

	if v, ok := lookup("MESHSTEP_MIN_AREA_FRACTION"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return invalidField("env", "MESHSTEP_MIN_AREA_FRACTION", fmt.Sprintf("not a number: %q", v))
		}
		cfg.MinAreaFraction = f
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"MESHSTEP_DEBUG", &cfg.Debug},
		{"MESHSTEP_LOG_JSON", &cfg.LogJSON},
	}
	for _, e := range bools {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return invalidField("env", e.key, fmt.Sprintf("not a boolean: %q", v))
		}
		*e.dst = b
	}
	return nil
}

func invalidField(source, field, msg string) error {
	return fmt.Errorf("config: %s: field %s: %s: %w", source, field, msg, ErrInvalidConfig)
}
