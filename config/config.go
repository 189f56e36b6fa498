// SPDX-License-Identifier: EPL-2.0

// Package config loads process configuration for beatmix from defaults, an
// optional YAML file and BEATMIX_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/crossfade"
	"github.com/ik5/beatmix/decode"
	"github.com/ik5/beatmix/session"
	"github.com/ik5/beatmix/telemetry"
	"github.com/ik5/beatmix/transition"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config covers every tunable of a beatmix process.
type Config struct {
	Environment string `yaml:"environment"`
	// MetricsAddr empty disables the Prometheus endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	Decode     decode.Config         `yaml:"decode"`
	Beat       beat.Config           `yaml:"beat"`
	Transition transition.Config     `yaml:"transition"`
	Session    session.Config        `yaml:"session"`
	Redis      telemetry.RedisConfig `yaml:"redis"`
}

func Default() Config {
	return Config{
		Environment: "production",
		Decode:      decode.DefaultConfig(),
		Beat:        beat.DefaultConfig(),
		Transition:  transition.DefaultConfig(),
		Session:     session.DefaultConfig(),
		Redis:       telemetry.DefaultRedisConfig(),
	}
}

// Load builds a Config from defaults, the YAML file at path when path is not
// empty, and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Environment = getEnv("BEATMIX_ENV", cfg.Environment)
	cfg.MetricsAddr = getEnv("BEATMIX_METRICS_ADDR", cfg.MetricsAddr)

	cfg.Decode.SampleRate = getEnvInt("BEATMIX_SAMPLE_RATE", cfg.Decode.SampleRate)
	cfg.Decode.Channels = getEnvInt("BEATMIX_CHANNELS", cfg.Decode.Channels)
	cfg.Decode.NormalizeDBFS = getEnvFloat("BEATMIX_NORMALIZE_DBFS", cfg.Decode.NormalizeDBFS)

	cfg.Beat.MinBPM = getEnvFloat("BEATMIX_MIN_BPM", cfg.Beat.MinBPM)
	cfg.Beat.MaxBPM = getEnvFloat("BEATMIX_MAX_BPM", cfg.Beat.MaxBPM)
	cfg.Beat.ConfidenceThreshold = getEnvFloat("BEATMIX_CONFIDENCE_THRESHOLD", cfg.Beat.ConfidenceThreshold)

	cfg.Transition.MaxCrossfade = getEnvDuration("BEATMIX_MAX_CROSSFADE", cfg.Transition.MaxCrossfade)
	cfg.Transition.FallbackCrossfade = getEnvDuration("BEATMIX_FALLBACK_CROSSFADE", cfg.Transition.FallbackCrossfade)
	cfg.Transition.MinCrossfade = getEnvDuration("BEATMIX_MIN_CROSSFADE", cfg.Transition.MinCrossfade)
	cfg.Transition.BPMTolerance = getEnvFloat("BEATMIX_BPM_TOLERANCE", cfg.Transition.BPMTolerance)
	if v := getEnv("BEATMIX_CURVE", ""); v != "" {
		kind, err := crossfade.ParseKind(v)
		if err != nil {
			return fmt.Errorf("%w: BEATMIX_CURVE: %w", ErrInvalidConfig, err)
		}
		cfg.Transition.Curve = kind
	}

	cfg.Session.Lookahead = getEnvDuration("BEATMIX_LOOKAHEAD", cfg.Session.Lookahead)
	cfg.Session.Prefetch = getEnvInt("BEATMIX_PREFETCH", cfg.Session.Prefetch)
	cfg.Session.SkipFade = getEnvDuration("BEATMIX_SKIP_FADE", cfg.Session.SkipFade)

	cfg.Redis.Addr = getEnv("BEATMIX_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("BEATMIX_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("BEATMIX_REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Prefix = getEnv("BEATMIX_REDIS_PREFIX", cfg.Redis.Prefix)

	return nil
}

// Validate checks every section and reports the first failure.
func (c Config) Validate() error {
	checks := []struct {
		section string
		check   func() error
	}{
		{"decode", c.Decode.Validate},
		{"beat", c.Beat.Validate},
		{"transition", c.Transition.Validate},
		{"session", c.Session.Validate},
		{"redis", c.Redis.Validate},
	}
	for _, ch := range checks {
		if err := ch.check(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, ch.section, err)
		}
	}
	return nil
}

// Development reports whether the process runs with debug defaults.
func (c Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return def
}
