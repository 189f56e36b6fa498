// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/beatmix/crossfade"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "beatmix.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Decode.SampleRate != 44100 || cfg.Decode.Channels != 2 {
		t.Errorf("decode = %+v", cfg.Decode)
	}
	if cfg.Transition.MaxCrossfade != 8*time.Second || cfg.Transition.Curve != crossfade.EqualPower {
		t.Errorf("transition = %+v", cfg.Transition)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis enabled without an address")
	}
	if cfg.Development() {
		t.Error("default environment is development")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
environment: development
metrics_addr: ":9100"
decode:
  sample_rate: 48000
transition:
  max_crossfade: 6s
  curve: linear
session:
  prefetch: 2
redis:
  addr: "localhost:6379"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Development() || cfg.MetricsAddr != ":9100" {
		t.Errorf("process settings = %q %q", cfg.Environment, cfg.MetricsAddr)
	}
	if cfg.Decode.SampleRate != 48000 || cfg.Decode.Channels != 2 {
		t.Errorf("decode = %+v", cfg.Decode)
	}
	if cfg.Transition.MaxCrossfade != 6*time.Second || cfg.Transition.Curve != crossfade.Linear {
		t.Errorf("transition = %+v", cfg.Transition)
	}
	if cfg.Transition.FallbackCrossfade != 4*time.Second {
		t.Errorf("unset field lost its default: %v", cfg.Transition.FallbackCrossfade)
	}
	if cfg.Session.Prefetch != 2 || cfg.Redis.Prefix != "beatmix" {
		t.Errorf("session %+v redis %+v", cfg.Session, cfg.Redis)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "transition:\n  max_crossfade: 6s\n")
	t.Setenv("BEATMIX_MAX_CROSSFADE", "5s")
	t.Setenv("BEATMIX_CURVE", "equal-power")
	t.Setenv("BEATMIX_SAMPLE_RATE", "22050")
	t.Setenv("BEATMIX_PREFETCH", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Transition.MaxCrossfade != 5*time.Second {
		t.Errorf("MaxCrossfade = %v", cfg.Transition.MaxCrossfade)
	}
	if cfg.Decode.SampleRate != 22050 {
		t.Errorf("SampleRate = %d", cfg.Decode.SampleRate)
	}
	if cfg.Session.Prefetch != 1 {
		t.Errorf("unparsable env changed Prefetch to %d", cfg.Session.Prefetch)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown field", content: "decode:\n  sampel_rate: 8000\n"},
		{name: "unknown curve", content: "transition:\n  curve: sigmoid\n"},
		{name: "invalid section", content: "decode:\n  channels: 0\n"},
		{name: "curve env", env: map[string]string{"BEATMIX_CURVE": "cubic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.content != "" {
				path = writeFile(t, tt.content)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestValidateWrapsSection(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Session.Prefetch = -1
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate = %v", err)
	}
}
