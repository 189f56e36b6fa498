// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/formats/wav"
	"github.com/ik5/beatmix/internal/audiotest"
)

func wavBytes(t *testing.T, rate, channels int, samples []float32) []byte {
	t.Helper()

	buf, err := audio.NewBuffer(samples, rate, channels)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	data, err := wav.EncodeBytes(buf)
	if err != nil {
		t.Fatalf("EncodeBytes() error = %v", err)
	}
	return data
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = 16000
	cfg.Channels = 2
	cfg.NormalizeDBFS = 0
	return cfg
}

func TestAdapter_ConvertsToCanonicalFormat(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 8000, 1, audiotest.Tone(8000, 1, time.Second, 220, 0.5))
	a := NewAdapter(testConfig(), zerolog.Nop())

	buf, err := a.Decode(context.Background(), data, "wav")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if buf.SampleRate != 16000 || buf.Channels != 2 {
		t.Fatalf("format = %d/%d, want 16000/2", buf.SampleRate, buf.Channels)
	}
	if d := buf.Duration(); d < 990*time.Millisecond || d > 1010*time.Millisecond {
		t.Errorf("Duration() = %v, want about 1s", d)
	}
	for f := range buf.Frames() {
		fr := buf.Frame(f)
		if fr[0] != fr[1] {
			t.Fatalf("frame %d channels differ: %v", f, fr)
		}
	}
}

func TestAdapter_ContentOverridesHint(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 16000, 2, audiotest.Constant(1600, 2, 0.1))
	a := NewAdapter(testConfig(), zerolog.Nop())

	for _, hint := range []string{"", "mp3", ".WAV", "bogus"} {
		buf, err := a.Decode(context.Background(), data, hint)
		if err != nil {
			t.Fatalf("Decode(hint %q) error = %v", hint, err)
		}
		if buf.Frames() != 1600 {
			t.Errorf("Decode(hint %q) Frames() = %d, want 1600", hint, buf.Frames())
		}
	}
}

func TestAdapter_Failures(t *testing.T) {
	t.Parallel()

	emptyWAV := wavBytes(t, 16000, 1, nil)
	truncated := wavBytes(t, 16000, 1, audiotest.Constant(100, 1, 0.1))[:30]

	tests := []struct {
		name string
		data []byte
		hint string
		want error
	}{
		{"no bytes", nil, "wav", ErrEmptyAudio},
		{"unknown content and hint", []byte("hello there, not audio"), "txt", ErrUnsupportedFormat},
		{"header only wav", emptyWAV, "wav", ErrEmptyAudio},
		{"garbage with wav hint", []byte("garbage garbage garbage garbage garbage"), "wav", nil},
		{"truncated wav", truncated, "", nil},
		{"garbage mp3", append([]byte("ID3"), make([]byte, 64)...), "", nil},
	}

	a := NewAdapter(testConfig(), zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, err := a.Decode(context.Background(), tt.data, tt.hint)
			if buf != nil {
				t.Error("Decode() returned a buffer alongside an error")
			}

			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if !IsDecodeError(err) {
				t.Error("IsDecodeError() = false")
			}
		})
	}
}

func TestAdapter_Normalize(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.NormalizeDBFS = -14
	a := NewAdapter(cfg, zerolog.Nop())

	data := wavBytes(t, 16000, 2, audiotest.Tone(16000, 2, time.Second, 330, 0.1))
	buf, err := a.Decode(context.Background(), data, "wav")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := audio.RMSDBFS(buf.Samples); math.Abs(got+14) > 0.05 {
		t.Errorf("RMS = %.2f dBFS, want -14", got)
	}
}

func TestAdapter_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := wavBytes(t, 8000, 1, audiotest.Constant(8000, 1, 0.1))
	_, err := NewAdapter(testConfig(), zerolog.Nop()).Decode(ctx, data, "wav")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Decode() error = %v, want context.Canceled", err)
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), "wav"},
		{"riff avi", []byte("RIFF\x00\x00\x00\x00AVI LIST"), ""},
		{"ogg", []byte("OggS\x00\x02"), "ogg"},
		{"aiff", []byte("FORM\x00\x00\x00\x00AIFFCOMM"), "aiff"},
		{"aifc", []byte("FORM\x00\x00\x00\x00AIFCFVER"), "aiff"},
		{"id3", []byte("ID3\x04\x00"), "mp3"},
		{"mpeg1 layer3 sync", []byte{0xFF, 0xFB, 0x90, 0x00}, "mp3"},
		{"mpeg2 layer3 sync", []byte{0xFF, 0xF3, 0x90, 0x00}, "mp3"},
		{"aac adts sync", []byte{0xFF, 0xF1, 0x50, 0x80}, ""},
		{"short", []byte{0xFF}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"low rate", func(c *Config) { c.SampleRate = 100 }},
		{"no channels", func(c *Config) { c.Channels = 0 }},
		{"too many channels", func(c *Config) { c.Channels = 9 }},
		{"positive dbfs", func(c *Config) { c.NormalizeDBFS = 3 }},
		{"negative buffer", func(c *Config) { c.BufferSize = -1 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate() error = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}
