// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/beatmix/internal/audiotest"
)

func drain(t *testing.T, src Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(44100, 2, 1000), 8000)
	if r.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", r.SampleRate())
	}
	if r.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", r.Channels())
	}
}

func TestResampler_SameRatePassthrough(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(8000, 1, 800, 440)
	want := drain(t, audiotest.NewSineSource(8000, 1, 800, 440), 128)
	got := drain(t, NewResampler(src, 8000), 128)

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		srcRate   int
		dstRate   int
		channels  int
		tolerance int
	}{
		{"down 44.1k to 8k", 44100, 8000, 1, 100},
		{"up 8k to 44.1k", 8000, 44100, 1, 500},
		{"down 48k to 44.1k stereo", 48000, 44100, 2, 200},
		{"up 22.05k to 44.1k stereo", 22050, 44100, 2, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// One second of input
			src := audiotest.NewSineSource(tt.srcRate, tt.channels, tt.srcRate, 220)
			out := drain(t, NewResampler(src, tt.dstRate), 1024*tt.channels)

			frames := len(out) / tt.channels
			if frames < tt.dstRate-tt.tolerance || frames > tt.dstRate+tt.tolerance {
				t.Errorf("got %d frames, want %d ± %d", frames, tt.dstRate, tt.tolerance)
			}
			for i, s := range out {
				if s < -1.5 || s > 1.5 {
					t.Fatalf("sample %d = %v out of range", i, s)
				}
			}
		})
	}
}

func TestResampler_ConstantSignal(t *testing.T) {
	t.Parallel()

	// Cubic interpolation and the low-pass both preserve DC
	src := audiotest.NewConstantSource(44100, 2, 4410, 0.5)
	out := drain(t, NewResampler(src, 8000), 512)

	if len(out) == 0 {
		t.Fatal("no output")
	}
	for i, s := range out {
		if math.Abs(float64(s-0.5)) > 1e-4 {
			t.Fatalf("sample %d = %v, want 0.5", i, s)
		}
	}
}

func TestResampler_StartsAtFirstFrame(t *testing.T) {
	t.Parallel()

	// Ramp 0, 1, 2, ... scaled down; upsampling by 2 must start at 0
	src := audiotest.NewMockSource(4000, 1, 100, func(f int, _ int) float32 {
		return float32(f) / 100
	})
	out := drain(t, NewResampler(src, 8000), 64)

	if out[0] != 0 {
		t.Errorf("first sample = %v, want 0", out[0])
	}
	if math.Abs(float64(out[2]-0.01)) > 1e-5 {
		t.Errorf("third sample = %v, want 0.01", out[2])
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 2, 100), 16000)
	_, err := r.ReadSamples(make([]float32, 3))
	if !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 1, 0), 16000)
	n, err := r.ReadSamples(make([]float32, 16))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v, want 0, EOF", n, err)
	}
}

func TestResampler_SourceError(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 1, 8000, 0.2).FailAt(3000)
	r := NewResampler(src, 16000)

	buf := make([]float32, 512)
	for {
		_, err := r.ReadSamples(buf)
		if err == nil {
			continue
		}
		if !errors.Is(err, audiotest.ErrInjected) {
			t.Fatalf("ReadSamples() error = %v, want ErrInjected", err)
		}
		return
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	src := audiotest.NewSineSource(48000, 2, math.MaxInt32, 440)
	r := NewResampler(src, 44100)
	buf := make([]float32, 4096)

	for b.Loop() {
		_, _ = r.ReadSamples(buf)
	}
}

func BenchmarkResampler_Upsample(b *testing.B) {
	src := audiotest.NewSineSource(22050, 2, math.MaxInt32, 440)
	r := NewResampler(src, 44100)
	buf := make([]float32, 4096)

	for b.Loop() {
		_, _ = r.ReadSamples(buf)
	}
}
