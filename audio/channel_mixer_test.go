// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/beatmix/internal/audiotest"
)

func TestChannelMixer_Conversions(t *testing.T) {
	t.Parallel()

	// Channel c of every frame carries 0.1*(c+1)
	waveform := func(_ int, c int) float32 { return 0.1 * float32(c+1) }

	tests := []struct {
		name string
		in   int
		out  int
		want []float32 // one output frame
	}{
		{"mono passthrough", 1, 1, []float32{0.1}},
		{"stereo to mono", 2, 1, []float32{0.15}},
		{"5.1 to mono", 6, 1, []float32{0.35}},
		{"mono to stereo", 1, 2, []float32{0.1, 0.1}},
		{"stereo to quad", 2, 4, []float32{0.1, 0.2, 0.1, 0.2}},
		{"quad to stereo", 4, 2, []float32{0.2, 0.3}},
		{"three to stereo", 3, 2, []float32{0.2, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewMockSource(8000, tt.in, 10, waveform)
			mixer := NewChannelMixer(src, tt.out)

			if mixer.Channels() != tt.out {
				t.Fatalf("Channels() = %d, want %d", mixer.Channels(), tt.out)
			}

			buf := make([]float32, 10*tt.out)
			n, err := mixer.ReadSamples(buf)
			if err != nil && err != io.EOF {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != 10*tt.out {
				t.Fatalf("ReadSamples() n = %d, want %d", n, 10*tt.out)
			}

			for f := range 10 {
				for c, want := range tt.want {
					got := buf[f*tt.out+c]
					if math.Abs(float64(got-want)) > 1e-5 {
						t.Fatalf("frame %d ch %d = %v, want %v", f, c, got, want)
					}
				}
			}
		})
	}
}

func TestChannelMixer_InvalidDst(t *testing.T) {
	t.Parallel()

	mixer := NewChannelMixer(audiotest.NewSilentSource(8000, 1, 10), 2)

	_, err := mixer.ReadSamples(make([]float32, 3))
	if !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}

	n, err := mixer.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
}

func TestChannelMixer_EOF(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(audiotest.NewConstantSource(8000, 2, 5, 0.5))

	buf := make([]float32, 100)
	n, err := mixer.ReadSamples(buf)
	if n != 5 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v, want 5, EOF", n, err)
	}

	n, err = mixer.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, EOF", n, err)
	}
}

func TestChannelMixer_PreservesMetadata(t *testing.T) {
	t.Parallel()

	mixer := NewChannelMixer(audiotest.NewSilentSource(22050, 2, 10), 1)
	if mixer.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", mixer.SampleRate())
	}
	if mixer.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", mixer.BufSize())
	}
	if err := mixer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func BenchmarkChannelMixer_StereoToMono(b *testing.B) {
	src := audiotest.NewSineSource(44100, 2, math.MaxInt32, 440)
	mixer := NewMonoMixer(src)
	buf := make([]float32, 4096)

	for b.Loop() {
		_, _ = mixer.ReadSamples(buf)
	}
}

func BenchmarkChannelMixer_MonoToStereo(b *testing.B) {
	src := audiotest.NewSineSource(44100, 1, math.MaxInt32, 440)
	mixer := NewChannelMixer(src, 2)
	buf := make([]float32, 4096)

	for b.Loop() {
		_, _ = mixer.ReadSamples(buf)
	}
}
