// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	goaiff "github.com/go-audio/aiff"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/internal/memfile"
)

// encodeAIFF produces a real AIFF file with the go-audio encoder.
func encodeAIFF(t *testing.T, rate, channels, bitDepth int, data []int) []byte {
	t.Helper()

	f := &memfile.File{}
	enc := goaiff.NewEncoder(f, rate, bitDepth, channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("aiff Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("aiff Close() error = %v", err)
	}
	return f.Bytes()
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	data := make([]int, 2000)
	for i := range data {
		data[i] = (i%200 - 100) * 300
	}
	file := encodeAIFF(t, 22050, 2, 16, data)

	src, err := Decoder{}.Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 22050 || src.Channels() != 2 {
		t.Fatalf("format = %d/%d, want 22050/2", src.SampleRate(), src.Channels())
	}

	buf, err := audio.Collect(src, 512)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(buf.Samples) != len(data) {
		t.Fatalf("len = %d, want %d", len(buf.Samples), len(data))
	}
	for i, v := range data {
		if want := float32(v) / 32768; buf.Samples[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, buf.Samples[i], want)
		}
	}
}

func TestDecoder_NonSeekable(t *testing.T) {
	t.Parallel()

	file := encodeAIFF(t, 8000, 1, 16, make([]int, 100))

	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(file)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	buf, _ := audio.Collect(src, 64)
	if buf.Frames() != 100 {
		t.Errorf("Frames() = %d, want 100", buf.Frames())
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("not an aiff file, just some bytes")},
		{"riff", []byte("RIFF\x24\x00\x00\x00WAVEfmt ")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}
