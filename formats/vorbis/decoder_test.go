// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// mockOggReader mimics oggvorbis.Reader: Read returns interleaved samples.
type mockOggReader struct {
	data     []float32
	pos      int
	channels int
	err      error
}

func (m *mockOggReader) SampleRate() int { return 48000 }
func (m *mockOggReader) Channels() int   { return m.channels }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	data := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3, 0.4, -0.4, 0.5, -0.5}
	src := &source{dec: &mockOggReader{data: data, channels: 2}, sampleRate: 48000, channels: 2}

	// 5 slots only hold two stereo frames
	buf := make([]float32, 5)
	var got []float32
	for {
		n, err := src.ReadSamples(buf)
		if n%2 != 0 {
			t.Fatalf("ReadSamples() = %d samples, not frame aligned", n)
		}
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if len(got) != len(data) {
		t.Fatalf("read %d samples, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt page")
	src := &source{dec: &mockOggReader{err: boom, channels: 1}, sampleRate: 48000, channels: 1}

	_, err := src.ReadSamples(make([]float32, 8))
	if !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want corrupt page", err)
	}
}

func TestSource_SmallDst(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggReader{data: []float32{1, 1}, channels: 2}, sampleRate: 48000, channels: 2}
	if n, err := src.ReadSamples(make([]float32, 1)); n != 0 || err != nil {
		t.Errorf("ReadSamples(1) = %d, %v, want 0, nil", n, err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := [][]byte{nil, []byte("OggS but not really a vorbis stream")}
	for _, data := range tests {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) should fail", data)
		}
	}
}
