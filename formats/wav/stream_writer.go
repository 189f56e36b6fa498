// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/beatmix/utils"
)

// unknownSize marks RIFF and data sizes of a stream whose length is not
// known up front. Most players read such files until EOF.
const unknownSize = math.MaxUint32

// StreamWriter writes 16-bit PCM WAV to a plain io.Writer (a pipe or
// stdout) where the header cannot be patched afterwards.
type StreamWriter struct {
	w        io.Writer
	channels int
	buf      []byte
	written  int // samples
}

// NewStreamWriter writes the header immediately.
func NewStreamWriter(w io.Writer, sampleRate, channels int) (*StreamWriter, error) {
	if err := writeStreamHeader(w, sampleRate, channels); err != nil {
		return nil, err
	}
	return &StreamWriter{w: w, channels: channels}, nil
}

// Write appends interleaved float32 samples, clamping them to 16 bit.
func (s *StreamWriter) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	if cap(s.buf) < len(samples)*2 {
		s.buf = make([]byte, len(samples)*2)
	}
	buf := s.buf[:len(samples)*2]

	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(utils.Float32ToInt16(v)))
	}

	if _, err := s.w.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	s.written += len(samples)
	return nil
}

// Frames reports how many frames went out so far.
func (s *StreamWriter) Frames() int {
	return s.written / s.channels
}

// writeStreamHeader emits the canonical 44 byte header for 16-bit PCM with
// both sizes left open.
func writeStreamHeader(w io.Writer, sampleRate, channels int) error {
	const bitsPerSample = 16
	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], unknownSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], unknownSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}
