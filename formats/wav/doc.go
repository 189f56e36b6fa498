// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files through
// github.com/go-audio/wav.
//
// # Decoding
//
//	src, err := wav.Decoder{}.Decode(file)
//
// Integer PCM at 16, 24 and 32 bit is accepted. 8-bit (unsigned) and IEEE
// float files are rejected with ErrUnsupportedBitDepth and
// ErrUnsupportedWavFormat. Non-seekable readers are buffered in memory
// since the container has to be walked chunk by chunk.
//
// # Encoding
//
// Encode writes a finished audio.Buffer to an io.WriteSeeker:
//
//	f, _ := os.Create("mix.wav")
//	err := wav.Encode(f, buf, 16)
//
// StreamWriter covers outputs that cannot seek, such as stdout. Its header
// carries the 0xFFFFFFFF "unknown length" sizes.
package wav
