// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 through github.com/hajimehoshi/go-mp3.
//
//	src, err := mp3.Decoder{}.Decode(file)
//
// go-mp3 always emits interleaved 16-bit stereo, mono files included, so
// the Source reports two channels. Byte reads that split a frame are carried
// over to the next call; ReadSamples only returns whole frames.
package mp3
