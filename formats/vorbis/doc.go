// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
//
//	src, err := vorbis.Decoder{}.Decode(file)
//
// The library already produces float32 samples in [-1.0, 1.0], so they are
// decoded straight into the caller's buffer.
package vorbis
