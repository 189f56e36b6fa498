// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) through
// github.com/go-audio/aiff.
//
//	src, err := aiff.Decoder{}.Decode(file)
//
// Uncompressed PCM at 8, 16, 24 and 32 bit is supported with any channel
// count and sample rate. Samples come out as float32 in [-1.0, 1.0].
//
// The go-audio decoder needs to seek, so readers that cannot are read into
// memory first.
package aiff
