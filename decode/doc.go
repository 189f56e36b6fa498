// SPDX-License-Identifier: EPL-2.0

// Package decode turns compressed audio into the canonical PCM format used
// by the rest of beatmix.
//
// The Adapter picks a codec from the content (magic bytes) or the format
// hint, decodes, resamples, converts the channel layout and optionally
// normalizes loudness:
//
//	a := decode.NewAdapter(decode.DefaultConfig(), logger)
//	buf, err := a.Decode(ctx, data, "mp3")
//	var de *decode.DecodeError
//	if errors.As(err, &de) {
//	    // skip the track
//	}
//
// A failed decode never returns a partial buffer.
package decode
