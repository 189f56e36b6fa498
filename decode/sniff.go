// SPDX-License-Identifier: EPL-2.0

package decode

import "bytes"

// Sniff guesses a format key from the leading bytes, or returns "".
func Sniff(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return "ogg"
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return "aiff"
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return "mp3"
	case len(data) >= 2 && isLayer3Sync(data[0], data[1]):
		return "mp3"
	}
	return ""
}

// isLayer3Sync matches an 11 bit frame sync followed by layer bits 01.
func isLayer3Sync(b0, b1 byte) bool {
	return b0 == 0xFF && b1&0xE0 == 0xE0 && (b1>>1)&0x03 == 0x01
}
