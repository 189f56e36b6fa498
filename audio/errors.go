// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrInvalidChannels   = errors.New("channel count must be positive")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrBufferMismatch    = errors.New("buffers differ in sample rate or channel count")
)
