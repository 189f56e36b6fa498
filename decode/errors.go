// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyAudio        = errors.New("decoded audio is empty")
	ErrCodecPanic        = errors.New("codec panicked")
)

// DecodeError reports a track that could not be turned into PCM. Format is
// the resolved format key, or the raw hint when resolution failed.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
