// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/formats/aiff"
	"github.com/ik5/beatmix/formats/mp3"
	"github.com/ik5/beatmix/formats/vorbis"
	"github.com/ik5/beatmix/formats/wav"
)

// Adapter turns compressed bytes into canonical PCM.
//
// It is safe for concurrent use; every Decode builds its own pipeline.
type Adapter struct {
	cfg      Config
	registry *audio.Registry
	logger   zerolog.Logger
}

// NewAdapter registers the built-in codecs. Callers may add more through
// Registry.
func NewAdapter(cfg Config, logger zerolog.Logger) *Adapter {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{}, "vorbis", "oga")
	reg.Register("aiff", aiff.Decoder{}, "aif", "aifc")

	return &Adapter{
		cfg:      cfg,
		registry: reg,
		logger:   logger.With().Str("component", "decode").Logger(),
	}
}

func (a *Adapter) Registry() *audio.Registry { return a.registry }

func (a *Adapter) Config() Config { return a.cfg }

// Decode converts data to the configured rate and channel count, then
// normalizes loudness when enabled. hint may be a format key, a file
// extension or empty; recognizable content overrides it.
//
// Any failure returns a *DecodeError and no buffer.
func (a *Adapter) Decode(ctx context.Context, data []byte, hint string) (buf *audio.Buffer, err error) {
	format, dec, err := a.resolve(data, hint)
	if err != nil {
		return nil, &DecodeError{Format: hint, Err: err}
	}

	defer func() {
		// Codec libraries are not hardened against every corrupt input
		if r := recover(); r != nil {
			buf = nil
			err = &DecodeError{Format: format, Err: fmt.Errorf("%w: %v", ErrCodecPanic, r)}
		}
	}()

	started := time.Now()

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	defer src.Close()

	buf, err = audio.Convert(ctx, src, a.cfg.SampleRate, a.cfg.Channels, a.cfg.BufferSize)
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	if buf.Frames() == 0 {
		return nil, &DecodeError{Format: format, Err: ErrEmptyAudio}
	}

	if a.cfg.NormalizeDBFS != 0 {
		buf = audio.Normalize(buf, a.cfg.NormalizeDBFS)
	}

	a.logger.Debug().
		Str("format", format).
		Int("source_rate", src.SampleRate()).
		Int("source_channels", src.Channels()).
		Dur("duration", buf.Duration()).
		Dur("took", time.Since(started)).
		Msg("decoded track")

	return buf, nil
}

func (a *Adapter) resolve(data []byte, hint string) (string, audio.Decoder, error) {
	if len(data) == 0 {
		return "", nil, ErrEmptyAudio
	}

	if sniffed := Sniff(data); sniffed != "" {
		if dec, ok := a.registry.Get(sniffed); ok {
			return sniffed, dec, nil
		}
	}

	if dec, ok := a.registry.Get(hint); ok && hint != "" {
		return hint, dec, nil
	}

	return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, hint)
}

// IsDecodeError reports whether err carries a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
