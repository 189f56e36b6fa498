// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/beat"
)

// entry is one queued track and its background preparation. The prep
// goroutine writes buf and err before closing decoded, and analysis before
// closing analyzed; readers only touch them after seeing the close.
type entry struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	launched bool
	decoded  chan struct{}
	analyzed chan struct{}

	buf      *audio.Buffer
	err      error
	analysis beat.Analysis

	reportedUnreliable bool
}

func newEntry(id string) *entry {
	return &entry{
		id:       id,
		decoded:  make(chan struct{}),
		analyzed: make(chan struct{}),
		cancel:   func() {},
	}
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// launch starts preparing e under the session context. Caller holds s.mu.
func (s *Session) launch(e *entry) {
	if e.launched {
		return
	}
	e.launched = true
	e.ctx, e.cancel = context.WithCancel(s.ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.prepare(e)
	}()
}

func (s *Session) prepare(e *entry) {
	defer close(e.analyzed)

	buf, err := s.decodeEntry(e)
	e.buf, e.err = buf, err
	close(e.decoded)

	if err != nil || e.ctx.Err() != nil {
		return
	}
	e.analysis = s.analyzer.Analyze(buf)
}

func (s *Session) decodeEntry(e *entry) (*audio.Buffer, error) {
	media, err := s.fetcher.Fetch(e.ctx, e.id)
	if err != nil {
		return nil, err
	}

	buf, err := s.decoder.Decode(e.ctx, media.Data, media.Format)
	if err != nil {
		return nil, err
	}
	if buf.SampleRate != s.rate || buf.Channels != s.channels {
		return nil, fmt.Errorf("track %q is %d Hz/%d ch, session runs %d Hz/%d ch: %w",
			e.id, buf.SampleRate, buf.Channels, s.rate, s.channels, audio.ErrBufferMismatch)
	}

	s.logger.Debug().
		Str("track", e.id).
		Dur("duration", buf.Duration()).
		Dur("advertised", media.Duration).
		Msg("track decoded")

	return buf, nil
}

// ensurePrep launches preparation for every entry inside the prefetch
// window. Caller holds s.mu.
func (s *Session) ensurePrep() {
	if !s.running {
		return
	}

	window := s.cfg.Prefetch
	if s.current == nil {
		// The head is about to become current
		window++
	}
	for _, e := range s.queue[:min(window, len(s.queue))] {
		s.launch(e)
	}
}
