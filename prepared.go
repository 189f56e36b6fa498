// SPDX-License-Identifier: EPL-2.0

package beatmix

import (
	"context"
	"sync"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/decode"
	"github.com/ik5/beatmix/session"
)

// dataKey identifies encoded track data by its backing array.
type dataKey struct {
	p *byte
	n int
}

func keyOf(data []byte) (dataKey, bool) {
	if len(data) == 0 {
		return dataKey{}, false
	}
	return dataKey{p: &data[0], n: len(data)}, true
}

// prepared hands a session the buffers and grids computed while sorting, so
// a track is decoded once. Each entry is served once and then released;
// anything else goes to the wrapped decoder and analyzer.
type prepared struct {
	decoder  session.Decoder
	analyzer session.Analyzer

	mu       sync.Mutex
	buffers  map[dataKey]*audio.Buffer
	analyses map[*audio.Buffer]beat.Analysis
}

func newPrepared(decoder session.Decoder, analyzer session.Analyzer) *prepared {
	return &prepared{
		decoder:  decoder,
		analyzer: analyzer,
		buffers:  make(map[dataKey]*audio.Buffer),
		analyses: make(map[*audio.Buffer]beat.Analysis),
	}
}

func (p *prepared) add(data []byte, buf *audio.Buffer, a beat.Analysis) {
	key, ok := keyOf(data)
	if !ok || buf == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[key] = buf
	p.analyses[buf] = a
}

func (p *prepared) Decode(ctx context.Context, data []byte, hint string) (*audio.Buffer, error) {
	if key, ok := keyOf(data); ok {
		p.mu.Lock()
		buf, hit := p.buffers[key]
		delete(p.buffers, key)
		p.mu.Unlock()

		if hit {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return buf, nil
		}
	}
	return p.decoder.Decode(ctx, data, hint)
}

func (p *prepared) Config() decode.Config { return p.decoder.Config() }

func (p *prepared) Analyze(buf *audio.Buffer) beat.Analysis {
	p.mu.Lock()
	a, hit := p.analyses[buf]
	delete(p.analyses, buf)
	p.mu.Unlock()

	if hit {
		return a
	}
	return p.analyzer.Analyze(buf)
}
