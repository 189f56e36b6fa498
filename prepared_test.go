// SPDX-License-Identifier: EPL-2.0

package beatmix

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/beat"
	"github.com/ik5/beatmix/decode"
	"github.com/ik5/beatmix/formats/wav"
	"github.com/ik5/beatmix/internal/audiotest"
)

type countingDecoder struct {
	inner *decode.Adapter
	calls atomic.Int32
}

func (c *countingDecoder) Decode(ctx context.Context, data []byte, hint string) (*audio.Buffer, error) {
	c.calls.Add(1)
	return c.inner.Decode(ctx, data, hint)
}

func (c *countingDecoder) Config() decode.Config { return c.inner.Config() }

type countingAnalyzer struct {
	calls atomic.Int32
}

func (c *countingAnalyzer) Analyze(*audio.Buffer) beat.Analysis {
	c.calls.Add(1)
	return beat.Analysis{}
}

func TestPreparedServesSortedTracksOnce(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Decode.SampleRate = 8000
	opts.Decode.Channels = 1

	var tracks []Track
	for i, bpm := range []float64{128, 96} {
		buf, err := audio.NewBuffer(audiotest.Clicks(8000, 1, 10*time.Second, bpm, 0), 8000, 1)
		if err != nil {
			t.Fatal(err)
		}
		data, err := wav.EncodeBytes(buf)
		if err != nil {
			t.Fatal(err)
		}
		tracks = append(tracks, Track{ID: string(rune('a' + i)), Data: data, Format: "wav"})
	}

	infos, bufs, err := analyzeAll(context.Background(), tracks, opts, true)
	if err != nil {
		t.Fatalf("analyzeAll: %v", err)
	}

	dec := &countingDecoder{inner: decode.NewAdapter(opts.Decode, opts.Logger)}
	an := &countingAnalyzer{}
	p := newPrepared(dec, an)
	for i, tr := range tracks {
		p.add(tr.Data, bufs[i], infos[i].Analysis)
	}

	ctx := context.Background()
	for i, tr := range tracks {
		buf, err := p.Decode(ctx, tr.Data, tr.Format)
		if err != nil {
			t.Fatalf("Decode(%s): %v", tr.ID, err)
		}
		if buf != bufs[i] {
			t.Errorf("Decode(%s) decoded again instead of reusing the sort pass", tr.ID)
		}
		if got := p.Analyze(buf); got.Head.BPM != infos[i].Head.BPM {
			t.Errorf("Analyze(%s) BPM = %v, want %v", tr.ID, got.Head.BPM, infos[i].Head.BPM)
		}
	}
	if dec.calls.Load() != 0 || an.calls.Load() != 0 {
		t.Errorf("wrapped decoder ran %d times, analyzer %d times", dec.calls.Load(), an.calls.Load())
	}

	// Entries are released after use
	if _, err := p.Decode(ctx, tracks[0].Data, tracks[0].Format); err != nil {
		t.Fatal(err)
	}
	if dec.calls.Load() != 1 {
		t.Errorf("second Decode did not reach the wrapped decoder")
	}
	if len(p.buffers) != 0 || len(p.analyses) != 0 {
		t.Errorf("%d buffers, %d analyses still held", len(p.buffers), len(p.analyses))
	}
}

func TestPreparedCanceled(t *testing.T) {
	t.Parallel()

	buf, _ := audio.NewBuffer(make([]float32, 8000), 8000, 1)
	data := []byte("x")
	p := newPrepared(&countingDecoder{}, &countingAnalyzer{})
	p.add(data, buf, beat.Analysis{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Decode(ctx, data, "wav"); err == nil {
		t.Error("Decode ignored a canceled context")
	}
}
