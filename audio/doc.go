// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives every other beatmix package
// builds on.
//
// This package contains:
//   - Source interface for pull-based sample streams
//   - Buffer, a fully decoded immutable block of interleaved samples
//   - Resampler for sample rate conversion
//   - ChannelMixer for channel count conversion
//   - Normalize for loudness matching
//   - Format registry for decoder registration
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders, converters and the mix session all implement Source, so they
// chain freely.
//
// # Canonical Format
//
// Convert runs a Source through the resampler and channel mixer and collects
// the result:
//
//	buf, err := audio.Convert(ctx, src, 44100, 2, 4096)
//
// Downstream stages only ever see Buffers in one format and never branch on
// rate or layout.
//
// # Buffers
//
// A Buffer is handed from stage to stage by pointer. Nothing mutates
// Samples after construction; Normalize returns a new Buffer.
//
//	b.Frames()            // samples per channel
//	b.Duration()          // playing time
//	b.Window(from, to)    // aliasing slice of frames [from, to)
//	b.Source()            // stream it again
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. Clamp enforces the range wherever gain
// is applied.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // use buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
