// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/beatmix"
	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/crossfade"
	"github.com/ik5/beatmix/formats/wav"
	"github.com/ik5/beatmix/session"
	"github.com/ik5/beatmix/telemetry"
)

var (
	mixOutput    string
	mixSort      bool
	mixCurve     string
	mixCrossfade time.Duration
)

var mixCmd = &cobra.Command{
	Use:   "mix <files...>",
	Short: "Render an automix",
	Long:  "Mix the files in order, or sorted by tempo, into one 16-bit WAV. Use -o - to stream to stdout.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMix,
}

func init() {
	mixCmd.Flags().StringVarP(&mixOutput, "output", "o", "mix.wav", "output WAV file, - for stdout")
	mixCmd.Flags().BoolVar(&mixSort, "sort", false, "order tracks by ascending tempo")
	mixCmd.Flags().StringVar(&mixCurve, "curve", "", "crossfade curve: equal_power or linear")
	mixCmd.Flags().DurationVar(&mixCrossfade, "crossfade", 0, "maximum and fallback crossfade length")
}

func runMix(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options()
	opts.SortByTempo = mixSort
	if mixCurve != "" {
		kind, err := crossfade.ParseKind(mixCurve)
		if err != nil {
			return err
		}
		opts.Transition.Curve = kind
	}
	if mixCrossfade > 0 {
		opts.Transition.MaxCrossfade = mixCrossfade
		opts.Transition.FallbackCrossfade = mixCrossfade
	}

	sink, shutdown, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}
	defer shutdown()
	opts.Sink = sink

	tracks, err := readTracks(args)
	if err != nil {
		return err
	}

	started := time.Now()
	s, err := beatmix.NewSession(ctx, tracks, opts)
	if err != nil {
		return fmt.Errorf("start mix: %w", err)
	}
	defer s.Close()

	var frames int
	if mixOutput == "-" {
		frames, err = streamMix(ctx, s, cmd.OutOrStdout())
	} else {
		frames, err = writeMix(ctx, s, mixOutput)
	}
	if err != nil {
		return err
	}

	logger.Info().
		Str("output", mixOutput).
		Int("tracks", len(tracks)).
		Dur("duration", audio.DurationOf(frames, s.SampleRate())).
		Dur("took", time.Since(started)).
		Msg("mix written")
	return nil
}

// streamMix writes the mix to w as it renders.
func streamMix(ctx context.Context, s *session.Session, w io.Writer) (int, error) {
	sw, err := wav.NewStreamWriter(w, s.SampleRate(), s.Channels())
	if err != nil {
		return 0, err
	}

	buf := make([]float32, 4096*s.Channels())
	for {
		n, err := s.ReadSamples(buf)
		if n > 0 {
			if werr := sw.Write(buf[:n]); werr != nil {
				return sw.Frames(), werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sw.Frames(), fmt.Errorf("render mix: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return sw.Frames(), fmt.Errorf("render mix: %w", err)
	}
	return sw.Frames(), nil
}

// writeMix renders the whole mix, then writes it with exact WAV sizes.
func writeMix(ctx context.Context, s *session.Session, path string) (int, error) {
	buf, err := collect(ctx, s)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	if err := wav.Encode(f, buf, 16); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("encode mix: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close output: %w", err)
	}
	return buf.Frames(), nil
}

func collect(ctx context.Context, s *session.Session) (*audio.Buffer, error) {
	buf, err := audio.CollectContext(ctx, s, cfg.Decode.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("render mix: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render mix: %w", err)
	}
	return buf, nil
}

const eventBuffer = 256

func setupTelemetry(ctx context.Context) (session.EventSink, func(), error) {
	// Log lines are written off the render path
	logSink := telemetry.NewAsyncSink(telemetry.NewLogSink(logger), eventBuffer)
	sinks := telemetry.MultiSink{logSink}
	closers := []func(){func() {
		logSink.Close()
		if n := logSink.Dropped(); n > 0 {
			logger.Warn().Uint64("dropped", n).Msg("log events dropped")
		}
	}}

	if cfg.MetricsAddr != "" {
		metrics, stopServer, err := serveMetrics(cfg.MetricsAddr)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, metrics)
		closers = append(closers, stopServer)
	}

	if cfg.Redis.Enabled() {
		pub, err := telemetry.NewRedisPublisher(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, now playing will not be published")
		} else {
			sinks = append(sinks, pub)
			closers = append(closers, func() {
				if err := pub.Close(); err != nil {
					logger.Error().Err(err).Msg("close redis publisher")
				}
				if n := pub.Dropped(); n > 0 {
					logger.Warn().Uint64("dropped", n).Msg("redis events dropped")
				}
			})
		}
	}

	shutdown := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return sinks, shutdown, nil
}
