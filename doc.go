// SPDX-License-Identifier: EPL-2.0

// Package beatmix mixes a queue of audio tracks into one continuous stream,
// aligning crossfades on the beat when both tracks have a usable tempo.
//
// The work is split across packages:
//   - decode turns compressed bytes (WAV, MP3, Ogg Vorbis, AIFF) into PCM at
//     the session rate, optionally normalized to a loudness target
//   - beat estimates a beat grid for the head and tail of a track
//   - transition plans where and how long each crossfade is
//   - crossfade renders gain curves and ramps
//   - session drives playback: queue, prefetch, planning and rendering
//   - telemetry mirrors session events to logs, Prometheus and Redis
//
// # Quick Start
//
// Mix renders a list of in-memory tracks offline:
//
//	tracks := []beatmix.Track{
//		{ID: "intro", Data: introWAV, Format: "wav"},
//		{ID: "main", Data: mainMP3, Format: "mp3"},
//	}
//	opts := beatmix.DefaultOptions()
//	opts.SortByTempo = true
//	buf, err := beatmix.Mix(ctx, tracks, opts)
//
// For live playback create a session.Session directly and pull frames with
// ReadFrame or ReadSamples while issuing Enqueue, Skip or Pause.
package beatmix
