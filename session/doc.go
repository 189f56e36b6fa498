// SPDX-License-Identifier: EPL-2.0

// Package session drives continuous playback of a track queue.
//
// A Session fetches, decodes and analyzes upcoming tracks in the background,
// asks the transition planner for an overlap once playback nears the end of
// the current track and renders the crossfade as the consumer pulls samples.
// Sessions are independent: run one per output stream.
//
//	s, err := session.New(session.DefaultConfig(), session.Options{
//		Fetcher:    session.FileFetcher{Root: "music"},
//		Decoder:    decode.NewAdapter(decode.DefaultConfig(), logger),
//		Analyzer:   beat.NewEstimator(beat.DefaultConfig()),
//		Transition: transition.DefaultConfig(),
//		Logger:     logger,
//	})
//	...
//	s.Enqueue("a.mp3")
//	s.Enqueue("b.ogg")
//	if err := s.Start(ctx); err != nil {
//		...
//	}
//	for {
//		frame, err := s.ReadFrame()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		...
//	}
//
// Events about playback go to the EventSink given in Options.
package session
