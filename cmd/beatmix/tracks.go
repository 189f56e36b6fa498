// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/beatmix"
)

// readTracks loads every file into memory. The path is the track id.
func readTracks(paths []string) ([]beatmix.Track, error) {
	tracks := make([]beatmix.Track, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read track: %w", err)
		}
		tracks = append(tracks, beatmix.Track{
			ID:     p,
			Data:   data,
			Format: strings.TrimPrefix(filepath.Ext(p), "."),
		})
	}
	return tracks, nil
}

func options() beatmix.Options {
	return beatmix.Options{
		Decode:     cfg.Decode,
		Beat:       cfg.Beat,
		Transition: cfg.Transition,
		Session:    cfg.Session,
		Logger:     logger,
	}
}
