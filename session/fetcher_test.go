// SPDX-License-Identifier: EPL-2.0

package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/beatmix/session"
)

func TestMemoryFetcher(t *testing.T) {
	t.Parallel()

	f := session.NewMemoryFetcher()
	f.Add("x", session.Media{Data: []byte{1, 2}, Format: "wav"})

	m, err := f.Fetch(context.Background(), "x")
	if err != nil || len(m.Data) != 2 || m.Format != "wav" {
		t.Fatalf("Fetch(x) = %+v, %v", m, err)
	}
	if _, err := f.Fetch(context.Background(), "y"); !errors.Is(err, session.ErrTrackNotFound) {
		t.Errorf("Fetch(y) = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch with canceled ctx = %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "song.MP3"), []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := session.FileFetcher{Root: root}
	m, err := f.Fetch(context.Background(), "song.MP3")
	if err != nil {
		t.Fatal(err)
	}
	if string(m.Data) != "data" || m.Format != "MP3" {
		t.Errorf("Fetch = %+v", m)
	}

	if _, err := f.Fetch(context.Background(), "../song.MP3"); err != nil {
		t.Errorf("ids must stay inside root, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), "missing.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Fetch(missing) = %v", err)
	}
}
