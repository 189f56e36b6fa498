// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Media is the compressed audio of one track.
type Media struct {
	Data []byte
	// Format is a hint such as "mp3" or "wav". Content sniffing wins when
	// the two disagree.
	Format string
	// Duration is the duration advertised by the source, 0 when unknown.
	Duration time.Duration
}

// Fetcher supplies track audio by id.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (Media, error)
}

type FetcherFunc func(ctx context.Context, id string) (Media, error)

func (f FetcherFunc) Fetch(ctx context.Context, id string) (Media, error) { return f(ctx, id) }

// MemoryFetcher serves media registered with Add.
type MemoryFetcher struct {
	mu     sync.RWMutex
	tracks map[string]Media
}

func NewMemoryFetcher() *MemoryFetcher {
	return &MemoryFetcher{tracks: make(map[string]Media)}
}

func (m *MemoryFetcher) Add(id string, media Media) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[id] = media
}

func (m *MemoryFetcher) Fetch(ctx context.Context, id string) (Media, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	media, ok := m.tracks[id]
	if !ok {
		return Media{}, fmt.Errorf("fetch %q: %w", id, ErrTrackNotFound)
	}
	return media, nil
}

// FileFetcher treats ids as file paths, relative to Root when it is set.
// The format hint is the file extension.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(ctx context.Context, id string) (Media, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, err
	}

	p := id
	if f.Root != "" {
		// Keep ids from escaping Root
		p = filepath.Join(f.Root, filepath.FromSlash(path.Clean("/"+id)))
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return Media{}, fmt.Errorf("fetch %q: %w", id, err)
	}

	return Media{
		Data:   data,
		Format: strings.TrimPrefix(filepath.Ext(p), "."),
	}, nil
}
