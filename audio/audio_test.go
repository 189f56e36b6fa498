// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"
)

type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return nil, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	dec := &mockDecoder{name: "wav"}
	reg.Register("wav", dec)

	got, ok := reg.Get("wav")
	if !ok {
		t.Fatal("Get(wav) ok = false, want true")
	}
	if got != dec {
		t.Errorf("Get(wav) returned a different decoder")
	}
}

func TestRegistry_KeyNormalization(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	dec := &mockDecoder{name: "ogg"}
	reg.Register("OGG", dec, "vorbis")

	tests := []struct {
		key  string
		want bool
	}{
		{"ogg", true},
		{"Ogg", true},
		{".ogg", true},
		{" .OGG ", true},
		{"vorbis", true},
		{"VORBIS", true},
		{"mp3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			_, ok := reg.Get(tt.key)
			if ok != tt.want {
				t.Errorf("Get(%q) ok = %v, want %v", tt.key, ok, tt.want)
			}
		})
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	first := &mockDecoder{name: "first"}
	second := &mockDecoder{name: "second"}

	reg.Register("wav", first)
	reg.Register("wav", second)

	got, _ := reg.Get("wav")
	if got.(*mockDecoder).name != "second" {
		t.Errorf("Get(wav) = %q, want second", got.(*mockDecoder).name)
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("wav", &mockDecoder{})
	reg.Register("aiff", &mockDecoder{}, "aif")
	reg.Register("mp3", &mockDecoder{})

	want := []string{"aif", "aiff", "mp3", "wav"}
	if got := reg.Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register(fmt.Sprintf("fmt%d", i), &mockDecoder{})
		}()
		go func() {
			defer wg.Done()
			reg.Get(fmt.Sprintf("fmt%d", i))
		}()
	}
	wg.Wait()

	if got := len(reg.Formats()); got != 50 {
		t.Errorf("len(Formats()) = %d, want 50", got)
	}
}

func BenchmarkRegistry_Get(b *testing.B) {
	reg := NewRegistry()
	reg.Register("wav", &mockDecoder{})

	for b.Loop() {
		reg.Get("WAV")
	}
}
