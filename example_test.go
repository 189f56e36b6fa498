// SPDX-License-Identifier: EPL-2.0

package beatmix_test

import (
	"context"
	"fmt"
	"time"

	"github.com/ik5/beatmix"
	"github.com/ik5/beatmix/audio"
	"github.com/ik5/beatmix/formats/wav"
	"github.com/ik5/beatmix/internal/audiotest"
)

// ExampleMix mixes two five second tones. Neither has a tempo, so they are
// joined with the fallback crossfade.
func ExampleMix() {
	encode := func(freq float64) []byte {
		buf, _ := audio.NewBuffer(audiotest.Tone(8000, 1, 5*time.Second, freq, 0.5), 8000, 1)
		data, _ := wav.EncodeBytes(buf)
		return data
	}

	opts := beatmix.DefaultOptions()
	opts.Decode.SampleRate = 8000
	opts.Decode.Channels = 1

	mix, err := beatmix.Mix(context.Background(), []beatmix.Track{
		{ID: "low", Data: encode(220), Format: "wav"},
		{ID: "high", Data: encode(440), Format: "wav"},
	}, opts)
	if err != nil {
		fmt.Printf("mix error: %v\n", err)
		return
	}

	fmt.Printf("%v at %d Hz\n", mix.Duration(), mix.SampleRate)
	// Output: 6s at 8000 Hz
}
