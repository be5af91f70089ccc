//go:build !((linux && cgo) || windows || darwin)

package audio

import "github.com/desertthunder/ymx/internal/shared"

// Available indicates whether audio playback is supported in this build.
const Available = false

// NewSpeakerFactory returns a factory that always fails: this build has no audio output.
func NewSpeakerFactory(volume, speed float64) SinkFactory {
	return func() (Sink, error) {
		return nil, shared.ErrAudioUnavailable
	}
}
