//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/desertthunder/ymx/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// Available indicates whether audio playback is supported in this build.
const Available = true

const (
	sampleRate = beep.SampleRate(44100)
	// resampleQuality matches the quality used for sample rate conversion.
	resampleQuality = 4
	// minRatio keeps the resampler ratio positive when speed is set to zero or below.
	minRatio = 0.05
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("%w: %v", shared.ErrAudioUnavailable, speakerErr)
	}
	return nil
}

// NewSpeakerFactory returns a [SinkFactory] producing sinks on the default output device.
func NewSpeakerFactory(volume, speed float64) SinkFactory {
	return func() (Sink, error) {
		if err := initSpeaker(); err != nil {
			return nil, err
		}
		return newSpeakerSink(volume, speed), nil
	}
}

// speakerSink mixes a queue of decoded tracks into the shared speaker.
//
// Pipeline: ctrl (pause) -> volume -> resampler (speed) -> queue.
type speakerSink struct {
	queue     *trackQueue
	resampler *beep.Resampler
	volume    *effects.Volume
	ctrl      *beep.Ctrl

	vol     float64
	spd     float64
	stopped bool
}

func newSpeakerSink(volume, speed float64) *speakerSink {
	q := &trackQueue{}
	s := &speakerSink{queue: q, vol: volume, spd: speed}
	s.resampler = beep.ResampleRatio(resampleQuality, ratioFor(speed), q)
	s.volume = &effects.Volume{Streamer: s.resampler, Base: 2}
	applyVolume(s.volume, volume)
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	speaker.Play(s.ctrl)
	return s
}

func ratioFor(speed float64) float64 {
	return math.Max(speed, minRatio)
}

func applyVolume(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}

func (s *speakerSink) Enqueue(r io.Reader) error {
	streamer, format, err := mp3.Decode(io.NopCloser(r))
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}

	var out beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, sampleRate, streamer)
	}

	speaker.Lock()
	defer speaker.Unlock()
	if s.stopped {
		streamer.Close()
		return fmt.Errorf("sink stopped")
	}
	s.queue.push(out, streamer)
	return nil
}

func (s *speakerSink) Empty() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.queue.len() == 0
}

func (s *speakerSink) Paused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.ctrl.Paused
}

func (s *speakerSink) Play() {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

func (s *speakerSink) Pause() {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *speakerSink) Stop() {
	speaker.Lock()
	defer speaker.Unlock()
	s.stopped = true
	s.ctrl.Streamer = nil
	s.queue.clear()
}

func (s *speakerSink) Volume() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return s.vol
}

func (s *speakerSink) SetVolume(v float64) {
	speaker.Lock()
	defer speaker.Unlock()
	s.vol = v
	applyVolume(s.volume, v)
}

func (s *speakerSink) Speed() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return s.spd
}

func (s *speakerSink) SetSpeed(v float64) {
	speaker.Lock()
	defer speaker.Unlock()
	s.spd = v
	s.resampler.SetRatio(ratioFor(v))
}

// trackQueue plays streamers back to back and emits silence when drained.
// Guarded by the speaker lock.
type trackQueue struct {
	streamers []beep.Streamer
	closers   []io.Closer
}

func (q *trackQueue) push(s beep.Streamer, c io.Closer) {
	q.streamers = append(q.streamers, s)
	q.closers = append(q.closers, c)
}

func (q *trackQueue) len() int { return len(q.streamers) }

func (q *trackQueue) pop() {
	q.closers[0].Close()
	q.streamers = q.streamers[1:]
	q.closers = q.closers[1:]
}

func (q *trackQueue) clear() {
	for _, c := range q.closers {
		c.Close()
	}
	q.streamers, q.closers = nil, nil
}

func (q *trackQueue) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(q.streamers) == 0 {
			for i := range samples[filled:] {
				samples[filled+i] = [2]float64{}
			}
			break
		}

		n, ok := q.streamers[0].Stream(samples[filled:])
		if !ok || n == 0 {
			q.pop()
		}
		filled += n
	}
	return len(samples), true
}

func (q *trackQueue) Err() error { return nil }
