package audio

import (
	"fmt"
	"io"
	"sync"
)

// Sink plays queued encoded audio.
type Sink interface {
	// Enqueue decodes r and appends it to the play queue.
	Enqueue(r io.Reader) error
	// Empty reports whether nothing is playing or queued.
	Empty() bool
	Paused() bool
	Play()
	Pause()
	// Stop halts output and releases queued audio. A stopped sink is not reused.
	Stop()
	Volume() float64
	SetVolume(v float64)
	Speed() float64
	SetSpeed(v float64)
}

// SinkFactory builds a fresh sink.
type SinkFactory func() (Sink, error)

// Channel is a resettable audio output.
type Channel struct {
	mu      sync.Mutex
	factory SinkFactory
	sink    Sink
	volume  float64
	speed   float64
}

// NewChannel creates a channel with an initial sink from factory.
func NewChannel(factory SinkFactory) (*Channel, error) {
	sink, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create audio sink: %w", err)
	}
	return &Channel{factory: factory, sink: sink, volume: sink.Volume(), speed: sink.Speed()}, nil
}

// Reset stops the current sink and replaces it with a new one carrying the same volume and speed.
func (c *Channel) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sink.Stop()

	sink, err := c.factory()
	if err != nil {
		return fmt.Errorf("failed to replace audio sink: %w", err)
	}
	sink.SetVolume(c.volume)
	sink.SetSpeed(c.speed)
	c.sink = sink
	return nil
}

func (c *Channel) current() Sink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink
}

func (c *Channel) Enqueue(r io.Reader) error { return c.current().Enqueue(r) }
func (c *Channel) Empty() bool               { return c.current().Empty() }
func (c *Channel) Paused() bool              { return c.current().Paused() }
func (c *Channel) Play()                     { c.current().Play() }
func (c *Channel) Pause()                    { c.current().Pause() }
func (c *Channel) Stop()                     { c.current().Stop() }

func (c *Channel) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *Channel) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = v
	c.sink.SetVolume(v)
}

func (c *Channel) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

func (c *Channel) SetSpeed(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = v
	c.sink.SetSpeed(v)
}
