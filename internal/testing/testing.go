// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/ymx/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to [http.RoundTripper]
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// FlakyRoundTripper fails the first Failures requests with a transport error, then returns Body with status 200.
type FlakyRoundTripper struct {
	Failures int
	Body     string

	mu    sync.Mutex
	calls int
}

func (f *FlakyRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.Failures {
		return nil, errors.New("connection reset by peer")
	}
	return TextResponse(http.StatusOK, f.Body), nil
}

// Calls returns the number of requests seen.
func (f *FlakyRoundTripper) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// TextResponse builds a response with the given status and body.
func TextResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// StubResolver resolves tracks from a function and records every call.
type StubResolver struct {
	Fn func(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error)

	mu    sync.Mutex
	calls []models.TrackID
}

func (s *StubResolver) Resolve(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()
	if s.Fn == nil {
		return &models.TrackAudioBlob{TrackID: id, Data: []byte(id.String())}, nil
	}
	return s.Fn(ctx, id)
}

// Calls returns the ids passed to Resolve, in order.
func (s *StubResolver) Calls() []models.TrackID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TrackID(nil), s.calls...)
}

// MakeTracks builds n music tracks with ids 1..n.
func MakeTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := models.TrackID(i + 1)
		tracks[i] = models.Track{
			ID:      id,
			Title:   "Track " + id.String(),
			Albums:  []models.AlbumRef{{ID: models.FlexID(100 + i), Category: models.CategoryMusic}},
			Artists: []models.ArtistRef{{ID: 1, Name: "Artist"}},
		}
	}
	return tracks
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// FakeSink is an in-memory audio sink. Enqueued audio stays queued until [FakeSink.Finish] is called.
type FakeSink struct {
	mu sync.Mutex

	Queue      [][]byte
	EnqueueErr error
	Stopped    bool

	paused bool
	volume float64
	speed  float64
}

// NewFakeSink creates a fake sink with unit volume and speed.
func NewFakeSink() *FakeSink {
	return &FakeSink{volume: 1, speed: 1}
}

func (f *FakeSink) Enqueue(r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EnqueueErr != nil {
		return f.EnqueueErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.Queue = append(f.Queue, data)
	return nil
}

// Finish drops the head of the queue, as if it had played to the end.
func (f *FakeSink) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Queue) > 0 {
		f.Queue = f.Queue[1:]
	}
}

func (f *FakeSink) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queue) == 0
}

func (f *FakeSink) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *FakeSink) Play() {
	f.mu.Lock()
	f.paused = false
	f.mu.Unlock()
}

func (f *FakeSink) Pause() {
	f.mu.Lock()
	f.paused = true
	f.mu.Unlock()
}

func (f *FakeSink) Stop() {
	f.mu.Lock()
	f.Stopped = true
	f.Queue = nil
	f.mu.Unlock()
}

func (f *FakeSink) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *FakeSink) SetVolume(v float64) {
	f.mu.Lock()
	f.volume = v
	f.mu.Unlock()
}

func (f *FakeSink) Speed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speed
}

func (f *FakeSink) SetSpeed(v float64) {
	f.mu.Lock()
	f.speed = v
	f.mu.Unlock()
}

// FakeSinks records every sink built by its Factory.
type FakeSinks struct {
	mu    sync.Mutex
	Built []*FakeSink
	Err   error
}

// Factory builds a new [FakeSink], or fails with Err.
func (s *FakeSinks) Factory() (*FakeSink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sink := NewFakeSink()
	s.Built = append(s.Built, sink)
	return sink, nil
}

// Last returns the most recently built sink.
func (s *FakeSinks) Last() *FakeSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Built) == 0 {
		return nil
	}
	return s.Built[len(s.Built)-1]
}
