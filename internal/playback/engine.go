package playback

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ymx/internal/audio"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/services"
	"github.com/desertthunder/ymx/internal/shared"
	"github.com/samber/lo"
)

// upcomingLen is how many queued tracks a [Status] lists.
const upcomingLen = 3

// Output is a resettable audio channel. [audio.Channel] implements it.
type Output interface {
	audio.Sink
	Reset() error
}

// Recorder persists plays. Failures are logged and otherwise ignored.
type Recorder interface {
	RecordPlay(sessionID string, track models.Track, at time.Time) error
}

// EngineOpts configures an [Engine].
type EngineOpts struct {
	Resolver  services.LinkResolver
	Output    Output
	Updates   chan<- Update
	Recorder  Recorder
	Logger    *log.Logger
	SessionID string
	Rand      *rand.Rand
	Now       func() time.Time
}

// Engine owns the track list, the play queue, the prefetch handle and the audio output.
//
// The queue is a permutation of track indices and position is the next queue
// slot to feed into the output; position == len(queue) means the queue is
// exhausted. An Engine is driven from a single goroutine.
type Engine struct {
	tracks   []models.Track
	queue    []int
	position int
	prefetch *Prefetch

	nowPlaying *models.Track
	finished   bool

	resolver  services.LinkResolver
	output    Output
	updates   chan<- Update
	recorder  Recorder
	logger    *log.Logger
	sessionID string
	rng       *rand.Rand
	now       func() time.Time
}

// NewEngine creates an engine with an empty track list.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("%w: resolver is required", shared.ErrInvalidArgument)
	}
	if opts.Output == nil {
		return nil, fmt.Errorf("%w: audio output is required", shared.ErrInvalidArgument)
	}

	e := &Engine{
		resolver:  opts.Resolver,
		output:    opts.Output,
		updates:   opts.Updates,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		sessionID: opts.SessionID,
		rng:       opts.Rand,
		now:       opts.Now,
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(nil)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Tracks returns the loaded track list.
func (e *Engine) Tracks() []models.Track { return e.tracks }

// Queue returns a copy of the play order.
func (e *Engine) Queue() []int { return slices.Clone(e.queue) }

// Position returns the next queue slot to be played.
func (e *Engine) Position() int { return e.position }

// Prefetching returns the in-flight prefetch handle, if any.
func (e *Engine) Prefetching() *Prefetch { return e.prefetch }

// TrackAtOffset returns tracks[queue[position+n]].
func (e *Engine) TrackAtOffset(n int) (models.Track, bool) {
	i := e.position + n
	if i < 0 || i >= len(e.queue) {
		return models.Track{}, false
	}
	return e.tracks[e.queue[i]], true
}

// CurrentTrack returns the track at the cursor: the next one to be fed into the output.
func (e *Engine) CurrentTrack() (models.Track, bool) {
	return e.TrackAtOffset(0)
}

// Advance moves the cursor forward by one.
func (e *Engine) Advance() {
	e.position++
}

// StepBack moves the cursor two slots back so the previous track replays.
//
// The output is reset and any prefetch is dropped. It does nothing when
// fewer than two tracks have been started.
func (e *Engine) StepBack() error {
	if e.position < 2 {
		return nil
	}
	e.position -= 2
	e.finished = false
	e.dropPrefetch()
	return e.SwapSink()
}

// SetQueue replaces the play order, rewinds the cursor and drops any prefetch.
func (e *Engine) SetQueue(perm []int) error {
	if !isPermutation(perm, len(e.tracks)) {
		return fmt.Errorf("%w: %d entries for %d tracks", shared.ErrInvalidQueue, len(perm), len(e.tracks))
	}
	e.queue = slices.Clone(perm)
	e.position = 0
	e.finished = false
	e.dropPrefetch()
	return nil
}

// Load replaces the track list and plays it in order.
func (e *Engine) Load(tracks []models.Track) error {
	e.tracks = slices.Clone(tracks)
	return e.SetQueue(lo.Range(len(tracks)))
}

// Shuffle randomly permutes the current queue and restarts it.
func (e *Engine) Shuffle() error {
	perm := slices.Clone(e.queue)
	e.rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	if err := e.SetQueue(perm); err != nil {
		return err
	}
	e.send(queueShuffledUpdate(e.Status()))
	return nil
}

// SwapSink discards the current output and continues on a fresh one with the same volume and speed.
func (e *Engine) SwapSink() error {
	if err := e.output.Reset(); err != nil {
		return err
	}
	e.nowPlaying = nil
	return nil
}

// Skip abandons the playing track; the next tick starts the track at the cursor.
func (e *Engine) Skip() error {
	if err := e.SwapSink(); err != nil {
		return err
	}
	e.send(sinkResetUpdate(e.Status(), "Skipped"))
	return nil
}

// Previous replays the track before the playing one.
func (e *Engine) Previous() error {
	if err := e.StepBack(); err != nil {
		return err
	}
	e.send(sinkResetUpdate(e.Status(), "Back"))
	return nil
}

// AdjustVolume changes the volume by delta. Values are not clamped.
func (e *Engine) AdjustVolume(delta float64) {
	e.output.SetVolume(e.output.Volume() + delta)
	e.send(volumeUpdate(e.Status()))
}

// SetVolume sets an absolute volume.
func (e *Engine) SetVolume(v float64) {
	e.AdjustVolume(v - e.output.Volume())
}

// AdjustSpeed changes the playback speed by delta. Values are not clamped.
func (e *Engine) AdjustSpeed(delta float64) {
	e.output.SetSpeed(e.output.Speed() + delta)
	e.send(speedUpdate(e.Status()))
}

// SetSpeed sets an absolute playback speed.
func (e *Engine) SetSpeed(v float64) {
	e.AdjustSpeed(v - e.output.Speed())
}

// Volume returns the output volume.
func (e *Engine) Volume() float64 { return e.output.Volume() }

// Speed returns the output speed.
func (e *Engine) Speed() float64 { return e.output.Speed() }

// TogglePlayback pauses a playing output and resumes a paused one.
func (e *Engine) TogglePlayback() {
	if e.output.Paused() {
		e.output.Play()
	} else {
		e.output.Pause()
	}
	e.send(toggledUpdate(e.Status()))
}

// Stop halts the output.
func (e *Engine) Stop() {
	e.output.Stop()
	e.dropPrefetch()
	e.send(stoppedUpdate(e.Status()))
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() Status {
	st := Status{
		Position: e.position,
		Total:    len(e.queue),
		Volume:   e.output.Volume(),
		Speed:    e.output.Speed(),
		Paused:   e.output.Paused(),
	}
	if e.nowPlaying != nil {
		t := *e.nowPlaying
		st.NowPlaying = &t
	}
	for i := range upcomingLen {
		t, ok := e.TrackAtOffset(i)
		if !ok {
			break
		}
		st.Upcoming = append(st.Upcoming, t)
	}
	return st
}

// Report emits a [StatusReport] update.
func (e *Engine) Report() {
	e.send(statusReportUpdate(e.Status()))
}

// Tick runs one step of the lookahead algorithm.
//
// With an empty output it feeds the track at the cursor, taken from the
// prefetch handle when one exists (blocking until it completes) or resolved
// synchronously, and advances. Otherwise it starts a prefetch of the track at
// the cursor if none is in flight.
//
// A failed prefetch is dropped and the track is resolved directly on the next
// tick. A failed synchronous resolution skips the track. Tick returns an error
// only when ctx is done.
func (e *Engine) Tick(ctx context.Context) error {
	if e.output.Empty() {
		return e.feed(ctx)
	}

	if e.prefetch == nil {
		if next, ok := e.CurrentTrack(); ok {
			e.prefetch = startPrefetch(ctx, e.resolver, next.ID)
			e.logger.Debug("prefetch started", "track", next.ID)
			e.send(prefetchStartedUpdate(e.Status(), next))
		}
	}
	return nil
}

func (e *Engine) feed(ctx context.Context) error {
	track, ok := e.CurrentTrack()
	if !ok {
		if !e.finished && len(e.queue) > 0 {
			e.finished = true
			e.nowPlaying = nil
			e.logger.Info("queue finished", "tracks", len(e.queue))
			e.send(queueFinishedUpdate(e.Status()))
		}
		return nil
	}

	var (
		blob *models.TrackAudioBlob
		err  error
	)

	if h := e.prefetch; h != nil && h.TrackID() == track.ID {
		e.prefetch = nil
		blob, err = h.Wait(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			e.logger.Warn("prefetch unavailable", "track", track.ID, "error", err)
			e.send(prefetchFailedUpdate(e.Status(), track, err))
			return nil
		}
	} else {
		e.dropPrefetch()
		blob, err = e.resolver.Resolve(ctx, track.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			e.skipTrack(track, err)
			return nil
		}
	}

	if err := e.output.Enqueue(blob.Reader()); err != nil {
		e.skipTrack(track, err)
		return nil
	}

	e.nowPlaying = &track
	e.Advance()
	e.record(track)
	e.logger.Info("now playing", "track", track.ID, "title", track.String())
	e.send(nowPlayingUpdate(e.Status(), track))
	return nil
}

func (e *Engine) skipTrack(track models.Track, err error) {
	e.logger.Error("skipping track", "track", track.ID, "error", err)
	e.Advance()
	e.send(trackSkippedUpdate(e.Status(), track, err))
}

func (e *Engine) record(track models.Track) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordPlay(e.sessionID, track, e.now()); err != nil {
		e.logger.Warn("failed to record play", "track", track.ID, "error", err)
	}
}

func (e *Engine) dropPrefetch() {
	if e.prefetch != nil {
		e.logger.Debug("prefetch dropped", "track", e.prefetch.TrackID())
		e.prefetch = nil
	}
}

func (e *Engine) send(u Update) {
	sendUpdate(e.updates, u)
}

func isPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

var _ Output = (*audio.Channel)(nil)
