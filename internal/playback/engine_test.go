package playback

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ymx/internal/audio"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/shared"
	tu "github.com/desertthunder/ymx/internal/testing"
)

type recordedPlay struct {
	session string
	track   models.TrackID
}

type fakeRecorder struct {
	mu    sync.Mutex
	plays []recordedPlay
	err   error
}

func (r *fakeRecorder) RecordPlay(sessionID string, track models.Track, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, recordedPlay{sessionID, track.ID})
	return r.err
}

type fixture struct {
	engine   *Engine
	sinks    *tu.FakeSinks
	resolver *tu.StubResolver
	updates  chan Update
	recorder *fakeRecorder
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	f := &fixture{
		sinks:    &tu.FakeSinks{},
		resolver: &tu.StubResolver{},
		updates:  make(chan Update, 256),
		recorder: &fakeRecorder{},
	}

	ch, err := audio.NewChannel(func() (audio.Sink, error) {
		sink, err := f.sinks.Factory()
		if err != nil {
			return nil, err
		}
		return sink, nil
	})
	if err != nil {
		t.Fatalf("failed to create channel: %v", err)
	}

	f.engine, err = NewEngine(EngineOpts{
		Resolver:  f.resolver,
		Output:    ch,
		Updates:   f.updates,
		Recorder:  f.recorder,
		Logger:    shared.NewLogger(io.Discard),
		SessionID: "session-1",
		Rand:      rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if err := f.engine.Load(tu.MakeTracks(n)); err != nil {
		t.Fatalf("failed to load tracks: %v", err)
	}
	return f
}

func (f *fixture) tick(t *testing.T) {
	t.Helper()
	if err := f.engine.Tick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
}

// awaitPrefetch blocks until the in-flight prefetch has finished.
func (f *fixture) awaitPrefetch(t *testing.T) {
	t.Helper()
	p := f.engine.Prefetching()
	if p == nil {
		t.Fatal("expected a prefetch in flight")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p.Wait(ctx)
	if !p.Ready() {
		t.Fatal("prefetch did not finish")
	}
}

func (f *fixture) drainKinds() []UpdateKind {
	var kinds []UpdateKind
	for {
		select {
		case u := <-f.updates:
			kinds = append(kinds, u.Kind)
		default:
			return kinds
		}
	}
}

func ids(calls []models.TrackID) []int {
	out := make([]int, len(calls))
	for i, c := range calls {
		out[i] = int(c)
	}
	return out
}

func TestNewEngine(t *testing.T) {
	t.Run("Requires Resolver And Output", func(t *testing.T) {
		if _, err := NewEngine(EngineOpts{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestQueue(t *testing.T) {
	t.Run("Shuffle Is A Permutation", func(t *testing.T) {
		for _, n := range []int{0, 1, 2, 7, 50} {
			f := newFixture(t, n)
			f.engine.Advance()

			if err := f.engine.Shuffle(); err != nil {
				t.Fatalf("shuffle failed: %v", err)
			}

			q := f.engine.Queue()
			slices.Sort(q)
			for i, v := range q {
				if v != i {
					t.Fatalf("n=%d: shuffled queue is not a permutation: %v", n, f.engine.Queue())
				}
			}
			if len(q) != n {
				t.Errorf("n=%d: expected %d entries, got %d", n, n, len(q))
			}
			if f.engine.Position() != 0 {
				t.Errorf("n=%d: expected position 0 after shuffle, got %d", n, f.engine.Position())
			}
		}
	})

	t.Run("Advance", func(t *testing.T) {
		f := newFixture(t, 5)
		for want := 1; want <= 3; want++ {
			f.engine.Advance()
			if f.engine.Position() != want {
				t.Errorf("expected position %d, got %d", want, f.engine.Position())
			}
		}
	})

	t.Run("StepBack", func(t *testing.T) {
		tc := []struct {
			name      string
			start     int
			want      int
			wantReset bool
		}{
			{name: "From Zero", start: 0, want: 0},
			{name: "From One", start: 1, want: 1},
			{name: "From Two", start: 2, want: 0, wantReset: true},
			{name: "From Four", start: 4, want: 2, wantReset: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, 5)
				for range tt.start {
					f.engine.Advance()
				}

				if err := f.engine.StepBack(); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				if f.engine.Position() != tt.want {
					t.Errorf("expected position %d, got %d", tt.want, f.engine.Position())
				}

				reset := len(f.sinks.Built) == 2
				if reset != tt.wantReset {
					t.Errorf("expected sink reset %v, got %v", tt.wantReset, reset)
				}
			})
		}
	})

	t.Run("StepBack Drops Prefetch", func(t *testing.T) {
		f := newFixture(t, 5)
		f.tick(t)
		f.tick(t)
		f.tick(t) // no-op: prefetch already in flight
		f.awaitPrefetch(t)
		f.engine.Advance()

		if err := f.engine.StepBack(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.engine.Prefetching() != nil {
			t.Error("expected prefetch to be dropped")
		}
	})

	t.Run("SetQueue Resets Position And Prefetch", func(t *testing.T) {
		f := newFixture(t, 4)
		f.tick(t)
		f.tick(t)
		if f.engine.Prefetching() == nil {
			t.Fatal("expected prefetch in flight")
		}

		if err := f.engine.SetQueue([]int{3, 2, 1, 0}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if f.engine.Position() != 0 {
			t.Errorf("expected position 0, got %d", f.engine.Position())
		}
		if f.engine.Prefetching() != nil {
			t.Error("expected prefetch to be dropped")
		}
		if cur, _ := f.engine.CurrentTrack(); cur.ID != 4 {
			t.Errorf("expected track 4 at the cursor, got %d", cur.ID)
		}
	})

	t.Run("SetQueue Rejects Non-Permutations", func(t *testing.T) {
		f := newFixture(t, 3)
		for _, perm := range [][]int{{0, 1}, {0, 1, 1}, {0, 1, 3}, {-1, 0, 1}} {
			if err := f.engine.SetQueue(perm); !errors.Is(err, shared.ErrInvalidQueue) {
				t.Errorf("expected ErrInvalidQueue for %v, got %v", perm, err)
			}
		}
	})

	t.Run("TrackAtOffset Out Of Range", func(t *testing.T) {
		f := newFixture(t, 2)
		if _, ok := f.engine.TrackAtOffset(2); ok {
			t.Error("expected no track past the end")
		}
		if _, ok := f.engine.TrackAtOffset(-1); ok {
			t.Error("expected no track before the start")
		}
	})
}

func TestTick(t *testing.T) {
	t.Run("Prefetch Is Consumed Without Synchronous Resolve", func(t *testing.T) {
		f := newFixture(t, 3)

		f.tick(t) // k: empty sink, synchronous resolve of track 1
		if got := ids(f.resolver.Calls()); !slices.Equal(got, []int{1}) {
			t.Fatalf("expected [1] after first tick, got %v", got)
		}

		f.tick(t) // k+1: sink busy, prefetch track 2
		f.awaitPrefetch(t)
		if got := ids(f.resolver.Calls()); !slices.Equal(got, []int{1, 2}) {
			t.Fatalf("expected prefetch of track 2, got %v", got)
		}

		f.sinks.Last().Finish() // track 1 ends
		f.tick(t)               // k+3: prefetched blob is fed

		if got := ids(f.resolver.Calls()); !slices.Equal(got, []int{1, 2}) {
			t.Errorf("expected no synchronous resolve, got calls %v", got)
		}
		if f.engine.Position() != 2 {
			t.Errorf("expected position 2, got %d", f.engine.Position())
		}
		if q := f.sinks.Last().Queue; len(q) != 1 || string(q[0]) != "2" {
			t.Errorf("expected track 2 queued, got %q", q)
		}
		if f.engine.Prefetching() != nil {
			t.Error("expected handle to be consumed")
		}
	})

	t.Run("Failed Prefetch Falls Back Next Tick", func(t *testing.T) {
		f := newFixture(t, 3)
		var failed bool
		f.resolver.Fn = func(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error) {
			if id == 2 && !failed {
				failed = true
				return nil, shared.ErrResolution
			}
			return &models.TrackAudioBlob{TrackID: id, Data: []byte(id.String())}, nil
		}

		f.tick(t)
		f.tick(t)
		f.awaitPrefetch(t)
		f.sinks.Last().Finish()

		f.tick(t) // prefetch failed: nothing fed
		if f.engine.Position() != 1 || !f.sinks.Last().Empty() {
			t.Fatalf("expected no progress after failed prefetch, position %d", f.engine.Position())
		}

		f.tick(t) // synchronous retry
		if f.engine.Position() != 2 {
			t.Errorf("expected position 2, got %d", f.engine.Position())
		}
		if got := ids(f.resolver.Calls()); !slices.Equal(got, []int{1, 2, 2}) {
			t.Errorf("expected calls [1 2 2], got %v", got)
		}
		if !slices.Contains(f.drainKinds(), PrefetchFailed) {
			t.Error("expected a prefetch_failed update")
		}
	})

	t.Run("Failed Resolve Skips Track", func(t *testing.T) {
		f := newFixture(t, 3)
		f.resolver.Fn = func(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error) {
			if id == 1 {
				return nil, shared.ErrTransport
			}
			return &models.TrackAudioBlob{TrackID: id, Data: []byte(id.String())}, nil
		}

		f.tick(t)
		if f.engine.Position() != 1 || !f.sinks.Last().Empty() {
			t.Fatalf("expected track 1 skipped, position %d", f.engine.Position())
		}

		f.tick(t)
		if q := f.sinks.Last().Queue; len(q) != 1 || string(q[0]) != "2" {
			t.Errorf("expected track 2 queued, got %q", q)
		}
		if !slices.Contains(f.drainKinds(), TrackSkipped) {
			t.Error("expected a track_skipped update")
		}
	})

	t.Run("Decode Failure Skips Track", func(t *testing.T) {
		f := newFixture(t, 2)
		f.sinks.Last().EnqueueErr = errors.New("not mp3")

		f.tick(t)
		if f.engine.Position() != 1 {
			t.Errorf("expected position 1, got %d", f.engine.Position())
		}
		if len(f.recorder.plays) != 0 {
			t.Error("expected no play recorded")
		}
	})

	t.Run("Queue Finished Reported Once", func(t *testing.T) {
		f := newFixture(t, 1)
		f.tick(t)
		f.sinks.Last().Finish()
		f.tick(t)
		f.tick(t)

		var finished int
		for _, k := range f.drainKinds() {
			if k == QueueFinished {
				finished++
			}
		}
		if finished != 1 {
			t.Errorf("expected one queue_finished update, got %d", finished)
		}
		if got := len(f.resolver.Calls()); got != 1 {
			t.Errorf("expected 1 resolve, got %d", got)
		}
	})

	t.Run("No Prefetch Past The End", func(t *testing.T) {
		f := newFixture(t, 1)
		f.tick(t)
		f.tick(t)
		if f.engine.Prefetching() != nil {
			t.Error("expected no prefetch for an exhausted queue")
		}
	})

	t.Run("Records Plays", func(t *testing.T) {
		f := newFixture(t, 2)
		f.recorder.err = errors.New("db locked")
		f.tick(t)

		if len(f.recorder.plays) != 1 || f.recorder.plays[0] != (recordedPlay{"session-1", 1}) {
			t.Errorf("unexpected plays %+v", f.recorder.plays)
		}
		if f.engine.Position() != 1 {
			t.Error("recorder failure should not affect playback")
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		f := newFixture(t, 2)
		f.resolver.Fn = func(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := f.engine.Tick(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if f.engine.Position() != 0 {
			t.Error("expected no skip on shutdown")
		}
	})
}

func TestControls(t *testing.T) {
	t.Run("Volume Is Not Clamped", func(t *testing.T) {
		f := newFixture(t, 1)

		f.engine.AdjustVolume(0.05)
		if got := f.engine.Volume(); got < 1.049 || got > 1.051 {
			t.Errorf("expected 1.05, got %v", got)
		}

		f.engine.SetVolume(-3)
		if f.engine.Volume() != -3 {
			t.Errorf("expected -3, got %v", f.engine.Volume())
		}
	})

	t.Run("Speed Survives Sink Swap", func(t *testing.T) {
		f := newFixture(t, 1)
		f.engine.SetSpeed(2.5)
		f.engine.SetVolume(0.4)

		if err := f.engine.SwapSink(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sink := f.sinks.Last()
		if sink.Speed() != 2.5 || sink.Volume() != 0.4 {
			t.Errorf("expected settings on new sink, got speed %v volume %v", sink.Speed(), sink.Volume())
		}
	})

	t.Run("TogglePlayback", func(t *testing.T) {
		f := newFixture(t, 1)
		f.engine.TogglePlayback()
		if !f.engine.Status().Paused {
			t.Error("expected paused")
		}
		f.engine.TogglePlayback()
		if f.engine.Status().Paused {
			t.Error("expected playing")
		}
	})

	t.Run("Skip Keeps Prefetch For Next Track", func(t *testing.T) {
		f := newFixture(t, 3)
		f.tick(t)
		f.tick(t)
		f.awaitPrefetch(t)

		if err := f.engine.Skip(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f.tick(t)
		if got := ids(f.resolver.Calls()); !slices.Equal(got, []int{1, 2}) {
			t.Errorf("expected prefetched track to be used, got %v", got)
		}
		if st := f.engine.Status(); st.NowPlaying == nil || st.NowPlaying.ID != 2 {
			t.Errorf("expected track 2 playing, got %+v", st.NowPlaying)
		}
	})

	t.Run("Status", func(t *testing.T) {
		f := newFixture(t, 5)
		f.tick(t)

		st := f.engine.Status()
		if st.NowPlaying == nil || st.NowPlaying.ID != 1 {
			t.Errorf("expected track 1 playing, got %+v", st.NowPlaying)
		}
		if len(st.Upcoming) != upcomingLen || st.Upcoming[0].ID != 2 {
			t.Errorf("unexpected upcoming %+v", st.Upcoming)
		}
		if st.Position != 1 || st.Total != 5 {
			t.Errorf("unexpected counters %d/%d", st.Position, st.Total)
		}
	})
}
