package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/services"
	"github.com/desertthunder/ymx/internal/shared"
)

// DefaultInterval is the control loop period.
const DefaultInterval = 100 * time.Millisecond

// SessionOpts configures a [Session].
type SessionOpts struct {
	Engine        *Engine
	Library       services.Library
	UID           uint64
	Events        <-chan Event
	Updates       chan<- Update
	Interval      time.Duration
	ShuffleOnLoad bool
	Logger        *log.Logger
}

// Session is the control loop: it ticks the engine at a fixed interval and
// applies every pending [Event] after each tick.
type Session struct {
	engine        *Engine
	library       services.Library
	uid           uint64
	events        <-chan Event
	updates       chan<- Update
	interval      time.Duration
	shuffleOnLoad bool
	logger        *log.Logger

	playlists []models.Playlist
}

// NewSession creates a session.
func NewSession(opts SessionOpts) *Session {
	s := &Session{
		engine:        opts.Engine,
		library:       opts.Library,
		uid:           opts.UID,
		events:        opts.Events,
		updates:       opts.Updates,
		interval:      opts.Interval,
		shuffleOnLoad: opts.ShuffleOnLoad,
		logger:        opts.Logger,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s
}

// Engine returns the driven engine.
func (s *Session) Engine() *Engine { return s.engine }

// LoadFavorites replaces the queue with the user's liked music tracks.
func (s *Session) LoadFavorites(ctx context.Context) error {
	tracks, err := s.library.LikedMusicTracks(ctx, s.uid)
	if err != nil {
		return err
	}
	return s.load(tracks, "liked tracks")
}

// Playlists returns the user's playlists, fetching them on first use.
func (s *Session) Playlists(ctx context.Context, refresh bool) ([]models.Playlist, error) {
	if s.playlists != nil && !refresh {
		return s.playlists, nil
	}
	playlists, err := s.library.Playlists(ctx, s.uid)
	if err != nil {
		return nil, err
	}
	s.playlists = playlists
	return playlists, nil
}

// LoadPlaylist replaces the queue with the tracks of the playlist at index.
func (s *Session) LoadPlaylist(ctx context.Context, index int) error {
	playlists, err := s.Playlists(ctx, false)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(playlists) {
		return fmt.Errorf("%w: index %d of %d", shared.ErrPlaylistNotFound, index, len(playlists))
	}

	pl := playlists[index]
	tracks, err := s.library.TracksFromPlaylist(ctx, pl)
	if err != nil {
		return err
	}
	return s.load(tracks, fmt.Sprintf("playlist %q", pl.Title))
}

func (s *Session) load(tracks []models.Track, source string) error {
	if len(tracks) == 0 {
		return fmt.Errorf("%w: %s has no playable tracks", shared.ErrQueueEmpty, source)
	}
	if err := s.engine.Load(tracks); err != nil {
		return err
	}
	if s.shuffleOnLoad {
		if err := s.engine.Shuffle(); err != nil {
			return err
		}
	}
	s.logger.Info("queue loaded", "source", source, "tracks", len(tracks))
	sendUpdate(s.updates, queueLoadedUpdate(s.engine.Status(), source))
	return nil
}

// Run drives the engine until a Quit event arrives, the event channel closes, or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.engine.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := s.engine.Tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if quit := s.drain(ctx); quit {
			return nil
		}
	}
}

// drain applies every pending event without blocking.
func (s *Session) drain(ctx context.Context) bool {
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return true
			}
			if s.dispatch(ctx, ev) {
				return true
			}
		default:
			return false
		}
	}
}

// dispatch applies ev to the engine and reports whether the session should stop.
func (s *Session) dispatch(ctx context.Context, ev Event) bool {
	s.logger.Debug("event", "kind", ev.Kind, "value", ev.Value, "index", ev.Index)

	var err error
	switch ev.Kind {
	case AdjustVolume:
		s.engine.AdjustVolume(ev.Value)
	case SetVolume:
		s.engine.SetVolume(ev.Value)
	case AdjustSpeed:
		s.engine.AdjustSpeed(ev.Value)
	case SetSpeed:
		s.engine.SetSpeed(ev.Value)
	case TogglePlayback:
		s.engine.TogglePlayback()
	case Next:
		err = s.engine.Skip()
	case Previous:
		err = s.engine.Previous()
	case Shuffle:
		err = s.engine.Shuffle()
	case ListPlaylists:
		var playlists []models.Playlist
		playlists, err = s.Playlists(ctx, true)
		if err == nil {
			sendUpdate(s.updates, playlistsListedUpdate(s.engine.Status(), playlists))
		}
	case LoadPlaylist:
		err = s.LoadPlaylist(ctx, ev.Index)
	case LoadFavorites:
		err = s.LoadFavorites(ctx)
	case ShowStatus:
		s.engine.Report()
	case Quit:
		return true
	default:
		err = fmt.Errorf("%w: unknown event %d", shared.ErrInvalidInput, ev.Kind)
	}

	if err != nil {
		s.logger.Error("command failed", "event", ev, "error", err)
		sendUpdate(s.updates, commandFailedUpdate(s.engine.Status(), ev.String(), err))
	}
	return false
}
