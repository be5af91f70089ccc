package playback

import (
	"fmt"
	"strings"

	"github.com/desertthunder/ymx/internal/models"
)

// Update is a status event emitted by the engine or session for the CLI or UI layer.
type Update struct {
	Kind    UpdateKind // What happened
	Message string     // Human-readable message for display
	Status  Status     // Engine snapshot taken when the update was built
	Err     error      // Cause, for failure kinds
	Data    any        // Optional kind-specific payload ([]models.Playlist for PlaylistsListed)
}

// Status is a snapshot of the engine.
type Status struct {
	NowPlaying *models.Track
	Upcoming   []models.Track
	Position   int
	Total      int
	Volume     float64
	Speed      float64
	Paused     bool
}

// UpdateKind enumerates update kinds
type UpdateKind int

const (
	NowPlaying UpdateKind = iota
	TrackSkipped
	PrefetchStarted
	PrefetchFailed
	QueueLoaded
	QueueShuffled
	QueueFinished
	SinkReset
	VolumeChanged
	SpeedChanged
	PlaybackToggled
	PlaylistsListed
	StatusReport
	CommandFailed
	Stopped
)

func (k UpdateKind) String() string {
	switch k {
	case NowPlaying:
		return "now_playing"
	case TrackSkipped:
		return "track_skipped"
	case PrefetchStarted:
		return "prefetch_started"
	case PrefetchFailed:
		return "prefetch_failed"
	case QueueLoaded:
		return "queue_loaded"
	case QueueShuffled:
		return "queue_shuffled"
	case QueueFinished:
		return "queue_finished"
	case SinkReset:
		return "sink_reset"
	case VolumeChanged:
		return "volume_changed"
	case SpeedChanged:
		return "speed_changed"
	case PlaybackToggled:
		return "playback_toggled"
	case PlaylistsListed:
		return "playlists_listed"
	case StatusReport:
		return "status_report"
	case CommandFailed:
		return "command_failed"
	case Stopped:
		return "stopped"
	default:
		return ""
	}
}

// sendUpdate sends an update through the channel without blocking.
func sendUpdate(updates chan<- Update, update Update) {
	if updates == nil {
		return
	}
	select {
	case updates <- update:
	default:
	}
}

func nowPlayingUpdate(st Status, track models.Track) Update {
	return Update{
		Kind:    NowPlaying,
		Status:  st,
		Message: fmt.Sprintf("[%d/%d] Now playing: %s", st.Position, st.Total, track),
	}
}

func trackSkippedUpdate(st Status, track models.Track, err error) Update {
	return Update{
		Kind:    TrackSkipped,
		Status:  st,
		Err:     err,
		Message: fmt.Sprintf("Skipping %s: %v", track, err),
	}
}

func prefetchStartedUpdate(st Status, track models.Track) Update {
	return Update{
		Kind:    PrefetchStarted,
		Status:  st,
		Message: fmt.Sprintf("Prefetching %s", track),
	}
}

func prefetchFailedUpdate(st Status, track models.Track, err error) Update {
	return Update{
		Kind:    PrefetchFailed,
		Status:  st,
		Err:     err,
		Message: fmt.Sprintf("Prefetch of %s unavailable, retrying directly: %v", track, err),
	}
}

func queueLoadedUpdate(st Status, source string) Update {
	return Update{
		Kind:    QueueLoaded,
		Status:  st,
		Message: fmt.Sprintf("Loaded %d tracks from %s", st.Total, source),
	}
}

func queueShuffledUpdate(st Status) Update {
	return Update{Kind: QueueShuffled, Status: st, Message: "Queue shuffled"}
}

func queueFinishedUpdate(st Status) Update {
	return Update{Kind: QueueFinished, Status: st, Message: "Reached the end of the queue"}
}

func sinkResetUpdate(st Status, message string) Update {
	return Update{Kind: SinkReset, Status: st, Message: message}
}

func volumeUpdate(st Status) Update {
	return Update{Kind: VolumeChanged, Status: st, Message: fmt.Sprintf("Volume: %.2f", st.Volume)}
}

func speedUpdate(st Status) Update {
	return Update{Kind: SpeedChanged, Status: st, Message: fmt.Sprintf("Speed: %.2f", st.Speed)}
}

func toggledUpdate(st Status) Update {
	msg := "Resumed"
	if st.Paused {
		msg = "Paused"
	}
	return Update{Kind: PlaybackToggled, Status: st, Message: msg}
}

func playlistsListedUpdate(st Status, playlists []models.Playlist) Update {
	var b strings.Builder
	fmt.Fprintf(&b, "%d playlists:", len(playlists))
	for i, pl := range playlists {
		fmt.Fprintf(&b, "\n  %d. %s (%d tracks)", i, pl.Title, pl.TrackCount)
	}
	return Update{Kind: PlaylistsListed, Status: st, Message: b.String(), Data: playlists}
}

func statusReportUpdate(st Status) Update {
	now := "nothing"
	if st.NowPlaying != nil {
		now = st.NowPlaying.String()
	}
	state := "playing"
	if st.Paused {
		state = "paused"
	}
	return Update{
		Kind:    StatusReport,
		Status:  st,
		Message: fmt.Sprintf("Volume: %.2f | Speed: %.2f | %s: %s [%d/%d]", st.Volume, st.Speed, state, now, st.Position, st.Total),
	}
}

func commandFailedUpdate(st Status, action string, err error) Update {
	return Update{
		Kind:    CommandFailed,
		Status:  st,
		Err:     err,
		Message: fmt.Sprintf("%s failed: %v", action, err),
	}
}

func stoppedUpdate(st Status) Update {
	return Update{Kind: Stopped, Status: st, Message: "Stopped"}
}
