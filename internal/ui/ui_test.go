package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/playback"
	th "github.com/desertthunder/ymx/internal/testing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() (*Model, chan playback.Event, chan playback.Update) {
	events := make(chan playback.Event, 10)
	updates := make(chan playback.Update, 10)
	return NewModel(events, updates, playback.DefaultSteps), events, updates
}

func nextEvent(t *testing.T, events chan playback.Event) playback.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	default:
		t.Fatal("expected an event to be sent")
		return playback.Event{}
	}
}

func TestModelKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want playback.Event
	}{
		{"Volume Up", runes("+"), playback.Event{Kind: playback.AdjustVolume, Value: 0.05}},
		{"Volume Down", runes("-"), playback.Event{Kind: playback.AdjustVolume, Value: -0.05}},
		{"Speed Up", runes("]"), playback.Event{Kind: playback.AdjustSpeed, Value: 0.5}},
		{"Speed Down", runes("["), playback.Event{Kind: playback.AdjustSpeed, Value: -0.5}},
		{"Next", runes("n"), playback.Event{Kind: playback.Next}},
		{"Next Arrow", tea.KeyMsg{Type: tea.KeyRight}, playback.Event{Kind: playback.Next}},
		{"Previous", runes("b"), playback.Event{Kind: playback.Previous}},
		{"Shuffle", runes("s"), playback.Event{Kind: playback.Shuffle}},
		{"Playlists", runes("p"), playback.Event{Kind: playback.ListPlaylists}},
		{"Favorites", runes("f"), playback.Event{Kind: playback.LoadFavorites}},
		{"Status", runes("i"), playback.Event{Kind: playback.ShowStatus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, events, _ := newTestModel()
			m.Update(tt.key)

			if got := nextEvent(t, events); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("Quit", func(t *testing.T) {
		m, events, _ := newTestModel()
		_, cmd := m.Update(runes("q"))

		if got := nextEvent(t, events); got.Kind != playback.Quit {
			t.Errorf("expected quit event, got %s", got)
		}
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("Help Toggle Sends Nothing", func(t *testing.T) {
		m, events, _ := newTestModel()
		m.Update(runes("?"))

		if !m.help.ShowAll {
			t.Error("expected full help to be shown")
		}
		if len(events) != 0 {
			t.Errorf("expected no events, got %d", len(events))
		}
	})

	t.Run("Busy Session", func(t *testing.T) {
		events := make(chan playback.Event)
		m := NewModel(events, make(chan playback.Update), playback.DefaultSteps)
		m.Update(runes("n"))

		if m.err == nil {
			t.Error("expected dropped event to be reported")
		}
	})
}

func TestModelUpdates(t *testing.T) {
	tracks := th.MakeTracks(3)

	t.Run("Now Playing", func(t *testing.T) {
		m, _, _ := newTestModel()
		m.Update(playbackUpdateMsg(playback.Update{
			Kind:    playback.NowPlaying,
			Message: "[1/3] Now playing: Track 1 (Artist)",
			Status: playback.Status{
				NowPlaying: &tracks[0],
				Upcoming:   tracks[1:],
				Position:   1,
				Total:      3,
				Volume:     1,
				Speed:      1,
			},
		}))

		view := m.View()
		for _, want := range []string{"Track 1", "[1/3]", "Up next", "Track 2 (Artist)", "Volume 1.00"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("Log Is Bounded", func(t *testing.T) {
		m, _, _ := newTestModel()
		for range logSize + 3 {
			m.apply(playback.Update{Kind: playback.VolumeChanged, Message: "Volume"})
		}
		if len(m.log) != logSize {
			t.Errorf("expected %d log entries, got %d", logSize, len(m.log))
		}
	})

	t.Run("Command Failed", func(t *testing.T) {
		m, _, _ := newTestModel()
		m.apply(playback.Update{Kind: playback.CommandFailed, Err: errors.New("boom"), Message: "next failed: boom"})

		if !strings.Contains(m.View(), "Error: boom") {
			t.Errorf("expected error in view:\n%s", m.View())
		}

		m.apply(playback.Update{Kind: playback.StatusReport})
		if m.err != nil {
			t.Error("error should clear on the next update")
		}
	})

	t.Run("Queue Finished", func(t *testing.T) {
		m, _, _ := newTestModel()
		m.apply(playback.Update{Kind: playback.QueueFinished})

		if !strings.Contains(m.View(), "Queue finished") {
			t.Errorf("expected finished notice:\n%s", m.View())
		}
	})

	t.Run("Playlist Picker", func(t *testing.T) {
		m, events, _ := newTestModel()
		playlists := []models.Playlist{
			{Title: "Morning", TrackCount: 3, Kind: 3},
			{Title: "Evening", TrackCount: 5, Kind: 1005},
		}
		m.apply(playback.Update{Kind: playback.PlaylistsListed, Data: playlists})

		if m.view != PlaylistView {
			t.Fatalf("expected playlist view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Morning") {
			t.Errorf("expected playlist in view:\n%s", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		got := nextEvent(t, events)
		if got.Kind != playback.LoadPlaylist || got.Index != 1 {
			t.Errorf("expected load_playlist(1), got %s", got)
		}
		if m.view != NowPlayingView {
			t.Error("expected to return to the now playing view")
		}
	})

	t.Run("Playlist Picker Back", func(t *testing.T) {
		m, events, _ := newTestModel()
		m.apply(playback.Update{Kind: playback.PlaylistsListed, Data: []models.Playlist{{Title: "Only"}}})
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.view != NowPlayingView {
			t.Error("esc should return to the now playing view")
		}
		if len(events) != 0 {
			t.Error("esc should not send events")
		}
	})
}

func TestWaitForUpdate(t *testing.T) {
	t.Run("Delivers Update", func(t *testing.T) {
		m, _, updates := newTestModel()
		updates <- playback.Update{Kind: playback.SinkReset, Message: "reset"}

		msg, ok := m.Init()().(Msg)
		if !ok || msg.kind != MsgPlaybackUpdate {
			t.Fatalf("expected playback update msg, got %#v", msg)
		}

		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Error("expected to keep waiting for updates")
		}
	})

	t.Run("Closed Channel Quits", func(t *testing.T) {
		m, _, updates := newTestModel()
		close(updates)

		msg := m.waitForUpdate()()
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
