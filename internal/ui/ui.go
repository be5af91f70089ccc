package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/playback"
	"github.com/desertthunder/ymx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	NowPlayingView ViewState = iota
	PlaylistView
)

// logSize is how many recent update messages the now-playing view keeps.
const logSize = 5

// Model represents the TUI application state.
type Model struct {
	view         ViewState
	events       chan<- playback.Event
	updates      <-chan playback.Update
	steps        playback.Steps
	width        int
	height       int
	status       playback.Status
	playlistList list.Model
	log          []playback.Update
	err          error
	finished     bool
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that sends events to a running
// [playback.Session] and renders the updates it emits.
func NewModel(events chan<- playback.Event, updates <-chan playback.Update, steps playback.Steps) *Model {
	return &Model{
		view:    NowPlayingView,
		events:  events,
		updates: updates,
		steps:   steps,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts listening for playback updates.
func (m *Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.view == PlaylistView {
			m.playlistList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		default:
			return m.handleNowPlayingKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgPlaybackUpdate:
			m.apply(msg.data.(playback.Update))
			return m, m.waitForUpdate()
		case MsgSessionEnded:
			return m, tea.Quit
		}
	}

	if m.view == PlaylistView {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply folds a playback update into the model.
func (m *Model) apply(u playback.Update) {
	m.status = u.Status

	switch u.Kind {
	case playback.PlaylistsListed:
		playlists, _ := u.Data.([]models.Playlist)
		m.showPlaylists(playlists)
	case playback.QueueLoaded:
		m.view = NowPlayingView
	case playback.QueueFinished:
		m.finished = true
	case playback.NowPlaying:
		m.finished = false
	}

	if u.Kind == playback.CommandFailed {
		m.err = u.Err
	} else {
		m.err = nil
	}

	m.log = append(m.log, u)
	if len(m.log) > logSize {
		m.log = m.log[len(m.log)-logSize:]
	}
}

func (m *Model) showPlaylists(playlists []models.Playlist) {
	m.playlistList = list.New(playlistItems(playlists), list.NewDefaultDelegate(), 0, 0)
	m.playlistList.Title = "Playlists"
	m.playlistList.SetSize(max(m.width-4, 40), max(m.height-6, 20))
	m.playlistList.KeyMap.Quit.SetEnabled(false)
	m.view = PlaylistView
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistView:
		return m.renderPlaylists()
	default:
		return m.renderNowPlaying()
	}
}

// send hands ev to the session without blocking the UI when the session is busy.
func (m *Model) send(ev playback.Event) {
	select {
	case m.events <- ev:
	default:
		m.err = fmt.Errorf("%w: player busy, dropped %s", shared.ErrInvalidInput, ev)
	}
}

func (m *Model) handleNowPlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.send(playback.Event{Kind: playback.Quit})
		return m, tea.Quit
	case key.Matches(msg, m.keys.volumeUp):
		m.send(playback.Event{Kind: playback.AdjustVolume, Value: m.steps.Volume})
	case key.Matches(msg, m.keys.volumeDown):
		m.send(playback.Event{Kind: playback.AdjustVolume, Value: -m.steps.Volume})
	case key.Matches(msg, m.keys.speedUp):
		m.send(playback.Event{Kind: playback.AdjustSpeed, Value: m.steps.Speed})
	case key.Matches(msg, m.keys.speedDown):
		m.send(playback.Event{Kind: playback.AdjustSpeed, Value: -m.steps.Speed})
	case key.Matches(msg, m.keys.toggle):
		m.send(playback.Event{Kind: playback.TogglePlayback})
	case key.Matches(msg, m.keys.next):
		m.send(playback.Event{Kind: playback.Next})
	case key.Matches(msg, m.keys.previous):
		m.send(playback.Event{Kind: playback.Previous})
	case key.Matches(msg, m.keys.shuffle):
		m.send(playback.Event{Kind: playback.Shuffle})
	case key.Matches(msg, m.keys.playlists):
		m.send(playback.Event{Kind: playback.ListPlaylists})
	case key.Matches(msg, m.keys.favorites):
		m.send(playback.Event{Kind: playback.LoadFavorites})
	case key.Matches(msg, m.keys.status):
		m.send(playback.Event{Kind: playback.ShowStatus})
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case msg.String() == "ctrl+c":
		m.send(playback.Event{Kind: playback.Quit})
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = NowPlayingView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.send(playback.Event{Kind: playback.LoadPlaylist, Index: item.index})
			m.view = NowPlayingView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

// waitForUpdate blocks on the update channel and turns the next value into a [Msg].
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return sessionEndedMsg()
		}
		return playbackUpdateMsg(update)
	}
}

func (m *Model) renderNowPlaying() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("ymx"))
	b.WriteString("\n")

	st := m.status
	switch {
	case st.NowPlaying != nil:
		state := styles.ok.Render("▶ Playing")
		if st.Paused {
			state = styles.warn.Render("⏸ Paused")
		}
		fmt.Fprintf(&b, "%s  [%d/%d]\n", state, st.Position, st.Total)
		fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().Bold(true).Render(st.NowPlaying.Title))
		fmt.Fprintf(&b, "%s", styles.muted.Render(st.NowPlaying.ArtistNames()))
		if d := st.NowPlaying.Duration(); d > 0 {
			fmt.Fprintf(&b, " %s", styles.muted.Render("• "+shared.FormatDuration(d)))
		}
		b.WriteString("\n")
	case m.finished:
		b.WriteString(styles.warn.Render("Queue finished. Press p for playlists or f for liked tracks."))
		b.WriteString("\n")
	default:
		b.WriteString(styles.muted.Render("Waiting for the first track..."))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nVolume %.2f   Speed %.2fx\n", st.Volume, st.Speed)

	if len(st.Upcoming) > 0 {
		b.WriteString("\nUp next:\n")
		for _, t := range st.Upcoming {
			fmt.Fprintf(&b, "  • %s\n", t.String())
		}
	}

	if len(m.log) > 0 {
		lines := make([]string, len(m.log))
		for i, u := range m.log {
			lines[i] = u.Message
		}
		b.WriteString("\n")
		b.WriteString(styles.status.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPlaylists() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}
