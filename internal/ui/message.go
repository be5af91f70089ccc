package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ymx/internal/playback"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaybackUpdate MsgKind = iota
	MsgSessionEnded
)

// playbackUpdateMsg is the constructor for [MsgPlaybackUpdate]
func playbackUpdateMsg(update playback.Update) Msg {
	return Msg{kind: MsgPlaybackUpdate, data: update}
}

// sessionEndedMsg is the constructor for [MsgSessionEnded]
func sessionEndedMsg() Msg {
	return Msg{kind: MsgSessionEnded}
}
