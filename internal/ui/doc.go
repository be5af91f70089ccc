// Package ui implements the interactive now-playing terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [NowPlayingView] : Current track, upcoming queue, volume/speed and recent messages
//  2. [PlaylistView] : Pick one of the user's playlists to load into the queue
//
// The [Model] never touches the playback engine directly. Key presses become [playback.Event] values sent on
// the session's event channel, and [playback.Update] values arrive through a channel read by a waiting command.
//
// Keyboard bindings are shown with charmbracelet/bubbles/help; press ? to toggle the full list.
package ui
