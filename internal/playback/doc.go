// Package playback implements the playback queue engine and the control loop that drives it.
//
// # Engine
//
// [Engine] owns the track list, a play queue (a permutation of track indices), a cursor into the
// queue, at most one [Prefetch] handle, and a resettable audio [Output]. It is driven by
// [Engine.Tick]:
//
//  1. Output empty: feed the track at the cursor, from the prefetch handle if present (blocking
//     until it completes) or by resolving it synchronously, then advance the cursor.
//  2. Output busy and no prefetch in flight: start resolving the track at the cursor in the
//     background so it is ready when the output drains.
//
// A failed prefetch falls back to a synchronous resolve on the next tick. A failed synchronous
// resolve skips the track. Neither stops the loop.
//
// # Session
//
// [Session.Run] ticks the engine every 100ms by default and, after each tick, drains all pending
// [Event] values in arrival order. Events come from [ParseCommand] (line commands on stdin) or the
// TUI key map; there is one event type and one dispatcher.
//
// # Updates
//
// The engine and session report what happens through an optional Update channel. Sends use select
// with default so a slow consumer never stalls playback.
package playback
