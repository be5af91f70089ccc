// Package audio is the output boundary of the player.
//
// A [Sink] plays encoded tracks in order and exposes pause, volume and speed.
// A [Channel] owns one sink at a time and can [Channel.Reset] it: the current
// sink is stopped and discarded, a new one is built by its [SinkFactory], and
// the last volume and speed are applied to it. Skipping and stepping back are
// expressed as resets, so the playback engine never handles sink lifetimes.
//
// The speaker implementation uses gopxl/beep and requires cgo on Linux.
// Builds without audio report [Available] as false and [NewSpeakerFactory]
// returns [shared.ErrAudioUnavailable].
package audio
