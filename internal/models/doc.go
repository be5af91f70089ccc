// Package models defines domain entities and persistence interfaces for the ymx player.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): values decoded from the music service
//   - [Track] : track metadata with album and artist references
//   - [TrackRef] : entry of the liked-tracks listing
//   - [Playlist] : playlist summary (title, kind, owner)
//   - [DownloadDescriptor] and [SigningDescriptor] : inputs to direct-link resolution
//   - [TrackAudioBlob] : encoded audio bytes for one track, never cached
//
// 2. Persistent Entities: database-backed models
//   - [Play] : one playback start, recorded per session
//
// Identifiers arrive from the service either as strings or numbers; [TrackID] and [FlexID] accept both.
// All persistent entities implement the Model interface and the Repository[T] interface defines CRUD access.
package models
