package models

import (
	"fmt"
	"time"
)

// Play is a persisted record of a track starting playback during a session.
type Play struct {
	id         string
	sequence   int
	sessionID  string
	trackID    TrackID
	title      string
	artists    string
	durationMS int64
	playedAt   time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPlay creates a [Play] for track within the given session.
func NewPlay(sequence int, sessionID string, track Track, playedAt time.Time) *Play {
	now := time.Now()
	return &Play{
		sequence:   sequence,
		sessionID:  sessionID,
		trackID:    track.ID,
		title:      track.Title,
		artists:    track.ArtistNames(),
		durationMS: track.Duration(),
		playedAt:   playedAt,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (p *Play) ID() string            { return p.id }
func (p *Play) Sequence() int         { return p.sequence }
func (p *Play) SessionID() string     { return p.sessionID }
func (p *Play) TrackID() TrackID      { return p.trackID }
func (p *Play) Title() string         { return p.title }
func (p *Play) Artists() string       { return p.artists }
func (p *Play) DurationMS() int64     { return p.durationMS }
func (p *Play) PlayedAt() time.Time   { return p.playedAt }
func (p *Play) CreatedAt() time.Time  { return p.createdAt }
func (p *Play) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Play) DeletedAt() *time.Time { return p.deletedAt }

func (p *Play) SetID(id string)           { p.id = id }
func (p *Play) SetSequence(seq int)       { p.sequence = seq }
func (p *Play) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *Play) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *Play) SetDeletedAt(t *time.Time) { p.deletedAt = t }
func (p *Play) SetTitle(title string)     { p.title = title }
func (p *Play) SetArtists(artists string) { p.artists = artists }
func (p *Play) SetDurationMS(ms int64)    { p.durationMS = ms }

// Track rebuilds a minimal [Track] from the record.
func (p *Play) Track() Track {
	t := Track{ID: p.trackID, Title: p.title}
	if p.artists != "" {
		t.Artists = []ArtistRef{{Name: p.artists}}
	}
	if p.durationMS > 0 {
		d := p.durationMS
		t.DurationMS = &d
	}
	return t
}

// Validate checks required fields.
func (p *Play) Validate() error {
	if p.sessionID == "" {
		return fmt.Errorf("play session id is required")
	}
	if p.trackID == 0 {
		return fmt.Errorf("play track id is required")
	}
	if p.title == "" {
		return fmt.Errorf("play title is required")
	}
	if p.playedAt.IsZero() {
		return fmt.Errorf("play timestamp is required")
	}
	return nil
}
