// package models defines the data model for the music player
package models

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TrackID identifies a track on the remote service.
type TrackID uint64

func (id TrackID) String() string { return strconv.FormatUint(uint64(id), 10) }

// UnmarshalJSON accepts both quoted and bare numeric identifiers.
func (id *TrackID) UnmarshalJSON(data []byte) error {
	v, err := parseID(data)
	if err != nil {
		return fmt.Errorf("track id: %w", err)
	}
	*id = TrackID(v)
	return nil
}

// ParseTrackID parses a decimal track identifier.
func ParseTrackID(s string) (TrackID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid track id %q: %w", s, err)
	}
	return TrackID(v), nil
}

// FlexID is a numeric identifier that the service sends either as a string or a number.
type FlexID uint64

// UnmarshalJSON accepts both quoted and bare numeric identifiers.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	v, err := parseID(data)
	if err != nil {
		return err
	}
	*id = FlexID(v)
	return nil
}

func parseID(data []byte) (uint64, error) {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("empty identifier")
	}
	return strconv.ParseUint(s, 10, 64)
}

// AlbumCategory is the album's type; the primary album's category decides
// whether a track counts as music.
type AlbumCategory string

const (
	CategoryMusic   AlbumCategory = "music"
	CategoryPodcast AlbumCategory = "podcast"
)

// AlbumRef is an album reference embedded in track metadata.
type AlbumRef struct {
	ID         FlexID        `json:"id"`
	Title      string        `json:"title"`
	Category   AlbumCategory `json:"metaType"`
	TrackCount int           `json:"trackCount"`
	LikesCount *int          `json:"likesCount,omitempty"`
}

// ArtistRef is an artist reference embedded in track metadata.
type ArtistRef struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

// Label identifies the rights holder of a track.
type Label struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

// Track is a track's metadata. Immutable once fetched.
type Track struct {
	ID         TrackID     `json:"id"`
	Title      string      `json:"title"`
	Albums     []AlbumRef  `json:"albums"`
	Artists    []ArtistRef `json:"artists"`
	DurationMS *int64      `json:"durationMs,omitempty"`
	Major      *Label      `json:"major,omitempty"`
}

// PrimaryAlbum returns the first album reference.
func (t Track) PrimaryAlbum() (AlbumRef, bool) {
	if len(t.Albums) == 0 {
		return AlbumRef{}, false
	}
	return t.Albums[0], true
}

// IsMusic reports whether the primary album is a music album. A track with no albums is not music.
func (t Track) IsMusic() bool {
	album, ok := t.PrimaryAlbum()
	return ok && album.Category == CategoryMusic
}

// ArtistNames joins artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Duration returns the track length in milliseconds, or 0 when unknown.
func (t Track) Duration() int64 {
	if t.DurationMS == nil {
		return 0
	}
	return *t.DurationMS
}

// String renders the track as "Title (Artist1, Artist2)".
func (t Track) String() string {
	return fmt.Sprintf("%s (%s)", t.Title, t.ArtistNames())
}

// TrackRef is an entry of the liked-tracks listing.
type TrackRef struct {
	ID      TrackID `json:"id"`
	AlbumID FlexID  `json:"albumId"`
}

// Codec is an audio encoding offered by the service.
type Codec string

const (
	CodecMP3 Codec = "mp3"
	CodecAAC Codec = "aac"
)

// DownloadDescriptor is one entry of a track's download-info listing.
type DownloadDescriptor struct {
	Codec       Codec  `json:"codec"`
	BitrateKbps int    `json:"bitrateInKbps"`
	InfoURL     string `json:"downloadInfoUrl"`
}

// SigningDescriptor holds the fields of the signing page used to build a direct link.
type SigningDescriptor struct {
	Host string
	Path string
	S    string
	TS   string
}

// TrackAudioBlob is the encoded audio of a single track.
type TrackAudioBlob struct {
	TrackID   TrackID
	FetchedAt time.Time
	Data      []byte
}

// Reader returns a fresh reader over the blob's bytes.
func (b *TrackAudioBlob) Reader() io.Reader {
	return bytes.NewReader(b.Data)
}

// Playlist is a user playlist summary.
type Playlist struct {
	Title      string `json:"title"`
	TrackCount int    `json:"trackCount"`
	Kind       FlexID `json:"kind"`
	OwnerUID   FlexID `json:"uid"`
}

// Account is the authenticated account.
type Account struct {
	UID         uint64 `json:"uid"`
	Login       string `json:"login"`
	DisplayName string `json:"displayName"`
}
