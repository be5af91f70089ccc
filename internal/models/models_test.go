package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTrack(t *testing.T) {
	t.Run("Decode With String Identifiers", func(t *testing.T) {
		body := `{"id":"5150","title":"Song","albums":[{"id":77,"title":"LP","metaType":"music","trackCount":10}],"artists":[{"id":"1","name":"A"},{"id":2,"name":"B"}],"durationMs":215000}`

		var track Track
		if err := json.Unmarshal([]byte(body), &track); err != nil {
			t.Fatalf("failed to decode track: %v", err)
		}

		if track.ID != 5150 {
			t.Errorf("expected id 5150, got %d", track.ID)
		}
		if track.String() != "Song (A, B)" {
			t.Errorf("unexpected display %q", track.String())
		}
		if track.Duration() != 215000 {
			t.Errorf("expected duration 215000, got %d", track.Duration())
		}
	})

	t.Run("Decode Rejects Non-Numeric Identifier", func(t *testing.T) {
		var track Track
		if err := json.Unmarshal([]byte(`{"id":"abc"}`), &track); err == nil {
			t.Error("expected error for non-numeric id")
		}
	})

	t.Run("IsMusic", func(t *testing.T) {
		tc := []struct {
			name   string
			albums []AlbumRef
			want   bool
		}{
			{name: "music primary", albums: []AlbumRef{{Category: CategoryMusic}}, want: true},
			{name: "podcast primary", albums: []AlbumRef{{Category: CategoryPodcast}, {Category: CategoryMusic}}, want: false},
			{name: "no albums", albums: nil, want: false},
			{name: "unknown category", albums: []AlbumRef{{Category: "audiobook"}}, want: false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				track := Track{Albums: tt.albums}
				if got := track.IsMusic(); got != tt.want {
					t.Errorf("IsMusic() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("ParseTrackID", func(t *testing.T) {
		id, err := ParseTrackID(" 42 ")
		if err != nil || id != 42 {
			t.Errorf("expected 42, got %d (%v)", id, err)
		}

		if _, err := ParseTrackID("x"); err == nil {
			t.Error("expected error for invalid id")
		}
	})
}

func TestPlay(t *testing.T) {
	d := int64(1000)
	track := Track{ID: 9, Title: "Song", Artists: []ArtistRef{{Name: "A"}, {Name: "B"}}, DurationMS: &d}

	t.Run("Validate", func(t *testing.T) {
		play := NewPlay(1, "session", track, time.Now())
		if err := play.Validate(); err != nil {
			t.Errorf("expected valid play, got %v", err)
		}

		missing := NewPlay(1, "", track, time.Now())
		if err := missing.Validate(); err == nil {
			t.Error("expected error for missing session")
		}
	})

	t.Run("Track", func(t *testing.T) {
		play := NewPlay(1, "session", track, time.Now())
		got := play.Track()
		if got.ID != 9 || got.String() != "Song (A, B)" || got.Duration() != 1000 {
			t.Errorf("unexpected rebuilt track %+v", got)
		}
	})
}
