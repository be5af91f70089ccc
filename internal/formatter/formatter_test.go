package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/shared"
	th "github.com/desertthunder/ymx/internal/testing"
)

func sampleList() *TrackList {
	d1, d2 := int64(180000), int64(3725000)
	return &TrackList{
		Title: "Liked tracks",
		Tracks: []models.Track{
			{
				ID:         101,
				Title:      "Song One",
				Albums:     []models.AlbumRef{{ID: 1, Title: "Album One", Category: models.CategoryMusic}},
				Artists:    []models.ArtistRef{{ID: 1, Name: "Artist One"}, {ID: 2, Name: "Guest"}},
				DurationMS: &d1,
			},
			{
				ID:         102,
				Title:      "Episode Two",
				Albums:     []models.AlbumRef{{ID: 2, Title: "Show", Category: models.CategoryPodcast}},
				Artists:    []models.ArtistRef{{ID: 3, Name: "Host"}},
				DurationMS: &d2,
			},
			{
				ID:      103,
				Title:   "Loose, Track",
				Artists: []models.ArtistRef{{ID: 4, Name: "Nobody"}},
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleList())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
		}
		if lines[0] != "ID,Title,Artists,Album,DurationMS" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != `101,Song One,"Artist One, Guest",Album One,180000` {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if lines[3] != `103,"Loose, Track",Nobody,,` {
			t.Errorf("unexpected row without album or duration: %s", lines[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleList())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Liked tracks",
			"**Tracks**: 3",
			"## Tracks",
			"1. Artist One, Guest - Song One (Album One) [3:00]",
			"2. Host - Episode Two (Show) [1:02:05]",
			"3. Nobody - Loose, Track [-]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleList())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Liked tracks\nTracks: 3\n\n") {
			t.Errorf("unexpected text header:\n%s", output)
		}
		if !strings.Contains(output, "1. Song One (Artist One, Guest)\n") {
			t.Errorf("text missing first track:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleList())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded TrackList
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Title != "Liked tracks" || len(decoded.Tracks) != 3 {
			t.Errorf("unexpected decoded list %+v", decoded)
		}
		if decoded.Tracks[2].DurationMS != nil {
			t.Error("missing duration should stay missing")
		}
	})

	t.Run("ExportToTable", func(t *testing.T) {
		data, err := ExportToTable(sampleList())
		if err != nil {
			t.Fatalf("ExportToTable failed: %v", err)
		}

		output := strings.ToLower(string(data))
		for _, want := range []string{"liked tracks", "title", "song one", "episode two", "1:02:05", "3 tracks"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Empty List", func(t *testing.T) {
		for _, format := range Formats {
			if _, err := Export(&TrackList{Title: "Empty"}, format); err != nil {
				t.Errorf("%s export of empty list failed: %v", format, err)
			}
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"table", FormatTable},
		{" CSV ", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"json", FormatJSON},
		{"text", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("Unknown Format", func(t *testing.T) {
		_, err := ParseFormat("yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestPlaylistsToTable(t *testing.T) {
	output := string(PlaylistsToTable([]models.Playlist{
		{Title: "Morning", TrackCount: 12, Kind: 3},
		{Title: "Evening", TrackCount: 4, Kind: 1005},
	}))

	for _, want := range []string{"INDEX", "Morning", "Evening", "1005"} {
		if !strings.Contains(output, want) {
			t.Errorf("playlist table missing %q, got:\n%s", want, output)
		}
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("To Writer", func(t *testing.T) {
		var sb strings.Builder
		if err := WriteExport(sampleList(), FormatText, "", &sb); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if !strings.Contains(sb.String(), "Song One") {
			t.Errorf("writer missing output, got: %s", sb.String())
		}
	})

	t.Run("To File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "liked.csv")
		if err := WriteExport(sampleList(), FormatCSV, path, os.Stdout); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if !strings.HasPrefix(th.MustReadFile(t, path), "ID,Title") {
			t.Error("file does not contain CSV output")
		}
	})

	t.Run("Writer Error", func(t *testing.T) {
		err := WriteExport(sampleList(), FormatText, "", &th.FWriter{})
		if err == nil {
			t.Error("expected writer error to be returned")
		}
	})
}

func TestPlaysToTable(t *testing.T) {
	d := int64(125000)
	track := models.Track{ID: 42, Title: "Replayed", Artists: []models.ArtistRef{{Name: "Band"}}, DurationMS: &d}
	play := models.NewPlay(7, "session", track, time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC))

	output := string(PlaysToTable([]*models.Play{play}))
	for _, want := range []string{"Replayed", "Band", "42", "2:05"} {
		if !strings.Contains(output, want) {
			t.Errorf("plays table missing %q, got:\n%s", want, output)
		}
	}
}
