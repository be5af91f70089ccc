// package formatter renders track and playlist listings in various formats (text, CSV, Markdown, JSON, table)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/shared"
)

// Format names an output format accepted by --format.
type Format string

const (
	FormatTable    Format = "table"
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists every supported format in help order.
var Formats = []Format{FormatTable, FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		return FormatMarkdown, nil
	}
	if !lo.Contains(Formats, f) {
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
	return f, nil
}

// TrackList is a titled, ordered list of tracks.
type TrackList struct {
	Title  string         `json:"title"`
	Tracks []models.Track `json:"tracks"`
}

func albumTitle(t models.Track) string {
	if album, ok := t.PrimaryAlbum(); ok {
		return album.Title
	}
	return ""
}

func duration(t models.Track) string {
	if t.DurationMS == nil {
		return "-"
	}
	return shared.FormatDuration(*t.DurationMS)
}

// ExportToCSV converts a TrackList to CSV format with columns: ID, Title, Artists, Album, Duration (ms)
func ExportToCSV(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Album", "DurationMS"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range list.Tracks {
		ms := ""
		if track.DurationMS != nil {
			ms = strconv.FormatInt(*track.DurationMS, 10)
		}
		record := []string{
			track.ID.String(),
			track.Title,
			track.ArtistNames(),
			albumTitle(track),
			ms,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a TrackList to Markdown format
func ExportToMarkdown(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(list.Tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range list.Tracks {
		albumPart := ""
		if album := albumTitle(track); album != "" {
			albumPart = fmt.Sprintf(" (%s)", album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.ArtistNames(), track.Title, albumPart, duration(track))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a TrackList to plain text format
func ExportToText(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", list.Title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(list.Tracks))

	for i, track := range list.Tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, track.String())
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a TrackList to indented JSON
func ExportToJSON(list *TrackList) ([]byte, error) {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToTable renders a TrackList as a box-drawn table.
//
// Non-music tracks are dimmed so filtered and unfiltered listings can be told apart.
func ExportToTable(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(table.StyleLight)
	t.SetTitle(list.Title)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Artists", "Album", "Duration"})

	for i, track := range list.Tracks {
		style := fmt.Sprint
		if !track.IsMusic() {
			style = text.FgHiBlack.Sprint
		}
		t.AppendRow(table.Row{
			i + 1,
			uint64(track.ID),
			style(track.Title),
			style(track.ArtistNames()),
			style(albumTitle(track)),
			duration(track),
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d tracks", len(list.Tracks))})
	t.Render()

	return buf.Bytes(), nil
}

// Export renders list in the requested format.
func Export(list *TrackList, format Format) ([]byte, error) {
	switch format {
	case FormatTable:
		return ExportToTable(list)
	case FormatText:
		return ExportToText(list)
	case FormatCSV:
		return ExportToCSV(list)
	case FormatMarkdown:
		return ExportToMarkdown(list)
	case FormatJSON:
		return ExportToJSON(list)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// PlaylistsToTable renders the user's playlists with their selection index.
func PlaylistsToTable(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Index", "Title", "Tracks", "Kind"})
	for i, p := range playlists {
		t.AppendRow(table.Row{i, p.Title, p.TrackCount, uint64(p.Kind)})
	}
	t.Render()

	return buf.Bytes()
}

// WriteExport renders list and writes it to path, or to w when path is empty.
func WriteExport(list *TrackList, format Format, path string, w io.Writer) error {
	data, err := Export(list, format)
	if err != nil {
		return err
	}

	if path == "" {
		_, err = w.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}

// PlaysToTable renders play history entries, oldest first.
func PlaysToTable(plays []*models.Play) []byte {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Played", "Track", "Title", "Artists", "Duration"})
	for _, p := range plays {
		t.AppendRow(table.Row{
			p.Sequence(),
			p.PlayedAt().Local().Format("2006-01-02 15:04"),
			p.TrackID().String(),
			p.Title(),
			p.Artists(),
			shared.FormatDuration(p.DurationMS()),
		})
	}
	t.Render()

	return buf.Bytes()
}
