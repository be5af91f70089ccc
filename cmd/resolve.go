package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/services"
	"github.com/desertthunder/ymx/internal/shared"
	"github.com/urfave/cli/v3"
)

// resolveResult is the --json output of the resolve command.
type resolveResult struct {
	TrackID     models.TrackID              `json:"track_id"`
	Descriptors []models.DownloadDescriptor `json:"descriptors"`
	Selected    models.DownloadDescriptor   `json:"selected"`
	Host        string                      `json:"host"`
	Path        string                      `json:"path"`
	TS          string                      `json:"ts"`
	Sign        string                      `json:"sign"`
	Link        string                      `json:"link"`
}

// Resolve runs the direct-link protocol for one track and optionally downloads it.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("track-id")
	if arg == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	id, err := models.ParseTrackID(arg)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	client, resolver, err := r.services(ctx)
	if err != nil {
		return err
	}

	descriptors, err := resolver.DownloadInfo(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch download info: %w", err)
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("%w: no download descriptors for track %s", shared.ErrResolution, id)
	}

	selected := descriptors[0]
	sd, err := resolver.SigningDescriptor(ctx, selected)
	if err != nil {
		return fmt.Errorf("failed to fetch signing descriptor: %w", err)
	}

	result := resolveResult{
		TrackID:     id,
		Descriptors: descriptors,
		Selected:    selected,
		Host:        sd.Host,
		Path:        sd.Path,
		TS:          sd.TS,
		Sign:        services.Sign(sd),
		Link:        services.DirectLink(sd),
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
	} else {
		r.writePlainHeader(fmt.Sprintf("Track %s", id))
		for i, d := range descriptors {
			marker := " "
			if i == 0 {
				marker = "*"
			}
			r.writePlain("%s %s %d kbps\n", marker, d.Codec, d.BitrateKbps)
		}
		r.writePlain("\nHost: %s\nPath: %s\nTS:   %s\nSign: %s\n", result.Host, result.Path, result.TS, result.Sign)
		r.writePlainln("%s", result.Link)
	}

	output := cmd.String("output")
	if output == "" {
		return nil
	}

	blob, err := resolver.Download(ctx, id, result.Link)
	if err != nil {
		return fmt.Errorf("failed to download track: %w", err)
	}
	if err := os.WriteFile(output, blob.Data, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	r.logger.Info("track downloaded", "track", id, "path", output, "bytes", len(blob.Data))

	track, err := client.FetchTrackDetail(ctx, id, r.config.API.DetailAttempts)
	if err != nil {
		r.logger.Warn("track details unavailable, file left untagged", "track", id, "error", err)
		return nil
	}
	if err := tagFile(output, track); err != nil {
		r.logger.Warn("failed to tag file", "path", output, "error", err)
	}
	return nil
}

// tagFile writes title, artist and album ID3 frames to the MP3 at path.
func tagFile(path string, track models.Track) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(track.Title)
	tag.SetArtist(track.ArtistNames())
	if album, ok := track.PrimaryAlbum(); ok {
		tag.SetAlbum(album.Title)
	}
	if track.Major != nil && track.Major.Name != "" {
		tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, track.Major.Name)
	}

	return tag.Save()
}
