package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/ymx/internal/formatter"
	"github.com/desertthunder/ymx/internal/repositories"
	"github.com/desertthunder/ymx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Account prints the account the configured token belongs to.
func (r *Runner) Account(ctx context.Context, cmd *cli.Command) error {
	client, _, err := r.services(ctx)
	if err != nil {
		return err
	}

	account, err := client.Account(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(account, true)
	}

	r.writePlainHeader("Account")
	r.writePlain("UID:     %d\n", account.UID)
	r.writePlain("Login:   %s\n", account.Login)
	r.writePlain("Name:    %s\n", account.DisplayName)
	return nil
}

// Liked lists the user's liked tracks, music only unless --all is set.
func (r *Runner) Liked(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	client, _, err := r.services(ctx)
	if err != nil {
		return err
	}

	uid, err := client.AccountIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to identify account: %w", err)
	}

	list := &formatter.TrackList{Title: "Liked tracks"}
	if cmd.Bool("all") {
		list.Tracks, err = client.LikedTracks(ctx, uid)
	} else {
		list.Tracks, err = client.LikedMusicTracks(ctx, uid)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch liked tracks: %w", err)
	}
	r.logMissingDurations(list.Tracks)

	return formatter.WriteExport(list, format, cmd.String("output"), r.output)
}

// Playlists lists the user's playlists with their selection index.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	client, _, err := r.services(ctx)
	if err != nil {
		return err
	}

	uid, err := client.AccountIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to identify account: %w", err)
	}

	playlists, err := client.Playlists(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	_, err = r.output.Write(formatter.PlaylistsToTable(playlists))
	return err
}

// Playlist lists the tracks of the playlist at the given index.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("index")
	if arg == "" {
		return fmt.Errorf("%w: playlist index", shared.ErrMissingArgument)
	}
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return fmt.Errorf("%w: playlist index %q", shared.ErrInvalidArgument, arg)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	client, _, err := r.services(ctx)
	if err != nil {
		return err
	}

	uid, err := client.AccountIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to identify account: %w", err)
	}

	playlists, err := client.Playlists(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}
	if index >= len(playlists) {
		return fmt.Errorf("%w: index %d of %d", shared.ErrPlaylistNotFound, index, len(playlists))
	}

	pl := playlists[index]
	tracks, err := client.TracksFromPlaylist(ctx, pl)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}
	r.logMissingDurations(tracks)

	list := &formatter.TrackList{Title: pl.Title, Tracks: tracks}
	return formatter.WriteExport(list, format, cmd.String("output"), r.output)
}

// History lists the most recent recorded plays.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, err := repositories.NewPlayRepository(db).Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(plays) == 0 {
		return r.writePlain("No plays recorded yet.\n")
	}

	_, err = r.output.Write(formatter.PlaysToTable(plays))
	return err
}
