package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/shared"
)

const playColumns = `id, sequence, session_id, track_id, title, artists, duration_ms, played_at, created_at, updated_at, deleted_at`

// PlayRepository implements models.Repository[*models.Play] for play history.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new PlayRepository with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Create inserts a new [models.Play] into the database with generated ID and sequence
func (r *PlayRepository) Create(play *models.Play) error {
	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "plays")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO plays (id, sequence, session_id, track_id, title, artists, duration_ms, played_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		play.SessionID(),
		uint64(play.TrackID()),
		play.Title(),
		play.Artists(),
		play.DurationMS(),
		play.PlayedAt(),
		play.CreatedAt(),
		play.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}

	play.SetID(id)
	play.SetSequence(sequence)
	return nil
}

// Get retrieves a play by ID, excluding soft-deleted records
func (r *PlayRepository) Get(id string) (*models.Play, error) {
	query := `SELECT ` + playColumns + ` FROM plays WHERE id = ? AND deleted_at IS NULL`

	play, err := scanPlay(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("play not found: %s", id)
	}
	return play, err
}

// Update modifies the descriptive fields of an existing play
func (r *PlayRepository) Update(play *models.Play) error {
	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	play.SetUpdatedAt(now)

	query := `
		UPDATE plays
		SET title = ?, artists = ?, duration_ms = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, play.Title(), play.Artists(), play.DurationMS(), now, play.ID())
	if err != nil {
		return fmt.Errorf("failed to update play: %w", err)
	}

	return expectOneRow(result, "play", play.ID())
}

// Delete soft-deletes a play by ID
func (r *PlayRepository) Delete(id string) error {
	query := `UPDATE plays SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete play: %w", err)
	}

	return expectOneRow(result, "play", id)
}

// List retrieves plays matching the given criteria in play order.
//
// Supported criteria: "session_id" (string), "track_id" ([models.TrackID]), "limit" (int, most recent N).
func (r *PlayRepository) List(criteria map[string]any) ([]*models.Play, error) {
	query := `SELECT ` + playColumns + ` FROM plays WHERE deleted_at IS NULL`
	args := []any{}

	if session, ok := criteria["session_id"].(string); ok && session != "" {
		query += " AND session_id = ?"
		args = append(args, session)
	}

	if trackID, ok := criteria["track_id"].(models.TrackID); ok && trackID != 0 {
		query += " AND track_id = ?"
		args = append(args, uint64(trackID))
	}

	limit, _ := criteria["limit"].(int)
	if limit > 0 {
		query += " ORDER BY sequence DESC LIMIT ?"
		args = append(args, limit)
	} else {
		query += " ORDER BY sequence ASC"
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []*models.Play
	for rows.Next() {
		play, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, play)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if limit > 0 {
		slices.Reverse(plays)
	}

	return plays, nil
}

// Recent returns the last limit plays, oldest first.
func (r *PlayRepository) Recent(limit int) ([]*models.Play, error) {
	return r.List(map[string]any{"limit": limit})
}

// CountByTrack returns how many times a track has been played.
func (r *PlayRepository) CountByTrack(id models.TrackID) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM plays WHERE track_id = ? AND deleted_at IS NULL`, uint64(id)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPlay scans a single row into a [models.Play]
func scanPlay(row scanner) (*models.Play, error) {
	var (
		id         string
		sequence   int
		sessionID  string
		trackID    uint64
		title      string
		artists    string
		durationMS int64
		playedAt   time.Time
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &sessionID, &trackID, &title, &artists, &durationMS, &playedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play: %w", err)
	}

	play := models.NewPlay(sequence, sessionID, models.Track{ID: models.TrackID(trackID), Title: title}, playedAt)
	play.SetID(id)
	play.SetArtists(artists)
	play.SetDurationMS(durationMS)
	play.SetCreatedAt(createdAt)
	play.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		play.SetDeletedAt(&deletedAt.Time)
	}

	return play, nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found or already deleted: %s", entity, id)
	}
	return nil
}
