package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/ymx/internal/models"
)

// HistoryRecorder implements playback.Recorder using PlayRepository.
type HistoryRecorder struct {
	repo *PlayRepository
}

// NewHistoryRecorder creates a new HistoryRecorder with the given repository
func NewHistoryRecorder(repo *PlayRepository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// RecordPlay stores one play of track in the given session.
func (h *HistoryRecorder) RecordPlay(sessionID string, track models.Track, at time.Time) error {
	if err := h.repo.Create(models.NewPlay(0, sessionID, track, at)); err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	return nil
}
