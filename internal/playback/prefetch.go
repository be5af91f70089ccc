package playback

import (
	"context"

	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/services"
)

// Prefetch is an in-flight background resolution of one track.
//
// The engine holds at most one handle and joins it at most once. Dropping a
// handle does not cancel its goroutine: the resolution runs to completion
// under the session context and its result is discarded.
type Prefetch struct {
	id   models.TrackID
	done chan struct{}
	blob *models.TrackAudioBlob
	err  error
}

func startPrefetch(ctx context.Context, r services.LinkResolver, id models.TrackID) *Prefetch {
	p := &Prefetch{id: id, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.blob, p.err = r.Resolve(ctx, id)
	}()
	return p
}

// TrackID is the track being resolved.
func (p *Prefetch) TrackID() models.TrackID { return p.id }

// Ready reports whether the resolution has finished.
func (p *Prefetch) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the resolution finishes or ctx is done.
func (p *Prefetch) Wait(ctx context.Context) (*models.TrackAudioBlob, error) {
	select {
	case <-p.done:
		return p.blob, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
