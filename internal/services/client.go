// Metadata client for the music service API
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/shared"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.music.yandex.net"
	// DefaultDetailAttempts is the per-track attempt budget used by [Client.LikedTracks].
	DefaultDetailAttempts = 2
)

// ClientOpts configures a [Client]. Zero values fall back to defaults.
type ClientOpts struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *log.Logger
	RateLimit      float64 // requests per second, 0 for unlimited
	DetailAttempts int
}

// Client talks to the metadata endpoints of the music service.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *log.Logger
	detailAttempts int
}

// NewClient creates a metadata client.
func NewClient(opts ClientOpts) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	attempts := opts.DetailAttempts
	if attempts < 1 {
		attempts = DefaultDetailAttempts
	}

	return &Client{
		baseURL:        baseURL,
		httpClient:     httpClient,
		limiter:        rate.NewLimiter(limit, 1),
		logger:         logger,
		detailAttempts: attempts,
	}
}

// doRequest sends a request to endpoint (relative to the base URL) and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, result any) error {
	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	body, err := c.send(ctx, method, apiURL)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("%w: failed to decode response from %s: %v", shared.ErrParse, endpoint, err)
		}
	}

	return nil
}

// Account returns the authenticated account record.
func (c *Client) Account(ctx context.Context) (*models.Account, error) {
	var resp envelope[accountStatus]
	if err := c.doRequest(ctx, http.MethodGet, "/account/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result.Account, nil
}

// AccountIdentity returns the numeric uid of the authenticated account.
func (c *Client) AccountIdentity(ctx context.Context) (uint64, error) {
	account, err := c.Account(ctx)
	if err != nil {
		return 0, err
	}
	if account.UID == 0 {
		return 0, fmt.Errorf("%w: account status has no uid", shared.ErrAuth)
	}
	return account.UID, nil
}

// LikedTrackRefs returns the user's liked track references.
func (c *Client) LikedTrackRefs(ctx context.Context, uid uint64) ([]models.TrackRef, error) {
	var resp envelope[likesResult]
	endpoint := fmt.Sprintf("/users/%d/likes/tracks", uid)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Library.Tracks, nil
}

// FetchTrackDetail fetches metadata for a single track.
//
// Only transport failures are retried, up to maxAttempts in total. A malformed
// body fails immediately with [shared.ErrParse].
func (c *Client) FetchTrackDetail(ctx context.Context, id models.TrackID, maxAttempts int) (models.Track, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	query := url.Values{"trackIds": {id.String()}}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Track{}, err
		}

		var resp envelope[[]models.Track]
		err := c.doRequest(ctx, http.MethodPost, "/tracks", query, &resp)
		if err == nil {
			if len(resp.Result) == 0 {
				return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
			}
			return resp.Result[0], nil
		}

		if !errors.Is(err, shared.ErrTransport) {
			return models.Track{}, err
		}

		lastErr = err
		c.logger.Debug("track detail attempt failed", "track", id, "attempt", attempt, "of", maxAttempts, "error", err)
	}

	return models.Track{}, lastErr
}

// LikedTracks fetches details for every liked track concurrently.
//
// Tracks whose detail fetch fails are dropped from the result; each drop is
// logged and the total is reported once. The order of the liked listing is kept.
func (c *Client) LikedTracks(ctx context.Context, uid uint64) ([]models.Track, error) {
	refs, err := c.LikedTrackRefs(ctx, uid)
	if err != nil {
		return nil, err
	}

	results := make([]*models.Track, len(refs))
	var dropped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			track, err := c.FetchTrackDetail(gctx, ref.ID, c.detailAttempts)
			if err != nil {
				dropped.Add(1)
				c.logger.Warn("dropping liked track", "track", ref.ID, "error", err)
				return nil
			}
			results[i] = &track
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks := lo.FilterMap(results, func(t *models.Track, _ int) (models.Track, bool) {
		if t == nil {
			return models.Track{}, false
		}
		return *t, true
	})

	if n := dropped.Load(); n > 0 {
		c.logger.Warn("some liked tracks could not be fetched", "dropped", n, "total", len(refs))
	}

	for _, t := range tracks {
		if t.DurationMS == nil {
			c.logger.Debug("track has no duration", "track", t.ID, "title", t.Title)
		}
	}

	return tracks, nil
}

// LikedMusicTracks returns [Client.LikedTracks] restricted to tracks whose primary album is music.
func (c *Client) LikedMusicTracks(ctx context.Context, uid uint64) ([]models.Track, error) {
	tracks, err := c.LikedTracks(ctx, uid)
	if err != nil {
		return nil, err
	}
	return FilterMusic(tracks), nil
}

// FilterMusic keeps tracks whose primary album category is music, preserving order.
func FilterMusic(tracks []models.Track) []models.Track {
	return lo.Filter(tracks, func(t models.Track, _ int) bool {
		return t.IsMusic()
	})
}

// Playlists lists the user's playlists.
func (c *Client) Playlists(ctx context.Context, uid uint64) ([]models.Playlist, error) {
	var resp envelope[[]models.Playlist]
	endpoint := fmt.Sprintf("/users/%d/playlists/list", uid)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// TracksFromPlaylist fetches a playlist's tracks in playlist order. Entries without track metadata are skipped.
func (c *Client) TracksFromPlaylist(ctx context.Context, playlist models.Playlist) ([]models.Track, error) {
	var resp envelope[playlistResult]
	endpoint := fmt.Sprintf("/users/%d/playlists/%d", uint64(playlist.OwnerUID), uint64(playlist.Kind))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		if errors.Is(err, shared.ErrAPIRequest) {
			return nil, fmt.Errorf("%w: %q: %v", shared.ErrPlaylistNotFound, playlist.Title, err)
		}
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Result.Tracks))
	for _, item := range resp.Result.Tracks {
		if item.Track != nil {
			tracks = append(tracks, *item.Track)
		}
	}
	return tracks, nil
}
