// HTTP plumbing shared by the metadata client and the link resolver
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/ymx/internal/shared"
	"golang.org/x/oauth2"
)

// tokenType is sent in place of "Bearer": the service expects "Authorization: OAuth <token>".
const tokenType = "OAuth"

// NewHTTPClient builds the single [http.Client] used for every request of a session.
//
// The token is attached by an [oauth2.Transport] backed by a static token source.
// A non-empty userAgent is set on each request.
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration, userAgent string) (*http.Client, error) {
	if token == "" {
		return nil, shared.ErrMissingCredentials
	}

	base := http.DefaultTransport
	if userAgent != "" {
		base = &userAgentTransport{agent: userAgent, next: base}
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: tokenType})
	client := &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: base},
		Timeout:   timeout,
	}
	return client, nil
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(r)
}

// send performs a request and returns the response body.
//
// Failures are classified: connection errors, unreadable bodies and 5xx
// responses wrap [shared.ErrTransport]; 401/403 wrap [shared.ErrAuth]; any
// other non-2xx status wraps [shared.ErrAPIRequest].
func (c *Client) send(ctx context.Context, method, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", shared.ErrAuth, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", shared.ErrTransport, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return body, nil
}
