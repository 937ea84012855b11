package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// refresher runs at most one token refresh at a time. Callers that arrive while
// a refresh is in flight queue up and receive its result in arrival order.
type refresher struct {
	refresh func(ctx context.Context) error
	current func() string

	mu       sync.Mutex
	inFlight bool
	waiters  []chan error
}

func newRefresher(refresh func(ctx context.Context) error, current func() string) *refresher {
	return &refresher{refresh: refresh, current: current}
}

// Do joins the in-flight refresh or starts one, and returns its outcome.
// sentToken is the access token the rejected request carried; if a refresh has
// already replaced it, Do returns nil at once and the caller just replays.
func (r *refresher) Do(ctx context.Context, sentToken string) error {
	r.mu.Lock()
	if r.inFlight {
		ch := make(chan error, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if current := r.current(); current != "" && current != sentToken {
		r.mu.Unlock()
		return nil
	}
	r.inFlight = true
	r.mu.Unlock()

	err := errRefreshAborted
	// Settles even if refresh panics so later 401s are not stuck behind a dead flight
	defer func() { r.settle(err) }()

	// The refresh outlives the caller that started it; waiters depend on it
	err = r.refresh(context.WithoutCancel(ctx))
	return err
}

func (r *refresher) settle(err error) {
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.inFlight = false
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
}

// refreshAccessToken exchanges the refresh token for a new access token. It does
// not pass through Do, so a 401 here is final. Any failure logs the customer out.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		c.tokens.Logout(ctx)
		return ErrRefreshFailed
	}

	resp, _, err := c.send(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/refresh",
		Body:   map[string]string{"refresh_token": refreshToken},
	}, false)
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		err = newAPIError(resp)
	}

	var accessToken string
	if err == nil {
		accessToken = resp.Get("data.accessToken").String()
		if accessToken == "" {
			err = fmt.Errorf("refresh response has no access token")
		}
	}

	if err != nil {
		c.log.WithError(err).Warn("Token refresh failed, logging out")
		c.tokens.Logout(ctx)
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	c.tokens.SetAccessToken(ctx, accessToken)
	c.log.Debug("Access token refreshed")
	return nil
}
