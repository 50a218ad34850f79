package tenderssdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Session holds the token pair for one logged in user and sends
// authenticated requests. A 401 triggers one refresh and one replay; while
// a refresh is in flight every other 401 waits for it instead of starting
// its own. Safe for concurrent use.
type Session struct {
	client *SDKClient
	store  TokenStore

	mu     sync.RWMutex
	tokens Tokens
	// gen is bumped by Logout. A refresh started under an older gen
	// discards its result.
	gen uint64

	refresh singleflight.Group
}

func newSession(c *SDKClient, store TokenStore, t Tokens) *Session {
	return &Session{client: c, store: store, tokens: t}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.RefreshToken
}

// Logout drops the tokens locally and from the store. The server keeps no
// session state so there is nothing to revoke.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.gen++

	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

// Do sends an authenticated request. body, when non nil, is sent as JSON.
// A 401 is retried once after a refresh; the second response is returned
// whatever its status. The caller closes the response body.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		payload = b
	}

	used := s.AccessToken()
	if used == "" && s.RefreshToken() == "" {
		return nil, ErrNoSession
	}

	resp, err := s.send(ctx, method, path, payload, used)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || s.RefreshToken() == "" {
		return resp, nil
	}
	drain(resp)

	fresh, err := s.refreshAfter(ctx, used)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, method, path, payload, fresh)
}

func (s *Session) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	headers := map[string]string{}
	if payload != nil {
		body = bytes.NewReader(payload)
		headers["Content-Type"] = "application/json"
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return s.client.doRequest(ctx, method, path, body, headers)
}

// refreshAfter returns an access token newer than stale, refreshing at
// most once for all concurrent callers. A caller whose stale token was
// already replaced gets the current one without a refresh call.
func (s *Session) refreshAfter(ctx context.Context, stale string) (string, error) {
	if current := s.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	v, err, _ := s.refresh.Do("refresh", func() (any, error) {
		s.mu.RLock()
		current, refreshToken, gen := s.tokens.AccessToken, s.tokens.RefreshToken, s.gen
		s.mu.RUnlock()
		if current != "" && current != stale {
			return current, nil
		}
		if refreshToken == "" {
			return "", ErrNoSession
		}

		// Shared by every waiter, so one caller giving up must not fail it
		// for the others.
		out, err := s.client.Refresh(context.WithoutCancel(ctx), refreshToken)
		if err != nil {
			return "", err
		}

		// The store is written under mu so a concurrent Logout cannot be
		// undone by a late Save.
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return "", ErrNoSession
		}
		s.tokens.AccessToken = out.AccessToken

		if s.store != nil {
			if err := s.store.Save(s.tokens); err != nil {
				return "", fmt.Errorf("save tokens: %w", err)
			}
		}
		return out.AccessToken, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return v.(string), nil
}

// doJSON runs Do and decodes a 200 response into out.
func (s *Session) doJSON(ctx context.Context, method, path string, in, out any) error {
	resp, err := s.Do(ctx, method, path, in)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}
