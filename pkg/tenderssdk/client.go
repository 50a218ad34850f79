package tenderssdk

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the tenders API. It provides the
// unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 30 second request timeout, enough for
// an enrichment batch against a slow upstream.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges credentials for a token pair and returns a Session
// holding it. When store is non nil the tokens are saved to it.
func (c *SDKClient) Login(ctx context.Context, email, password string, store TokenStore) (*Session, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}

	tokens := Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
	if store != nil {
		if err := store.Save(tokens); err != nil {
			return nil, err
		}
	}
	return newSession(c, store, tokens), nil
}

// Refresh mints a new access token from a refresh token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.postJSON(ctx, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResumeSession hydrates a Session from previously saved tokens. An empty
// store yields ErrNoSession.
func (c *SDKClient) ResumeSession(store TokenStore) (*Session, error) {
	tokens, err := store.Load()
	if err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		return nil, ErrNoSession
	}
	return newSession(c, store, tokens), nil
}

// Status reports whether the API is up.
func (c *SDKClient) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.getJSON(ctx, "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping calls /api/ping.
func (c *SDKClient) Ping(ctx context.Context) (*PingResponse, error) {
	var out PingResponse
	if err := c.getJSON(ctx, "/api/ping", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness calls /livez.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/livez", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks whether the service and its database are ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}

func (c *SDKClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}
