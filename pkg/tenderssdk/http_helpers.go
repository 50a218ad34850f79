package tenderssdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBody caps how much of a response is buffered. An enriched
// expiring batch of a few hundred rows stays well under it.
const maxResponseBody = 8 << 20

// doRequest sends a request without credentials. Session layers the
// Authorization header on top of it.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("tenderssdk: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tenderssdk: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// decodeJSON consumes resp. A status other than want becomes an *APIError,
// otherwise the body is decoded into target.
func decodeJSON(resp *http.Response, target any, want int) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("tenderssdk: read body: %w", err)
	}
	if resp.StatusCode != want {
		if apiErr := parseErrorResponse(resp, raw); apiErr != nil {
			return apiErr
		}
		return fmt.Errorf("tenderssdk: status %d, want %d", resp.StatusCode, want)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("tenderssdk: decode body: %w", err)
	}
	return nil
}

// drain discards what is left of a response so the connection is reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
