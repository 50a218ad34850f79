// Package boamp talks to the BOAMP open data API (opendatasoft explore v2.1)
// and turns award notices into contract records with an inferred end date.
package boamp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

const (
	// DefaultBaseURL is the BOAMP dataset on the DILA opendatasoft portal.
	DefaultBaseURL = "https://boamp-datadila.opendatasoft.com/api/explore/v2.1/catalog/datasets/boamp"

	// DefaultTimeout bounds every single upstream call.
	DefaultTimeout = 15 * time.Second

	maxBodyBytes  = 8 << 20
	maxErrorBytes = 4 << 10
)

// Request kinds reported to the Observer.
const (
	KindSearch = "search"
	KindLinked = "linked"
)

// Observer receives per call telemetry. Implemented by the metrics package.
type Observer interface {
	ObserveUpstream(kind string, status int, elapsed time.Duration)
	ObserveEnrichment(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, int, time.Duration) {}
func (nopObserver) ObserveEnrichment(string)                   {}

// Config wires a Client. Zero values fall back to the defaults.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Policy      Policy
	Concurrency int
	Observer    Observer

	// Now is the clock used for the search window.
	Now func() time.Time
}

// Client is safe for concurrent use.
type Client struct {
	base        *url.URL
	http        *http.Client
	timeout     time.Duration
	policy      Policy
	concurrency int
	obs         Observer
	now         func() time.Time
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("boamp: invalid base url %q", raw)
	}

	c := &Client{
		base:        base,
		http:        cfg.HTTPClient,
		timeout:     cfg.Timeout,
		policy:      cfg.Policy,
		concurrency: cfg.Concurrency,
		obs:         cfg.Observer,
		now:         cfg.Now,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}
	if c.obs == nil {
		c.obs = nopObserver{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if err := c.policy.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// search runs the primary query. A zero total count yields an empty slice
// without looking at the results.
func (c *Client) search(ctx context.Context, q url.Values) ([]rawRecord, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, KindSearch, q, &resp); err != nil {
		return nil, err
	}
	if resp.TotalCount == 0 {
		return []rawRecord{}, nil
	}
	return resp.Results, nil
}

// linked fetches the notice with the given web id. ok is false when
// upstream has no such notice.
func (c *Client) linked(ctx context.Context, idweb string) (rec rawRecord, ok bool, err error) {
	var resp searchResponse
	if err := c.getJSON(ctx, KindLinked, linkedQuery(idweb), &resp); err != nil {
		return rawRecord{}, false, err
	}
	if len(resp.Results) == 0 {
		return rawRecord{}, false, nil
	}
	return resp.Results[0], true, nil
}

// getJSON performs one GET against /records with its own timeout and
// decodes the body into out. Every failure is an *UpstreamError.
func (c *Client) getJSON(ctx context.Context, kind string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.base
	u.Path += "/records"
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.obs.ObserveUpstream(kind, 0, time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) {
			return &UpstreamError{Body: "timeout", Err: fmt.Errorf("%s request timed out after %s: %w", kind, c.timeout, err)}
		}
		return &UpstreamError{Err: err}
	}
	defer res.Body.Close()
	c.obs.ObserveUpstream(kind, res.StatusCode, time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBytes))
		return &UpstreamError{Status: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(out); err != nil {
		slogx.FromContext(ctx).Error("upstream body decode failed", "kind", kind, "err", err)
		return &UpstreamError{Status: res.StatusCode, Err: fmt.Errorf("decode %s response: %w", kind, err)}
	}
	return nil
}
