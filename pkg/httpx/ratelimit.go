package httpx

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/tenders/pkg/slogx"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow tokens refill evenly
// over Window, and at most Burst can be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int

	// TrustProxy keys clients by X-Forwarded-For / X-Real-IP instead of
	// the connection address.
	TrustProxy bool
}

func (c RateLimitConfig) clientIP() KeyExtractor {
	if c.TrustProxy {
		return ForwardedIPKeyExtractor
	}
	return IPKeyExtractor
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Every(c.Window / time.Duration(c.RequestsPerWindow))
}

// Rate limit profiles. Login and refresh use Strict, the search proxy uses
// Moderate since every call fans out upstream.
var (
	StrictLimit   = RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}
	LenientLimit  = RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120}
	PublicLimit   = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

// RateLimitProfiles groups the four profiles so they can be overridden as a
// unit from configuration.
type RateLimitProfiles struct {
	Strict, Moderate, Lenient, Public RateLimitConfig
}

// DefaultRateLimitProfiles returns the built-in profiles.
func DefaultRateLimitProfiles() RateLimitProfiles {
	return RateLimitProfiles{
		Strict:   StrictLimit,
		Moderate: ModerateLimit,
		Lenient:  LenientLimit,
		Public:   PublicLimit,
	}
}

// RateLimitProfilesFromEnv applies RATELIMIT_<PROFILE>_* overrides on top
// of the defaults. RATELIMIT_TRUST_PROXY=true applies to every profile.
func RateLimitProfilesFromEnv() RateLimitProfiles {
	p := DefaultRateLimitProfiles()
	p.Strict = ParseRateLimitFromEnv("STRICT", p.Strict)
	p.Moderate = ParseRateLimitFromEnv("MODERATE", p.Moderate)
	p.Lenient = ParseRateLimitFromEnv("LENIENT", p.Lenient)
	p.Public = ParseRateLimitFromEnv("PUBLIC", p.Public)

	if trust, err := strconv.ParseBool(os.Getenv("RATELIMIT_TRUST_PROXY")); err == nil && trust {
		p.Strict.TrustProxy = true
		p.Moderate.TrustProxy = true
		p.Lenient.TrustProxy = true
		p.Public.TrustProxy = true
	}
	return p
}

// ParseRateLimitFromEnv overrides def from RATELIMIT_<prefix>_REQUESTS,
// _WINDOW_SEC and _BURST. Values that are not positive integers are
// ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil && n > 0
}

// buckets is the per key limiter table. A bucket untouched for longer than
// its ttl has refilled completely, so evicting it is invisible to callers.
type buckets struct {
	cfg   RateLimitConfig
	table *ttlcache.Cache[string, *rate.Limiter]

	mu    sync.Mutex
	swept time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{
		cfg:   cfg,
		table: ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](2 * cfg.Window)),
		swept: time.Now(),
	}
}

func (b *buckets) get(key string) *rate.Limiter {
	item, _ := b.table.GetOrSet(key, rate.NewLimiter(b.cfg.limit(), b.cfg.Burst))
	b.sweep()
	return item.Value()
}

// sweep drops expired buckets at most once a minute.
func (b *buckets) sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if time.Since(b.swept) < time.Minute {
		return
	}
	b.swept = time.Now()
	b.table.DeleteExpired()
}

// RateLimitMiddleware rejects requests over cfg with a 429, bucketing them
// by the key the extractor returns. Requests with no key pass unlimited.
func RateLimitMiddleware(cfg RateLimitConfig, key KeyExtractor) Middleware {
	b := newBuckets(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key, request not limited", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			lim := b.get(k)
			if lim.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := lim.Reserve()
			wait := res.Delay()
			res.Cancel()
			retryAfter := max(int(wait.Seconds()), 1)

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			h := w.Header()
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			h.Set("X-RateLimit-Window", cfg.Window.String())
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "too many requests, try again later",
			})
		})
	}
}

// RateLimitByIP buckets by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, cfg.clientIP())
}

// RateLimitByUser buckets by authenticated subject and client address. It
// must sit behind SessionMiddleware.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", UserIDKeyExtractor, cfg.clientIP()))
}

// RateLimitByIPAndJSONField buckets by client address plus a JSON body
// field, e.g. the email of a login attempt.
func RateLimitByIPAndJSONField(cfg RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", cfg.clientIP(), JSONFieldKeyExtractor(field)))
}
