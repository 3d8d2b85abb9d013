package cms

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bedside/internal/adapters/observability"
)

// Client talks to the CMS provider-data API to pull performance measures
// for facilities and clinicians. Requests are client-side rate limited,
// retried on 429/transient 5xx, and decoded straight into maps since the
// datasets are loosely shaped.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrNotFound     = errors.New("cms: not found")
	ErrUnauthorized = errors.New("cms: unauthorized")
	ErrForbidden    = errors.New("cms: forbidden")
)

// FacilityMeasures fetches the hospital measure record for a facility id.
func (c *Client) FacilityMeasures(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	err := c.getObserved(ctx, fmt.Sprintf("%s/facilities/%s/measures", c.base, id), "facility_measures", &out)
	return out, err
}

// ClinicianMeasures fetches the QPP/MIPS record for a clinician NPI.
func (c *Client) ClinicianMeasures(ctx context.Context, npi string) (map[string]any, error) {
	var out map[string]any
	err := c.getObserved(ctx, fmt.Sprintf("%s/clinicians/%s/measures", c.base, npi), "clinician_measures", &out)
	return out, err
}

func (c *Client) getObserved(ctx context.Context, url, endpoint string, out any) error {
	start := time.Now()
	status, err := c.get(ctx, url, out)
	observability.ObserveExternal("cms", endpoint, status, time.Since(start))
	return err
}

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After
// when provided. Returns the final HTTP status for metrics (0 when the
// request never completed).
func (c *Client) get(ctx context.Context, url string, out any) (int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "bedside/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return resp.StatusCode, err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return resp.StatusCode, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return resp.StatusCode, ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return resp.StatusCode, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return resp.StatusCode, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			code := resp.StatusCode
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", code)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return code, ctx.Err()
			}
			return code, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			code := resp.StatusCode
			resp.Body.Close()
			return code, fmt.Errorf("bad status %d: %s", code, strings.TrimSpace(string(b)))
		}
	}

	return 0, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
