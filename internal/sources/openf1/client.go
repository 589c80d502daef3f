// Package openf1 reads session timing and car telemetry from the OpenF1
// REST API.
package openf1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkoziy/paddock/internal/cache"
	"github.com/mkoziy/paddock/internal/ratelimit"
)

// DefaultBaseURL is the public OpenF1 endpoint.
const DefaultBaseURL = "https://api.openf1.org/v1"

const userAgent = "paddock-importer"

// StatusError is a non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Client handles OpenF1 API requests.
type Client struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	cache      cache.Cache
	baseURL    string
	maxRetries int
}

// NewClient creates a new OpenF1 client. A nil cache disables caching.
func NewClient(baseURL string, timeout time.Duration, limiter ratelimit.Limiter, c cache.Cache, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		cache:      c,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
	}
}

// Meetings lists the meetings of a year.
func (c *Client) Meetings(ctx context.Context, year int) ([]Meeting, error) {
	return list[Meeting](ctx, c, "meetings", QueryYear(year))
}

// Sessions lists the sessions of a meeting.
func (c *Client) Sessions(ctx context.Context, meetingKey int) ([]Session, error) {
	return list[Session](ctx, c, "sessions", QueryMeeting(meetingKey))
}

// Drivers lists the drivers entered in a session.
func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]Driver, error) {
	return list[Driver](ctx, c, "drivers", QuerySession(sessionKey))
}

// Laps lists every lap of a session.
func (c *Client) Laps(ctx context.Context, sessionKey int) ([]Lap, error) {
	return list[Lap](ctx, c, "laps", QuerySession(sessionKey))
}

// Stints lists tyre stints of a session.
func (c *Client) Stints(ctx context.Context, sessionKey int) ([]Stint, error) {
	return list[Stint](ctx, c, "stints", QuerySession(sessionKey))
}

// Pits lists pit lane visits of a session.
func (c *Client) Pits(ctx context.Context, sessionKey int) ([]Pit, error) {
	return list[Pit](ctx, c, "pit", QuerySession(sessionKey))
}

// Positions lists position changes of a session.
func (c *Client) Positions(ctx context.Context, sessionKey int) ([]Position, error) {
	return list[Position](ctx, c, "position", QuerySession(sessionKey))
}

// CarData lists the car samples of one driver in a session.
func (c *Client) CarData(ctx context.Context, sessionKey, driverNumber int) ([]CarData, error) {
	return list[CarData](ctx, c, "car_data", QueryDriverSession(sessionKey, driverNumber))
}

func list[T any](ctx context.Context, c *Client, endpoint string, q *Query) ([]T, error) {
	var out []T
	if err := c.get(ctx, endpoint, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get fetches endpoint filtered by q and decodes the JSON array into out.
// OpenF1 answers 404 when a filter matches nothing, which leaves out empty.
func (c *Client) get(ctx context.Context, endpoint string, q *Query, out any) error {
	u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	if body, ok, err := c.cache.Get(u); err != nil {
		slog.Debug("openf1: cache read failed", "url", u, "err", err)
	} else if ok {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode cached %s: %w", endpoint, err)
		}
		return nil
	}

	var body []byte
	err := ratelimit.Retry(ctx, c.limiter, c.maxRetries, retryable, func() error {
		var ferr error
		body, ferr = c.fetch(ctx, u)
		if ferr != nil {
			slog.Debug("openf1: request failed", "endpoint", endpoint, "err", ferr)
		}
		return ferr
	})
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if err := c.cache.Put(u, body); err != nil {
		slog.Warn("openf1: cache write failed", "url", u, "err", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
