// Package client is the data-access layer used by the mobile app.
//
// Every call goes through a two-tier resolution: the primary API, guarded by
// a circuit breaker, and then the secondary backend. The fallback decision is
// made only in Client.do. A request falls through to the secondary when the
// primary fails at the transport level, answers 5xx or has its breaker open.
// Client errors (4xx) from the primary are final and returned as *APIError.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultTripAfter   = 5
	defaultOpenTimeout = 30 * time.Second
)

// Tier identifies which backend answered a request.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
)

// ErrNoBackend is returned when neither tier is configured.
var ErrNoBackend = errors.New("client: no backend configured")

// errServer marks a 5xx answer so the breaker counts it as a failure.
var errServer = errors.New("server error")

// Options configures a Client. SecondaryURL is optional; without it primary
// failures are returned to the caller.
type Options struct {
	PrimaryURL     string
	SecondaryURL   string
	Token          string
	SecondaryToken string // defaults to Token
	Timeout        time.Duration
	// TripAfter is the number of consecutive primary failures that opens the
	// breaker.
	TripAfter   uint32
	OpenTimeout time.Duration
	Logger      zerolog.Logger
}

// APIError is a non-2xx answer decoded from the response envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []FieldError
	Tier    Tier
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api: %d %s: %s", e.Tier, e.Status, e.Code, e.Message)
}

// Client talks to the inspection API with a primary and a fallback backend.
type Client struct {
	primary   *resty.Client
	secondary *resty.Client
	breaker   *gobreaker.CircuitBreaker[*resty.Response]
	log       zerolog.Logger
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	if opts.PrimaryURL == "" && opts.SecondaryURL == "" {
		return nil, ErrNoBackend
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.TripAfter == 0 {
		opts.TripAfter = defaultTripAfter
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	if opts.SecondaryToken == "" {
		opts.SecondaryToken = opts.Token
	}

	c := &Client{log: opts.Logger}
	if opts.PrimaryURL != "" {
		c.primary = newResty(opts.PrimaryURL, opts.Token, opts.Timeout)
		tripAfter := opts.TripAfter
		c.breaker = gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
			Name:        "primary-api",
			MaxRequests: 1,
			Timeout:     opts.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= tripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			},
		})
	}
	if opts.SecondaryURL != "" {
		c.secondary = newResty(opts.SecondaryURL, opts.SecondaryToken, opts.Timeout)
	}
	return c, nil
}

func newResty(baseURL, token string, timeout time.Duration) *resty.Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		r.SetAuthToken(token)
	}
	return r
}

// request describes one API call independently of the backend serving it.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

func (r request) send(ctx context.Context, rc *resty.Client) (*resty.Response, error) {
	req := rc.R().SetContext(ctx)
	if len(r.query) > 0 {
		req.SetQueryParamsFromValues(r.query)
	}
	if r.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.body)
	}
	return req.Execute(r.method, r.path)
}

// do resolves r against the tiers in order and decodes the envelope data
// into out. It returns the tier that produced the answer.
func (c *Client) do(ctx context.Context, r request, out any) (Tier, error) {
	var primaryErr error
	if c.primary != nil {
		resp, err := c.breaker.Execute(func() (*resty.Response, error) {
			resp, err := r.send(ctx, c.primary)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode() >= http.StatusInternalServerError {
				return resp, errServer
			}
			return resp, nil
		})
		if err == nil {
			return TierPrimary, decode(resp, TierPrimary, out)
		}
		if ctx.Err() != nil {
			return TierPrimary, ctx.Err()
		}
		primaryErr = err
		if errors.Is(err, errServer) && resp != nil {
			primaryErr = apiError(resp, TierPrimary)
		}
		if c.secondary == nil {
			return TierPrimary, primaryErr
		}
		c.log.Warn().Err(primaryErr).Str("method", r.method).Str("path", r.path).Msg("primary api unavailable, using secondary backend")
	}

	resp, err := r.send(ctx, c.secondary)
	if err != nil {
		if primaryErr != nil {
			return TierSecondary, fmt.Errorf("secondary backend: %w (primary: %v)", err, primaryErr)
		}
		return TierSecondary, fmt.Errorf("secondary backend: %w", err)
	}
	return TierSecondary, decode(resp, TierSecondary, out)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details []FieldError    `json:"details"`
}

func decode(resp *resty.Response, tier Tier, out any) error {
	if resp.IsError() {
		return apiError(resp, tier)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("%s api: decode envelope: %w", tier, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s api: decode data: %w", tier, err)
	}
	return nil
}

func apiError(resp *resty.Response, tier Tier) *APIError {
	e := &APIError{Status: resp.StatusCode(), Tier: tier}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err == nil {
		e.Code, e.Message, e.Details = env.Code, env.Error, env.Details
	}
	if e.Message == "" {
		e.Message = http.StatusText(e.Status)
	}
	return e
}
