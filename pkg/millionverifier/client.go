// Package millionverifier wraps the MillionVerifier real-time email
// verification API (v3).
package millionverifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.millionverifier.com"

// Sentinel errors for vendor-reported failure modes that callers distinguish.
var (
	ErrInvalidKey  = eris.New("millionverifier: invalid api key")
	ErrNoCredits   = eris.New("millionverifier: no credits remaining")
	ErrRateLimited = eris.New("millionverifier: rate limited")
)

// VerifyResponse is the vendor's verdict for a single address.
type VerifyResponse struct {
	Email   string `json:"email"`
	Quality string `json:"quality"`
	Result  string `json:"result"`
	Credits int    `json:"credits"`
}

// Client performs verification and balance calls against MillionVerifier.
type Client interface {
	Verify(ctx context.Context, email string) (*VerifyResponse, error)
	Credits(ctx context.Context) (int, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request pacing (2 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithVerifyTimeout sets the vendor-side SMTP probe timeout in seconds
// (the `timeout` query parameter, default 10).
func WithVerifyTimeout(secs int) Option {
	return func(c *httpClient) {
		if secs > 0 {
			c.verifyTimeout = secs
		}
	}
}

type httpClient struct {
	apiKey        string
	baseURL       string
	verifyTimeout int
	http          *http.Client
	limiter       *rate.Limiter
}

// NewClient creates a MillionVerifier API client. Requests are paced to
// 2 req/s by default and time out after 30s.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		verifyTimeout: 10,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Verify checks a single address. 401, 402, and 429 responses map to the
// package sentinel errors; other non-200 statuses return a generic error.
func (c *httpClient) Verify(ctx context.Context, email string) (*VerifyResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "millionverifier: rate limit")
	}

	q := url.Values{}
	q.Set("api", c.apiKey)
	q.Set("email", email)
	q.Set("timeout", strconv.Itoa(c.verifyTimeout))

	body, err := c.get(ctx, "/api/v3/", q)
	if err != nil {
		return nil, err
	}

	var resp VerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "millionverifier: unmarshal verify response")
	}
	if resp.Email == "" {
		resp.Email = email
	}
	return &resp, nil
}

// Credits fetches the remaining balance from the read-only credits endpoint.
func (c *httpClient) Credits(ctx context.Context) (int, error) {
	if err := c.wait(ctx); err != nil {
		return 0, eris.Wrap(err, "millionverifier: rate limit")
	}

	q := url.Values{}
	q.Set("api", c.apiKey)

	body, err := c.get(ctx, "/api/v3/credits", q)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Credits int `json:"credits"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, eris.Wrap(err, "millionverifier: unmarshal credits response")
	}
	return resp.Credits, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "millionverifier: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "millionverifier: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "millionverifier: read response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, ErrInvalidKey
	case http.StatusPaymentRequired:
		return nil, ErrNoCredits
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, eris.Errorf("millionverifier: unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
