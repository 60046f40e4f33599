// Package apify wraps the Apify actor-run API for contact scraping.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

const defaultBaseURL = "https://api.apify.com"

// Run statuses reported by the platform.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
)

// ErrRunFailed indicates the actor run ended in a non-success state.
var ErrRunFailed = eris.New("apify: actor run failed")

// Run describes one actor execution.
type Run struct {
	ID               string `json:"id"`
	ActorID          string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Finished reports whether the run reached a terminal state.
func (r *Run) Finished() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}

// Client starts actor runs and fetches their results.
type Client interface {
	StartRun(ctx context.Context, actorID string, input any) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	WaitForRun(ctx context.Context, runID string) (*Run, error)
	DatasetItems(ctx context.Context, datasetID string, out any) error
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

// WithPollInterval sets how often WaitForRun polls run status.
func WithPollInterval(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithWaitTimeout caps how long WaitForRun blocks before giving up.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// WithRetryBackoff sets the base delay between retries of transient request
// failures.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.retryBackoff = d
		}
	}
}

type httpClient struct {
	token        string
	baseURL      string
	pollInterval time.Duration
	waitTimeout  time.Duration
	retryBackoff time.Duration
	http         *http.Client
}

// NewClient creates an Apify API client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:        token,
		baseURL:      defaultBaseURL,
		pollInterval: 5 * time.Second,
		waitTimeout:  5 * time.Minute,
		retryBackoff: 500 * time.Millisecond,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StartRun launches the actor asynchronously with the given input.
func (c *httpClient) StartRun(ctx context.Context, actorID string, input any) (*Run, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal actor input")
	}

	body, err := c.do(ctx, http.MethodPost, "/v2/acts/"+actorID+"/runs", payload)
	if err != nil {
		return nil, err
	}
	return unwrapRun(body)
}

// GetRun fetches the current state of a run.
func (c *httpClient) GetRun(ctx context.Context, runID string) (*Run, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/actor-runs/"+runID, nil)
	if err != nil {
		return nil, err
	}
	return unwrapRun(body)
}

// WaitForRun polls until the run reaches a terminal state. A terminal state
// other than SUCCEEDED returns ErrRunFailed alongside the run.
func (c *httpClient) WaitForRun(ctx context.Context, runID string) (*Run, error) {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if run.Finished() {
			if run.Status != StatusSucceeded {
				return run, eris.Wrapf(ErrRunFailed, "status %s", run.Status)
			}
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "apify: wait for run")
		case <-ticker.C:
		}
	}
}

// DatasetItems decodes the run's output dataset into out.
func (c *httpClient) DatasetItems(ctx context.Context, datasetID string, out any) error {
	body, err := c.do(ctx, http.MethodGet, "/v2/datasets/"+datasetID+"/items", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "apify: unmarshal dataset items")
	}
	return nil
}

// do issues the request, retrying transient failures (5xx, timeouts,
// connection resets) with backoff.
func (c *httpClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.InitialBackoff = c.retryBackoff
	cfg.OnRetry = resilience.RetryLogger("apify", method+" "+path)

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.doOnce(ctx, method, path, payload)
	})
}

func (c *httpClient) doOnce(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?token="+c.token, reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "apify: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apify: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := eris.Errorf("apify: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

// unwrapRun peels the platform's {"data": ...} envelope.
func unwrapRun(body []byte) (*Run, error) {
	var envelope struct {
		Data Run `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal run")
	}
	if envelope.Data.ID == "" {
		return nil, eris.New("apify: empty run in response")
	}
	return &envelope.Data, nil
}
