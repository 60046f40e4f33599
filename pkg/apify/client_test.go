package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/acts/some~actor/runs", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		var input map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "acme.com", input["domain"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"run-1","actId":"some~actor","status":"READY","defaultDatasetId":"ds-1"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	run, err := c.StartRun(context.Background(), "some~actor", map[string]any{"domain": "acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, StatusReady, run.Status)
	assert.Equal(t, "ds-1", run.DefaultDatasetID)
	assert.False(t, run.Finished())
}

func TestWaitForRun_Succeeds(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/actor-runs/run-1", r.URL.Path)
		status := StatusRunning
		if polls.Add(1) >= 3 {
			status = StatusSucceeded
		}
		w.Write([]byte(`{"data":{"id":"run-1","status":"` + status + `","defaultDatasetId":"ds-1"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL), WithPollInterval(time.Millisecond))
	run, err := c.WaitForRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, run.Status)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestWaitForRun_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"run-1","status":"FAILED"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL), WithPollInterval(time.Millisecond))
	run, err := c.WaitForRun(context.Background(), "run-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunFailed)
	require.NotNil(t, run)
	assert.Equal(t, StatusFailed, run.Status)
}

func TestWaitForRun_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"run-1","status":"RUNNING"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL),
		WithPollInterval(5*time.Millisecond), WithWaitTimeout(20*time.Millisecond))
	_, err := c.WaitForRun(context.Background(), "run-1")
	assert.Error(t, err)
}

func TestDatasetItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/datasets/ds-1/items", r.URL.Path)
		w.Write([]byte(`[{"fullName":"Jane Doe","position":"Owner"},{"fullName":"Bob Smith","position":"Intern"}]`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))

	var items []struct {
		FullName string `json:"fullName"`
		Position string `json:"position"`
	}
	require.NoError(t, c.DatasetItems(context.Background(), "ds-1", &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Jane Doe", items[0].FullName)
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"token-not-found"}}`))
	}))
	defer srv.Close()

	c := NewClient("bad-token", WithBaseURL(srv.URL))
	_, err := c.GetRun(context.Background(), "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestUnwrapRun_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.GetRun(context.Background(), "run-1")
	assert.Error(t, err)
}

func TestGetRun_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"id":"run-1","status":"SUCCEEDED","defaultDatasetId":"ds-1"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL), WithRetryBackoff(time.Millisecond))
	run, err := c.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, run.Status)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetRun_NoRetryOnClientError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL), WithRetryBackoff(time.Millisecond))
	_, err := c.GetRun(context.Background(), "run-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
