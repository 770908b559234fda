package network

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/netfetch/internal/config"
	"github.com/phrazzld/netfetch/internal/fetch"
	"github.com/phrazzld/netfetch/internal/platform/logger"
	"github.com/phrazzld/netfetch/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestNetwork_Bootstrap(t *testing.T) {
	n := New(Options{Logger: logger.Discard()})
	defer n.Close()

	assert.Nil(t, n.LaunchOptions(), "options should be absent before bootstrap")

	n.Bootstrap(&config.LaunchOptions{})
	assert.NotNil(t, n.LaunchOptions())

	n.Bootstrap(nil)
	assert.Nil(t, n.LaunchOptions(), "last bootstrap wins")
}

func TestNetwork_IndependentInstances(t *testing.T) {
	a := New(Options{Logger: logger.Discard()})
	defer a.Close()
	b := New(Options{Logger: logger.Discard()})
	defer b.Close()

	a.Bootstrap(&config.LaunchOptions{})

	assert.NotNil(t, a.LaunchOptions())
	assert.Nil(t, b.LaunchOptions())
	assert.NotSame(t, a.Queue(), b.Queue())
}

func TestShared(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/1":
			_, _ = io.WriteString(w, `{"id":1,"name":"a"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	n := New(Options{
		Queue:      task.QueueConfig{WorkerCount: 2, Size: 10},
		HTTPClient: srv.Client(),
		Logger:     logger.Discard(),
	})
	defer n.Close()

	var mu sync.Mutex
	results := map[string]fetch.Result[user]{}
	var wg sync.WaitGroup
	for _, path := range []string{"/users/1", "/users/2"} {
		wg.Add(1)
		url := srv.URL + path
		_, err := Fetch(n, url, func(r fetch.Result[user]) {
			defer wg.Done()
			mu.Lock()
			results[url] = r
			mu.Unlock()
		})
		require.NoError(t, err)
	}
	wg.Wait()

	ok := results[srv.URL+"/users/1"]
	require.True(t, ok.IsSuccess())
	assert.Equal(t, user{ID: 1, Name: "a"}, ok.Value())

	missing := results[srv.URL+"/users/2"]
	assert.Equal(t, fetch.ErrEmptyURL, missing.Kind())
}

func TestFetch_AfterClose(t *testing.T) {
	n := New(Options{Logger: logger.Discard()})
	n.Close()

	_, err := Fetch(n, "http://example.com", func(fetch.Result[user]) {})
	assert.ErrorIs(t, err, task.ErrQueueClosed)
}

func TestFromConfig_Metrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"name":"a"}`)
	}))
	defer srv.Close()

	cfg := &config.Config{
		Log:     config.LogConfig{Level: "info"},
		Queue:   config.QueueConfig{WorkerCount: 1, Size: 4},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "test"},
	}
	reg := prometheus.NewRegistry()

	n, err := FromConfig(cfg, logger.Discard(), reg)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Queue().WorkerCount())

	done := make(chan struct{})
	_, err = Fetch(n, srv.URL, func(fetch.Result[user]) { close(done) })
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not complete")
	}
	n.Close()

	count, err := testutil.GatherAndCount(reg, "test_queue_tasks_submitted_total", "test_queue_tasks_finished_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Registering the same namespace again fails cleanly
	_, err = FromConfig(cfg, logger.Discard(), reg)
	assert.Error(t, err)
}

func TestFromConfig_MetricsDisabled(t *testing.T) {
	cfg := &config.Config{
		Log:   config.LogConfig{Level: "info"},
		Queue: config.QueueConfig{Size: 4},
	}
	reg := prometheus.NewRegistry()

	n, err := FromConfig(cfg, logger.Discard(), reg)
	require.NoError(t, err)
	defer n.Close()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
