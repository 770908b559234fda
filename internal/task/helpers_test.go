package task

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/netfetch/internal/platform/metrics"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// funcDoer serves requests from a function so tests never touch the network.
type funcDoer struct {
	calls atomic.Int32
	fn    func(req *http.Request) (*http.Response, error)
}

func (d *funcDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return d.fn(req)
}

func jsonDoer(status int, body string) *funcDoer {
	return &funcDoer{fn: func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Request:    req,
		}, nil
	}}
}

// recordedOutcome is one TaskFinished call seen by fakeRecorder.
type recordedOutcome struct {
	taskType string
	status   string
}

// fakeRecorder captures metrics calls.
type fakeRecorder struct {
	mu        sync.Mutex
	accepted  int
	rejected  int
	outcomes  []recordedOutcome
	finishedC chan struct{}
}

var _ metrics.Recorder = (*fakeRecorder)(nil)

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{finishedC: make(chan struct{}, 100)}
}

func (r *fakeRecorder) TaskSubmitted(_ string, accepted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if accepted {
		r.accepted++
	} else {
		r.rejected++
	}
}

func (r *fakeRecorder) TaskFinished(taskType string, status string, _ time.Duration) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, recordedOutcome{taskType: taskType, status: status})
	r.mu.Unlock()
	r.finishedC <- struct{}{}
}

func (r *fakeRecorder) snapshot() (accepted, rejected int, outcomes []recordedOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accepted, r.rejected, append([]recordedOutcome(nil), r.outcomes...)
}
