package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus("netfetch", reg)
	require.NoError(t, err)

	p.TaskSubmitted("fetch", true)
	p.TaskSubmitted("fetch", true)
	p.TaskSubmitted("fetch", false)
	p.TaskFinished("fetch", "completed", 15*time.Millisecond)
	p.TaskFinished("fetch", "cancelled", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.submitted.WithLabelValues("fetch", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.submitted.WithLabelValues("fetch", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.finished.WithLabelValues("fetch", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.finished.WithLabelValues("fetch", "cancelled")))

	expected := `
# HELP netfetch_queue_tasks_finished_total Tasks that left a worker, by type and final status.
# TYPE netfetch_queue_tasks_finished_total counter
netfetch_queue_tasks_finished_total{status="cancelled",task_type="fetch"} 1
netfetch_queue_tasks_finished_total{status="completed",task_type="fetch"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "netfetch_queue_tasks_finished_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(p.duration))
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus("netfetch", reg)
	require.NoError(t, err)

	_, err = NewPrometheus("netfetch", reg)
	assert.Error(t, err, "registering the same collectors twice should fail")
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.TaskSubmitted("fetch", true)
		r.TaskFinished("fetch", "completed", time.Second)
	})
}
