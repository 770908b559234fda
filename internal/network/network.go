// Package network ties the configuration holder and the shared task queue
// into one explicit value. Callers construct a Network at startup and pass
// it where fetches are made; Shared returns a lazily built default for code
// that prefers a process-wide instance.
package network

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/phrazzld/netfetch/internal/config"
	"github.com/phrazzld/netfetch/internal/fetch"
	"github.com/phrazzld/netfetch/internal/platform/metrics"
	"github.com/phrazzld/netfetch/internal/task"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Network. Zero values select defaults.
type Options struct {
	Queue      task.QueueConfig
	HTTPClient fetch.Doer
	Logger     *slog.Logger
	Recorder   metrics.Recorder
}

// Network holds the launch options and the task queue fetches run on.
type Network struct {
	holder *config.Holder
	queue  *task.Queue
	client fetch.Doer
	logger *slog.Logger
}

// New creates a Network and starts its queue workers. A zero queue size
// selects task.DefaultQueueConfig's.
func New(opts Options) *Network {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Network{
		holder: config.NewHolder(),
		queue:  task.NewQueue(opts.Queue, opts.Logger, opts.Recorder),
		client: opts.HTTPClient,
		logger: opts.Logger,
	}
}

// FromConfig creates a Network from loaded configuration. When metrics are
// enabled the queue collectors are registered with reg.
func FromConfig(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Network, error) {
	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		p, err := metrics.NewPrometheus(cfg.Metrics.Namespace, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		recorder = p
	}

	return New(Options{
		Queue: task.QueueConfig{
			WorkerCount: cfg.Queue.WorkerCount,
			Size:        cfg.Queue.Size,
		},
		Logger:   logger,
		Recorder: recorder,
	}), nil
}

var (
	sharedOnce sync.Once
	shared     *Network
)

// Shared returns the process-wide default Network, creating it on first use
// with default options and slog.Default(). It is never closed.
func Shared() *Network {
	sharedOnce.Do(func() {
		shared = New(Options{})
	})
	return shared
}

// Bootstrap stores the launch options, replacing any earlier value.
func (n *Network) Bootstrap(opts *config.LaunchOptions) {
	n.holder.Bootstrap(opts)
	n.logger.Debug("network bootstrapped", "options_set", opts != nil)
}

// LaunchOptions returns the options from the last Bootstrap, or nil.
func (n *Network) LaunchOptions() *config.LaunchOptions {
	return n.holder.Current()
}

// Submit enqueues t on the Network's queue.
func (n *Network) Submit(t task.Task) error {
	return n.queue.Submit(t)
}

// Queue returns the underlying task queue.
func (n *Network) Queue() *task.Queue {
	return n.queue
}

// Close stops accepting tasks and waits for queued ones to finish.
func (n *Network) Close() {
	n.queue.Shutdown()
}

// NewInvoker returns an Invoker for rawURL that uses n's HTTP client and logger.
func NewInvoker[T any](n *Network, rawURL string) *fetch.Invoker[T] {
	return fetch.NewInvoker[T](rawURL,
		fetch.WithHTTPClient(n.client),
		fetch.WithLogger(n.logger))
}

// Fetch schedules a GET of rawURL on n's queue. completion receives the
// Result unless the returned task is cancelled before a worker starts it.
func Fetch[T any](n *Network, rawURL string, completion func(fetch.Result[T])) (*task.FetchTask[T], error) {
	t, err := task.NewFetchTask(NewInvoker[T](n, rawURL), completion, n.logger)
	if err != nil {
		return nil, err
	}
	if err := n.Submit(t); err != nil {
		return nil, fmt.Errorf("failed to submit fetch of %s: %w", rawURL, err)
	}
	return t, nil
}
