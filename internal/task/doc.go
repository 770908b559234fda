// Package task manages background job queuing, processing, and lifecycle.
// It provides a buffered queue drained by a pool of workers, and a
// cancellable task that wraps a single fetch so it can be scheduled on
// that queue instead of being invoked directly.
package task
