// Package metrics instruments the task queue with Prometheus collectors.
// Components depend on the Recorder interface; Nop satisfies it when
// metrics are disabled.
package metrics
