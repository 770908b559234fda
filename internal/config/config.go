package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	Queue   QueueConfig   `mapstructure:"queue" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// QueueConfig contains settings for the shared task queue.
type QueueConfig struct {
	// WorkerCount is the number of concurrent workers. Zero means the
	// platform default (GOMAXPROCS).
	WorkerCount int `mapstructure:"worker_count" validate:"gte=0"`
	// Size is the buffer size of the pending task channel.
	Size int `mapstructure:"size" validate:"required,gt=0"`
}

// MetricsConfig contains Prometheus instrumentation settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required,alphanum"`
}

// LaunchOptions are the options a Network is bootstrapped with.
// The set is currently empty.
type LaunchOptions struct{}
