// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It also holds the
// launch options a Network is bootstrapped with, keeping both separate from
// the fetch and task logic that consumes them.
package config
