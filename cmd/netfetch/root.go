package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/netfetch/internal/config"
	"github.com/phrazzld/netfetch/internal/platform/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCommand builds the command tree. Flags are bound to a fresh viper
// instance so they take precedence over NETFETCH_* variables and the config
// file.
func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "netfetch",
		Short:         "Fetch and decode JSON over HTTP on a worker queue",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.Int("workers", config.DefaultQueueWorkerCount, "number of concurrent fetches (0 = GOMAXPROCS)")
	flags.Int("queue-size", config.DefaultQueueSize, "maximum number of pending fetches")
	flags.Bool("metrics", false, "print queue metrics after the run")

	// Only flags the user actually set override other sources.
	bindings := map[string]string{
		"log.level":          "log-level",
		"queue.worker_count": "workers",
		"queue.size":         "queue-size",
		"metrics.enabled":    "metrics",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}

	root.AddCommand(newGetCommand(v))
	return root
}

// initializeApp loads configuration and sets up logging on logOut.
func initializeApp(v *viper.Viper, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.SetupWithWriter(cfg.Log, logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Debug("configuration loaded",
		"log_level", cfg.Log.Level,
		"worker_count", cfg.Queue.WorkerCount,
		"queue_size", cfg.Queue.Size,
		"metrics_enabled", cfg.Metrics.Enabled)

	return cfg, l, nil
}
