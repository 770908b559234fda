package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/phrazzld/netfetch/internal/config"
	"github.com/phrazzld/netfetch/internal/fetch"
	"github.com/phrazzld/netfetch/internal/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get URL [URL...]",
		Short: "Fetch each URL and print its JSON body on one line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so stdout carries only result lines.
			cfg, l, err := initializeApp(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			n, err := network.FromConfig(cfg, l, reg)
			if err != nil {
				return err
			}
			n.Bootstrap(&config.LaunchOptions{})

			runErr := runGet(n, args, cmd.OutOrStdout())
			n.Close()

			if cfg.Metrics.Enabled {
				if err := writeMetrics(reg, cmd.ErrOrStderr()); err != nil {
					l.Error("failed to write metrics", "error", err)
				}
			}
			return runErr
		},
	}
}

// runGet fetches every URL on n's queue, waits for all of them, and writes
// one line per URL in argument order. Failures are collected into the
// returned error.
func runGet(n *network.Network, urls []string, out io.Writer) error {
	results := make([]fetch.Result[json.RawMessage], len(urls))
	submitErrs := make([]error, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		_, err := network.Fetch(n, u, func(r fetch.Result[json.RawMessage]) {
			defer wg.Done()
			results[i] = r
		})
		if err != nil {
			submitErrs[i] = err
			wg.Done()
		}
	}
	wg.Wait()

	var errs *multierror.Error
	for i, u := range urls {
		if submitErrs[i] != nil {
			fmt.Fprintf(out, "%s\terror=%v\n", u, submitErrs[i])
			errs = multierror.Append(errs, submitErrs[i])
			continue
		}

		r := results[i]
		if !r.IsSuccess() {
			fmt.Fprintf(out, "%s\terror=%s\n", u, r.Kind())
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", u, r.Err()))
			continue
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, r.Value()); err != nil {
			compact.Reset()
			compact.Write(r.Value())
		}
		fmt.Fprintf(out, "%s\t%s\n", u, compact.String())
	}

	return errs.ErrorOrNil()
}

// writeMetrics dumps every gathered family in the Prometheus text format.
func writeMetrics(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
