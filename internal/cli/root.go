package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hupe1980/wikiflow"
	"github.com/hupe1980/wikiflow/metrics/prom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	Verbose     bool
	MetricsAddr string
}

// NewRootCommand creates the root command of the wikiflow CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wikiflow",
		Short: "Derive knowledge bases from Wikidata dumps",
		Long: `wikiflow partitions RDF dumps by predicate and evaluates dataflow plans
over the partitions to derive a schema.org knowledge base.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "wikiflow.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	cmd.AddCommand(NewPartitionCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCatCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))

	return cmd
}

// openFlow loads the config and opens a Flow. The returned function closes
// the flow and the metrics server.
func openFlow(ctx context.Context, opts *RootOptions) (*wikiflow.Flow, func(), error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	flowOpts, err := cfg.Options(ctx, opts.Verbose)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	var srv *http.Server
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		flowOpts = append(flowOpts, wikiflow.WithMetricsCollector(prom.New(reg)))

		ln, err := net.Listen("tcp", opts.MetricsAddr)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to listen for metrics", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() { _ = srv.Serve(ln) }()
	}

	flow, err := wikiflow.Open(ctx, flowOpts...)
	if err != nil {
		if srv != nil {
			_ = srv.Close()
		}
		return nil, nil, WrapExitError(ExitFailure, "failed to open flow", err)
	}

	return flow, func() {
		_ = flow.Close()
		if srv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				_ = srv.Close()
			}
		}
	}, nil
}
