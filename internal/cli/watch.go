package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/codalotl/draftpatch/internal/config"
	"github.com/codalotl/draftpatch/internal/session"
	"github.com/codalotl/draftpatch/internal/watch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newWatchCommand(e *env) *cobra.Command {
	var metricsAddr string
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Record every save of a file as a manual edit until interrupted",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			ctx := cmd.Context()
			// Fail early when there is no session.
			if err := e.view(ctx, func(config.Config, *session.Session) error { return nil }); err != nil {
				return err
			}
			if _, err := os.Stat(a[0]); err != nil {
				return err
			}

			if metricsAddr != "" {
				stop, err := e.serveMetrics(ctx, metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
			}

			out := cmd.OutOrStdout()
			w := &watch.Watcher{
				Path:     a[0],
				Debounce: debounce,
				Logger:   e.logger,
				OnChange: func(text string) {
					err := e.mutate(ctx, func(_ config.Config, s *session.Session) error {
						printSummary(out, s.ApplyManualEdit(text))
						return nil
					})
					if err != nil {
						e.logger.Error("record manual edit", "file", a[0], "error", err)
						fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					}
				},
			}
			fmt.Fprintf(out, "watching %s (Ctrl-C to stop)\n", a[0])
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a change is recorded")
	return cmd
}

// serveMetrics serves /metrics from the env registry until ctx is done or stop is called.
func (e *env) serveMetrics(ctx context.Context, addr string) (stop func(), err error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return nil, fmt.Errorf("metrics server: %w", err)
	case <-time.After(50 * time.Millisecond):
	}
	e.logger.Info("serving metrics", "addr", addr)

	go func() {
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server", "error", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
