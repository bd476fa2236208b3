package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/abhisek/thetacat/internal/api"
	"github.com/abhisek/thetacat/internal/estimation"
	"github.com/abhisek/thetacat/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the estimation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
			cfg.Server.Listen = addr
		}
		logger := newLogger(cfg)

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		bank, err := openBank(cfg)
		if err != nil {
			return err
		}
		defer bank.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		svc := estimation.NewService(estimation.Options{
			Events:      s.EventRepo(),
			Bank:        bank,
			Metrics:     metrics.NewRecorder(reg),
			Logger:      logger,
			Precision:   cfg.Estimator.Precision,
			Verbose:     cfg.Estimator.Verbose,
			Concurrency: cfg.Batch.Concurrency,
		})

		srv := &http.Server{
			Addr: cfg.Server.Listen,
			Handler: api.NewHandler(svc, api.Options{
				MetricsPath:    cfg.Server.MetricsPath,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Gatherer:       reg,
				Logger:         logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", "addr", cfg.Server.Listen, "metrics", cfg.Server.MetricsPath)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
}
