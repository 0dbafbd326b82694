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

	"github.com/spf13/cobra"

	"github.com/kilianp07/workplan/api/runs"
	"github.com/kilianp07/workplan/api/schedule"
	"github.com/kilianp07/workplan/app"
	"github.com/kilianp07/workplan/config"
	coremqtt "github.com/kilianp07/workplan/core/mqtt"
	"github.com/kilianp07/workplan/infra/logger"
	inframetrics "github.com/kilianp07/workplan/infra/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scheduling API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// NewMux routes the API and metrics endpoints.
func NewMux(svc *app.Service, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/schedule", schedule.NewHandler(svc, token))
	mux.Handle("/api/runs", runs.NewHandler(runs.QuerierFunc(svc.Runs), token))
	mux.Handle("/metrics", inframetrics.Handler())
	return mux
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("server")
	return withService(cfg, func(svc *app.Service) error {
		return serve(ctx, cfg, svc, log)
	})
}

func serve(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	if cfg.Metrics.PrometheusAddr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}
	if sub, ok := svc.Publisher().(coremqtt.Subscriber); ok {
		if err := svc.ListenMQTT(ctx, sub); err != nil {
			return fmt.Errorf("mqtt requests: %w", err)
		}
		log.Infof("accepting schedule requests over mqtt")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           NewMux(svc, cfg.Server.Token),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}()
	log.Infof("listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
