package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/gemini-drive/internal/bootstrap"
	"github.com/kirillkom/gemini-drive/internal/config"
	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/observability/logging"
	"github.com/kirillkom/gemini-drive/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeAnalyzeFile(ctx, func(handlerCtx context.Context, job domain.AnalysisJob) error {
		analyzeCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartAnalysis()
		start := time.Now()
		analyzeErr := app.AnalyzeUC.AnalyzeByID(analyzeCtx, job)
		workerMetrics.FinishAnalysis("worker", time.Since(start), analyzeErr)
		return analyzeErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
