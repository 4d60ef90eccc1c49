package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"roi-capture/internal/backend"
	"roi-capture/internal/config"
	"roi-capture/internal/events"
	"roi-capture/internal/job"
	"roi-capture/internal/metrics"
	"roi-capture/internal/preview"
	"roi-capture/internal/service"
	"roi-capture/pkg/logger"
)

func main() {
	jobPath := flag.String("job", "capture.yaml", "capture job file")
	envFile := flag.String("env", ".env", "optional env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	j, err := job.Load(*jobPath)
	fatalOnErr(err, "load job")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsPort != 0 {
		metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	// Events are optional; a broker outage must not block a capture.
	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQEnabled {
		rp, err := events.NewRabbitPublisher(events.Config{
			URL:        cfg.RabbitMQURL,
			Exchange:   cfg.RabbitMQExchange,
			RoutingKey: cfg.RabbitMQRoutingKey,
		}, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, continuing without events", zap.Error(err))
		} else {
			publisher = rp
			defer rp.Close()
		}
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, log)
	session := service.NewCaptureSession(client, publisher, log)

	previewDir := j.PreviewDir
	if previewDir == "" {
		previewDir = cfg.PreviewDir
	}
	writer := preview.NewWriter(previewDir, log)
	if cfg.PreviewRetention > 0 {
		if _, err := writer.Prune(cfg.PreviewRetention); err != nil {
			log.Warn("failed to prune previews", zap.Error(err))
		}
	}

	runner := &Runner{
		Session: session,
		Writer:  writer,
		Logger:  log,
	}

	log.Info("starting capture",
		zap.String("session_id", session.ID()),
		zap.String("backend", cfg.BackendURL),
		zap.String("video", j.Video),
	)

	summary, err := runner.Run(ctx, j)
	if err != nil {
		log.Error("capture failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("capture finished",
		zap.Int("previews", summary.PreviewTotal),
		zap.Strings("written", summary.Written),
		zap.Int("saved_count", summary.SavedCount),
		zap.String("saved_dir", summary.SavedDir),
	)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
