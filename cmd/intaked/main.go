package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kuesten-code/Werkbank-sub000/internal/async"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/core"
	"github.com/kuesten-code/Werkbank-sub000/internal/ingest"
	"github.com/kuesten-code/Werkbank-sub000/internal/repository"
)

const healthInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := core.NewServices(ctx, cfg, reg, logger)
	if err != nil {
		logger.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	if err := repository.HealthCheck(ctx, svc.DB.Pinger(), 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// gRPC health
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go func() {
		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()
	go watchDatabase(ctx, svc.DB.Pinger(), healthServer, logger)

	// metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics serve error", "error", err)
			stop()
		}
	}()

	// inbox -> queue -> pipeline
	ingestor := ingest.NewFSIngestor(svc.Pipeline, cfg.Inbox.OutDir, logger)
	queue := async.NewIntakeQueue(func(ctx context.Context, job async.Job) error {
		res, err := ingestor.IngestPath(ctx, job.Path)
		if err != nil {
			return err
		}
		if !res.Deduplicated {
			logger.Info("result written", "source", res.SourcePath, "output", res.OutputPath)
		}
		return nil
	}, logger,
		async.WithWorkers(cfg.Inbox.Workers),
		async.WithQueueSize(cfg.Inbox.QueueSize),
		async.WithJobTimeout(cfg.Inbox.JobTimeout),
	)

	if err := os.MkdirAll(cfg.Inbox.Dir, 0o755); err != nil {
		logger.Error("failed to create inbox", "dir", cfg.Inbox.Dir, "error", err)
		os.Exit(1)
	}
	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Inbox.Dir},
		InitialScan: cfg.Inbox.InitialScan,
		SkipHidden:  true,
		Debounce:    cfg.Inbox.Debounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start inbox watcher", "dir", cfg.Inbox.Dir, "error", err)
		os.Exit(1)
	}

	forwardEvents(ctx, events, watchErrs, queue, logger)

	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Inbox.JobTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown", "error", err)
	}
	grpcServer.GracefulStop()
}

// watchDatabase flips the overall gRPC health status with database reachability.
func watchDatabase(ctx context.Context, p repository.Pinger, hs *health.Server, logger *slog.Logger) {
	t := time.NewTicker(healthInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			status := grpc_health_v1.HealthCheckResponse_SERVING
			if err := repository.HealthCheck(ctx, p, 5*time.Second, logger); err != nil {
				status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			}
			hs.SetServingStatus("", status)
		}
	}
}
