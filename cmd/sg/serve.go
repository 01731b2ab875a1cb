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

	"github.com/fractionaljobsuk/skillgraph/internal/config"
	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/server"
	"github.com/fractionaljobsuk/skillgraph/internal/snapshot"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
	"github.com/fractionaljobsuk/skillgraph/internal/store/postgres"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the skillgraph HTTP and gRPC server",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := cfg.Logger(os.Stderr)
		slog.SetDefault(logger)

		// Postgres backs the jobs and user graphs; without it only the role
		// taxonomies are served.
		var st store.Store
		if cfg.DatabaseURL != "" {
			pg, err := postgres.Open(cmd.Context(), cfg.DatabaseURL, postgres.DefaultPool)
			if err != nil {
				return err
			}
			st = pg
			defer st.Close()
		} else {
			logger.Info("database disabled (SKILLGRAPH_DATABASE_URL not set)")
		}

		publisher, subscriber, err := eventBus(cfg, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		defer subscriber.Close()

		providers := provider.New(st)
		srv := server.New(providers, server.Options{
			Params:    cfg.LayoutParams(),
			Canvas:    cfg.Canvas(),
			Publisher: publisher,
			Logger:    logger,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := srv.StartRefresh(ctx, subscriber); err != nil {
			return err
		}

		grpcServer := server.NewGRPCServer(srv, cfg.AuthToken)
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSnapshots(cfg, providers, st != nil, logger)

		logger.Info("skillgraph server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
			"max_ticks", cfg.MaxTicks,
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("snapshot scheduler stopped")
		}

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.CloseSessions()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		cancel()
		logger.Info("shutdown complete")
		return nil
	},
}

// eventBus connects refresh publishing and subscription to NATS, or to one
// shared in-process bus when no NATS URL is configured.
func eventBus(cfg *config.Config, logger *slog.Logger) (events.Publisher, events.Subscriber, error) {
	if cfg.NATSURL == "" {
		logger.Info("refresh events are in-process only (SKILLGRAPH_NATS_URL not set)")
		bus := events.NewLocalBus()
		return bus, bus, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, nil, err
	}
	sub, err := events.NewNATSSubscriber(cfg.NATSURL)
	if err != nil {
		pub.Close()
		return nil, nil, err
	}
	logger.Info("refresh events enabled", "nats_url", cfg.NATSURL)
	return pub, sub, nil
}

// startSnapshots runs the snapshot scheduler when an interval and at least
// one destination are configured. It returns nil otherwise.
func startSnapshots(cfg *config.Config, f snapshot.Fetcher, withJobs bool, logger *slog.Logger) *snapshot.Scheduler {
	if cfg.SnapshotInterval <= 0 {
		return nil
	}
	var dests []snapshot.Destination
	if cfg.SnapshotS3Bucket != "" {
		d, err := snapshot.NewS3Destination(context.Background(),
			cfg.SnapshotS3Bucket, cfg.SnapshotPrefix, cfg.SnapshotS3Region, cfg.SnapshotS3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 snapshot destination", "err", err)
		} else {
			dests = append(dests, d)
			logger.Info("snapshot S3 destination enabled", "bucket", cfg.SnapshotS3Bucket, "prefix", cfg.SnapshotPrefix)
		}
	}
	if cfg.SnapshotDir != "" {
		d, err := snapshot.NewDirDestination(cfg.SnapshotDir)
		if err != nil {
			logger.Error("failed to create snapshot directory", "err", err)
		} else {
			dests = append(dests, d)
			logger.Info("snapshot directory enabled", "dir", cfg.SnapshotDir)
		}
	}
	if len(dests) == 0 {
		logger.Warn("snapshot interval set but no destination configured")
		return nil
	}

	s := snapshot.NewScheduler(f, dests, snapshot.Options{
		Sources:  snapshot.DefaultSources(withJobs),
		Canvas:   cfg.Canvas(),
		Params:   cfg.LayoutParams(),
		Interval: cfg.SnapshotInterval,
	}, logger)
	s.Start()
	logger.Info("snapshot scheduler started", "interval", cfg.SnapshotInterval)
	return s
}
