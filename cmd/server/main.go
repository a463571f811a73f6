/*
Package main is the entry point for the Weatherline server.

It is responsible for loading configuration, initializing the global logging
system, connecting the database pool, starting the optional ops HTTP listener
and the TCP acceptor, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherline/internal/app/batch"
	"weatherline/internal/app/db"
	"weatherline/internal/app/server"
	"weatherline/internal/app/session"
	"weatherline/internal/app/store"
	"weatherline/internal/configs"
	"weatherline/internal/ops"
	"weatherline/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("ops_addr", cfg.OpsAddr).
		Dur("read_timeout", cfg.ReadTimeout).
		Bool("s3_batch_source", cfg.S3Enabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect the database pool and apply migrations.
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to the database")
	}
	defer pool.Close()

	// Assemble the batch source for admin uploads.
	var remoteCfg *batch.RemoteConfig
	if cfg.S3Enabled() {
		remoteCfg = &batch.RemoteConfig{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}
	}
	source, err := batch.NewResolver(remoteCfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize batch source")
	}

	machine := session.NewMachine(store.NewPostgres(pool), source, *logx.Logger())
	srv := server.New(cfg, machine)

	// Optional ops listener for health probes.
	var opsServer *http.Server
	if cfg.OpsAddr != "" {
		opsServer = &http.Server{
			Addr:         cfg.OpsAddr,
			Handler:      ops.Router(pool),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		go func() {
			logx.Info(fmt.Sprintf("Ops endpoint starting on http://localhost%s", cfg.OpsAddr))
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Fatal(err, "Ops endpoint failed to start")
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx)
	}()

	select {
	case <-ctx.Done():
		logx.Info("Received shutdown signal. Starting graceful shutdown...")
		// The cancelled context stops the acceptor and running sessions;
		// wait for the drain to complete.
		if err := <-serveErr; err != nil {
			logx.Error(err, "Weather server shutdown error")
		}
	case err := <-serveErr:
		if err != nil {
			logx.Fatal(err, "Weather server failed")
		}
	}

	if opsServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()

		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logx.Error(err, "Ops endpoint forced to shutdown")
		}
	}

	logx.Info("Server gracefully stopped.")
}
