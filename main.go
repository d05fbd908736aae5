// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/danielhkuo/voteguard/biometric"
	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/db"
	"github.com/danielhkuo/voteguard/election"
	"github.com/danielhkuo/voteguard/fraud"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/ocr"
	"github.com/danielhkuo/voteguard/router"
	"github.com/danielhkuo/voteguard/verification"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		color.Red("Error parsing flags: %v", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		color.Red("Error initializing logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		logger.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema ready", "type", cfg.DatabaseType)

	faces := biometric.NewDeepFaceClient(biometric.DeepFaceConfig{
		BaseURL: cfg.DeepFaceURL,
		Model:   cfg.DeepFaceModel,
		Timeout: cfg.DeepFaceTimeout,
		Retries: cfg.DeepFaceRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OCR is optional; a nil reader skips document field extraction.
	var reader verification.DocumentReader
	if cfg.GeminiAPIKey != "" {
		g, err := ocr.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("gemini client failed", "error", err)
			os.Exit(1)
		}
		defer g.Close()
		reader = g
	} else {
		logger.Warning("GEMINI_API_KEY not set; document OCR disabled")
	}

	var counter fraud.Counter
	if cfg.CounterBackend == cliparse.CounterRedis {
		rc, err := fraud.NewRedisCounter(cfg.RedisAddr)
		if err != nil {
			logger.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		counter = rc
	}

	svc, err := router.NewServices(dbConn, cfg, faces, reader, counter)
	if err != nil {
		logger.Error("service setup failed", "error", err)
		os.Exit(1)
	}
	mux := router.NewRouter(svc, cfg)

	sweeper, err := election.NewSweeper(svc.Elections, cfg.ElectionSweepSpec)
	if err != nil {
		logger.Error("invalid election sweep schedule", "spec", cfg.ElectionSweepSpec, "error", err)
		os.Exit(1)
	}
	sweeper.Start()

	server := &http.Server{
		Handler:           middleware.CORS(middleware.MaxBytes(cfg.MaxUploadBytes, mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never go idle on their own.
	server.RegisterOnShutdown(svc.Store.Feed.Close)

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Error("listen failed", "addr", server.Addr, "error", err)
		os.Exit(1)
	}

	logger.Info("listening", "port", cfg.Port, "counter", cfg.CounterBackend)
	if err := serve(ctx, server, ln, shutdownGrace); err != nil {
		logger.Error("server closed", "error", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	sweeper.Stop(stopCtx)
	logger.Info("server closed")
}

const shutdownGrace = 10 * time.Second

// serve runs server on ln until ctx is cancelled, then waits up to grace for
// in-flight requests to finish before returning.
func serve(ctx context.Context, server *http.Server, ln net.Listener, grace time.Duration) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		drained <- server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-drained
}
