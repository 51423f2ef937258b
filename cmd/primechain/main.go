package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/primechain/primechain/internal/chain"
	"github.com/primechain/primechain/internal/config"
	"github.com/primechain/primechain/internal/node"
	"github.com/primechain/primechain/internal/web"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "HTTP server listen port")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent mining workers raced per round")
	flag.DurationVar(&cfg.TargetTime, "target-time", cfg.TargetTime, "desired wall-clock time per mining round")
	flag.Uint64Var(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "per-worker iteration bound per round (0 = unbounded)")
	flag.Uint64Var(&cfg.NLimit, "n-limit", cfg.NLimit, "initial upper bound on factors b and d")
	nDigits := flag.Uint("min-digits", uint(cfg.MinDigits), "initial decimal digit count for factors a and c")
	flag.Float64Var(&cfg.MinProb, "min-prob", cfg.MinProb, "initial heuristic prime-probability threshold")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for persistent data (empty = in-memory chain)")
	flag.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "secret for the X-API-Key gate on /mine and /chain (empty = disabled)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "primechain - proof-of-prime blockchain node\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n  primechain [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  API_KEY                 Override -api-key\n")
		fmt.Fprintf(os.Stderr, "  PRIMECHAIN_DATA_DIR     Override -data-dir\n")
		fmt.Fprintf(os.Stderr, "  LOG_LEVEL               Override -log-level\n")
	}

	flag.Parse()
	// Range-check before the narrowing cast so an oversized flag value
	// cannot wrap into a valid digit count.
	if *nDigits > 9 {
		return fmt.Errorf("invalid config: min-digits must be 1-9")
	}
	cfg.MinDigits = uint32(*nDigits)

	// Environment variables override flags (for containerized deployments)
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PRIMECHAIN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting primechain",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("workers", cfg.Workers),
		zap.Duration("target_time", cfg.TargetTime),
		zap.Bool("api_key_gate", cfg.APIKey != ""),
	)

	// Open the block store.
	var store chain.BlockStore
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		store, err = chain.NewBoltStore(filepath.Join(cfg.DataDir, "chain.db"), logger)
		if err != nil {
			return fmt.Errorf("open chain store: %w", err)
		}
	} else {
		logger.Warn("no data dir configured, chain will not survive restarts")
		store = chain.NewMemoryStore()
	}

	ledger, err := chain.NewLedger(store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("open ledger: %w", err)
	}

	n := node.NewNode(cfg, ledger, logger)
	defer n.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: web.NewHandler(n, cfg.APIKey, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}
