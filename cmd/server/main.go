package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"

	"github.com/iudanet/taskkeeper/internal/server"
	"github.com/iudanet/taskkeeper/internal/server/config"
	"github.com/iudanet/taskkeeper/internal/server/handlers"
	"github.com/iudanet/taskkeeper/internal/server/publish"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config file (env overrides it)")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	displayAppname("TaskKeeper")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStorage(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()
	logger.Info("storage opened", slog.String("driver", cfg.Database.Driver))

	// nil интерфейс, а не nil *S3Publisher: иначе маршрут публикации зарегистрируется
	var publisher handlers.CalendarPublisher
	if cfg.S3.Enabled() {
		p, err := publish.NewS3Publisher(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to init calendar publisher: %w", err)
		}
		publisher = p
		logger.Info("calendar publishing enabled", slog.String("bucket", cfg.S3.Bucket))
	}

	srv, err := server.New(cfg, logger, store, publisher, Version)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// newLogger создает slog логгер по LOG_LEVEL и LOG_FORMAT (text или json)
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func printVersion() {
	fmt.Printf("TaskKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
