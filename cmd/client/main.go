package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/iudanet/taskkeeper/internal/client/api"
	"github.com/iudanet/taskkeeper/internal/client/auth"
	"github.com/iudanet/taskkeeper/internal/client/cli"
	"github.com/iudanet/taskkeeper/internal/client/iocli"
	"github.com/iudanet/taskkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:5000", "Server URL")
	dbPath := flag.String("db", "taskkeeper-client.db", "Path to local session database")
	flag.Usage = func() { cli.PrintUsage(os.Stderr) }

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	// Логи клиента только для предупреждений, вывод команд идет через iocli
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := run(*serverURL, *dbPath, args, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			cli.PrintUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

func run(serverURL, dbPath string, args []string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	apiClient := api.NewClient(serverURL)
	authService := auth.NewService(apiClient, boltStorage, serverURL, logger)

	return cli.New(iocli.NewStdio(), authService, apiClient).Run(ctx, args[0], args[1:])
}

func printVersion() {
	fmt.Printf("TaskKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
