package main

import (
	"errors"
	"flag"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage/migrations"
	"github.com/burenotti/go_classes_backend/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"log/slog"
	"os"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Usage = printUsage
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.MustLoad(configPath)
	if cfg.DB.Driver != config.DriverPostgres {
		logger.Error("migrations only apply to the postgres driver", "driver", cfg.DB.Driver)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	m, err := migrations.New(cfg.DB.DSN)
	if err != nil {
		logger.Error("failed to initialize migrations", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("up failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migrated up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("down failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migrated down")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logger.Error("version failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("version: %d, dirty: %t\n", version, dirty)
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands: up, down, version")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
