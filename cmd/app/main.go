package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"github.com/burenotti/go_classes_backend/internal/adapter/api"
	"github.com/burenotti/go_classes_backend/internal/adapter/existence"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage/memory"
	classservice "github.com/burenotti/go_classes_backend/internal/app/classes"
	"github.com/burenotti/go_classes_backend/internal/app/messagebus"
	"github.com/burenotti/go_classes_backend/internal/app/unitofwork"
	"github.com/burenotti/go_classes_backend/internal/config"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	bus := messagebus.New(logger)
	bus.RegisterAll(class.EventTypes, logEvent(logger))
	defer bus.Close()

	uow, closeDB := initUnitOfWork(cfg, bus, logger)
	defer closeDB()

	checker := existence.NewClient(existence.Config{
		TrainerBaseURL: cfg.Dependencies.TrainerBaseURL,
		TeamBaseURL:    cfg.Dependencies.TeamBaseURL,
		MemberBaseURL:  cfg.Dependencies.MemberBaseURL,
		Timeout:        cfg.Dependencies.Timeout,
	}, logger)

	service := classservice.New(logger, uow, checker)
	queries := classservice.NewQueryService(uow)

	ctx := context.Background()

	if cfg.Seed.Demo {
		if _, err := service.SeedDemo(ctx, time.Now()); err != nil {
			logger.Error("failed to seed demo classes", "error", err)
		}
	}

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.ClassService(service),
		api.QueryService(queries),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}
	logger.Info("server shutdown")
}

func initUnitOfWork(
	cfg *config.Config,
	bus *messagebus.MessageBus,
	logger *slog.Logger,
) (classservice.UnitOfWork, func()) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		uow := unitofwork.New[*classservice.AtomicContext, *memory.Tx](
			memory.New(),
			classservice.NewMemoryAtomicContext,
			bus,
			logger,
		)
		return uow, func() {}
	default:
		sqlf.SetDialect(sqlf.PostgreSQL)

		db, err := sql.Open("pgx", cfg.DB.DSN)
		if err != nil {
			panic("failed to connect database: " + err.Error())
		}

		uow := unitofwork.New[*classservice.AtomicContext, storage.DBContext](
			&storage.DB{DB: db},
			classservice.NewPostgresAtomicContext(logger),
			bus,
			logger,
		)
		return uow, func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
	}
}

func logEvent(logger *slog.Logger) messagebus.EventHandler {
	return func(event domain.Event) error {
		attrs := []any{"type", event.Type(), "published_at", event.PublishedAt()}
		switch e := event.(type) {
		case class.ScheduledEvent:
			attrs = append(attrs, "class_id", e.ClassID, "name", e.Name)
		case class.DeletedEvent:
			attrs = append(attrs, "class_id", e.ClassID)
		case class.ChangedEvent:
			attrs = append(attrs, "class_id", e.ClassID, "ref", e.Ref)
		}
		logger.Info("processed class event", attrs...)
		return nil
	}
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
