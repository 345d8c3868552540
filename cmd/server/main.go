package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/catalog"
	"github.com/Simplici0/laffle/internal/config"
	"github.com/Simplici0/laffle/internal/db"
	"github.com/Simplici0/laffle/internal/ingredient"
	"github.com/Simplici0/laffle/internal/logger"
	"github.com/Simplici0/laffle/internal/migrations"
	"github.com/Simplici0/laffle/internal/scenario"
	"github.com/Simplici0/laffle/internal/seed"
	"github.com/Simplici0/laffle/internal/session"
)

func main() {
	log := logger.Must(logger.New(os.Getenv("LOG_LEVEL")))
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(logger.Named(log, "config"))
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	if cfg.IsDev() {
		stats, err := seed.Run(ctx, database, ingredient.DefaultRecords())
		if err != nil {
			log.Fatal("failed to seed ingredient catalog", zap.Error(err))
		}
		log.Info("seeded ingredient catalog", zap.Int("inserts", stats.Inserts))
	}

	catalogRepo := catalog.NewRepository(database)
	if records, err := catalogRepo.List(ctx); err != nil {
		log.Fatal("failed to read ingredient catalog", zap.Error(err))
	} else if len(records) == 0 {
		log.Warn("ingredient catalog is empty; sessions start from built-in defaults")
	}

	srv := &server{
		log:         logger.Named(log, "http"),
		sessions:    session.NewStore(cfg.SessionSecret, cfg.SessionTTL, catalogRepo.MasterOrDefaults, logger.Named(log, "session")),
		catalog:     catalogRepo,
		scenarios:   scenario.NewRepository(database),
		calc:        cfg.Calculation,
		templateDir: cfg.TemplateDir,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
