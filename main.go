package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask"
	"github.com/tamagotask/tamagotask/tamagotask/backend"
	"github.com/tamagotask/tamagotask/tamagotask/cache"
	"github.com/tamagotask/tamagotask/tamagotask/database"
	"github.com/tamagotask/tamagotask/tamagotask/database/repositories"
	"github.com/tamagotask/tamagotask/tamagotask/logger"
	"github.com/tamagotask/tamagotask/tamagotask/remote"
	"github.com/tamagotask/tamagotask/tamagotask/utils"
)

var (
	version = "dev"
	commit  = "unknown"
)

// The trusted backend process: tails authoritative progress writes,
// projects them into the monthly leaderboard, and prunes expired months.
// Clients never run this binary and never write leaderboard rows directly.
func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting TamagoTask backend",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	runRetention := flag.Bool("run-retention", false, "run the retention job once on startup")
	flag.Parse()

	cfg, err := tamagotask.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	customHandler.SetLevel(cfg.Log.Level)
	slog.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	remoteClient, err := remote.New(ctx, remote.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		slog.Error("Remote store connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		remoteClient.Close(closeCtx)
	}()

	ranks := cache.NewRankingCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer ranks.Close()
	if err := ranks.Ping(ctx); err != nil {
		// Degraded but functional: reads fall back to Postgres.
		slog.Warn("Ranking cache unreachable, continuing without it",
			slog.Any("error", err))
	}

	leaderboardRepo := repositories.NewLeaderboardRepository(db.BunDB())
	projector := backend.NewProjector(leaderboardRepo, ranks)
	watcher := backend.NewWatcher(remoteClient.Progress(), projector)
	retention := backend.NewRetentionJob(leaderboardRepo, ranks, cfg.Game.RetentionMonth)

	if *runRetention {
		if err := retention.Run(ctx); err != nil {
			slog.Error("Retention run failed", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	processes := utils.NewBackgroundProcessManager()
	processes.StartProcess("projector", "project progress writes into the leaderboard", watcher.Run)
	processes.StartTicker("retention", "prune leaderboard months past retention", 24*time.Hour, func(ctx context.Context) {
		if err := retention.Run(ctx); err != nil {
			slog.Error("Retention run failed", slog.Any("error", err))
		}
	})

	logger.LogSystem("Backend is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down backend...")
	processes.Shutdown(15 * time.Second)
}
