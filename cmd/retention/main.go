package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask"
	"github.com/tamagotask/tamagotask/tamagotask/backend"
	"github.com/tamagotask/tamagotask/tamagotask/cache"
	"github.com/tamagotask/tamagotask/tamagotask/database"
	"github.com/tamagotask/tamagotask/tamagotask/database/repositories"
	"github.com/tamagotask/tamagotask/tamagotask/logger"
)

// One-shot leaderboard retention run, for operators and cron.
func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	path := flag.String("config", "config.toml", "path to config")
	months := flag.Int("months", 0, "override retention window in months")
	flag.Parse()

	cfg, err := tamagotask.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	ranks := cache.NewRankingCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer ranks.Close()

	retentionMonths := cfg.Game.RetentionMonth
	if *months > 0 {
		retentionMonths = *months
	}

	job := backend.NewRetentionJob(repositories.NewLeaderboardRepository(db.BunDB()), ranks, retentionMonths)
	if err := job.Run(ctx); err != nil {
		slog.Error("Retention run failed", slog.Any("error", err))
		os.Exit(-1)
	}

	logger.LogSystem("Retention run completed", slog.String("cutoff", job.CutoffMonth()))
}
