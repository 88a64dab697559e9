package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"crmcore/internal/config"
	"crmcore/internal/database"
	"crmcore/internal/pkg/logger"
	"crmcore/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg.DSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	r, _ := server.New(db, cfg.JWTSecret, cfg.JWTTTL)

	slog.Info("starting server", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
