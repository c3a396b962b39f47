package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/getrich/internal/config"
	"github.com/MrJamesThe3rd/getrich/internal/database"
	"github.com/MrJamesThe3rd/getrich/internal/migrations"
)

func main() {
	dir := flag.String("direction", string(database.Up), "up or down")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.DB.URL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg.DB.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m, err := database.NewMigrator(db, migrations.FS)
	if err != nil {
		slog.Error("failed to prepare migrations", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := m.Run(database.Direction(*dir)); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil {
		slog.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}

	slog.Info("schema ready", "version", version, "dirty", dirty)
}
