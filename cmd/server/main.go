package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/server"
)

func main() {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	if err := database.Init(cfg); err != nil {
		log.Fatalf("[FATAL] no se pudo conectar a la base de datos: %v", err)
	}

	revoker, err := auth.NewRevoker(cfg)
	if err != nil {
		log.Fatalf("[FATAL] no se pudo conectar a Redis: %v", err)
	}

	app, err := server.NewApp(cfg, revoker)
	if err != nil {
		log.Fatalf("[FATAL] configuración inválida: %v", err)
	}

	slog.Info("servidor iniciado", "port", cfg.HTTPPort, "db_driver", cfg.DBDriver)
	log.Fatal(app.Listen(":" + cfg.HTTPPort))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
