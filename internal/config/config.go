package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=pyme port=5432 sslmode=disable"

type Config struct {
	HTTPPort     string
	DBDriver     string // postgres | mysql | sqlite
	DatabaseDSN  string
	MaxOpenConns int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSOrigins   string
	AuthRateLimit string // formato ulule/limiter: "10-M", "100-H"

	RedisAddr     string // vacío = sin lista de revocación
	RedisPassword string
	RedisDB       int

	LogLevel string
}

func Load() *Config {
	// .env es opcional; en producción las variables vienen del entorno
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] no se pudo leer .env: %v", err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:     getEnv("DATABASE_DSN", defaultDSN),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		AuthRateLimit:   getEnv("AUTH_RATE_LIMIT", "10-M"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET no está definido")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET debe tener al menos 32 caracteres")
	}
	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		log.Fatalf("[FATAL] DB_DRIVER desconocido: %q", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN usa el valor por defecto, define tu propia conexión en producción.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS usa el valor por defecto.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s inválido (%q), usando %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] %s inválido (%q), usando %s", key, v, def)
		return def
	}
	return d
}
