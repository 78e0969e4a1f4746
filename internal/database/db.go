package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pyme-backend/internal/config"
	"pyme-backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init abre la conexión configurada, migra el esquema y deja el resultado
// en DB. Cualquier fallo aquí detiene el arranque.
func Init(cfg *config.Config) error {
	db, err := Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("no se pudo conectar a la base de datos: %w", err)
	}
	if err := Migrate(db); err != nil {
		return fmt.Errorf("migración fallida: %w", err)
	}

	DB = db
	slog.Info("base de datos lista", "driver", cfg.DBDriver)
	return nil
}

// Open conecta con postgres, mysql o sqlite y ajusta el pool.
func Open(driver, dsn string, maxOpen int) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		if !strings.Contains(dsn, "parseTime") {
			dsn = appendParam(dsn, "parseTime=true")
		}
		dialector = mysql.Open(dsn)
	case "sqlite":
		if !strings.Contains(dsn, "_foreign_keys") {
			dsn = appendParam(dsn, "_foreign_keys=on")
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("driver desconocido: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// sqlite admite un solo escritor; con una conexión las transacciones
		// se serializan en lugar de fallar con "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		if maxOpen <= 0 {
			maxOpen = 20
		}
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen / 4)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func appendParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}
