package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cf_buddy/internal/platform/config"
	"cf_buddy/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"go.uber.org/zap"
)

var DB *sql.DB

// Open returns a pooled, pinged connection to dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func Connect() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	DB, err = Open(ctx, config.AppConfig.DBConnStr)
	if err != nil {
		logger.Log.Fatal("Error connecting to database", zap.Error(err))
	}
	logger.Log.Info("Successfully connected to PostgreSQL database",
		zap.String("host", config.AppConfig.DBHost), zap.String("db", config.AppConfig.DBName))
}

func Close() {
	if DB != nil {
		DB.Close()
		logger.Log.Info("Database connection closed")
	}
}
