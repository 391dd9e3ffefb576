// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
)

// ConnectionManager owns the primary GORM connection, its read replicas and
// a pgx pool used for health probes.
type ConnectionManager struct {
	config config.DatabaseConfig
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
	probe  *pgxpool.Pool
}

// NewConnectionManager connects to the primary, registers replicas and pings
// both the GORM pool and the probe pool.
func NewConnectionManager(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{
		config: cfg,
		logger: log.Named("postgres"),
	}

	if err := cm.initializePrimaryConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	if err := cm.initializeReadReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	probe, err := pgxpool.New(ctx, cfg.URL())
	if err != nil {
		_ = cm.sqlDB.Close()
		return nil, fmt.Errorf("failed to create probe pool: %w", err)
	}
	cm.probe = probe

	cm.logger.Info("Database connection manager initialized",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("replicas", len(cfg.Replicas)),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)

	return cm, nil
}

// initializePrimaryConnection sets up the primary database connection
func (cm *ConnectionManager) initializePrimaryConnection(ctx context.Context) error {
	db, err := gorm.Open(postgres.Open(cm.config.DSN(cm.config.Host)), &gorm.Config{
		Logger:                 NewGORMLogger(cm.logger, cm.config.LogLevel, cm.config.SlowQueryThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cm.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cm.config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cm.config.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.sqlDB = sqlDB
	return nil
}

// initializeReadReplicas routes reads to the configured replica hosts.
// Writes and transactions stay on the primary.
func (cm *ConnectionManager) initializeReadReplicas() error {
	if len(cm.config.Replicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(cm.config.Replicas))
	for i, host := range cm.config.Replicas {
		replicas[i] = postgres.Open(cm.config.DSN(host))
	}

	err := cm.db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RoundRobinPolicy(),
	}).
		SetMaxOpenConns(cm.config.MaxOpenConns).
		SetMaxIdleConns(cm.config.MaxIdleConns).
		SetConnMaxLifetime(cm.config.ConnMaxLifetime))
	if err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	cm.logger.Info("Read replicas configured", zap.Strings("hosts", cm.config.Replicas))
	return nil
}

// GetDB returns the main database connection
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// SQLDB returns the primary connection pool
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.sqlDB
}

// HealthCheck pings the primary through pgx
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.probe.Ping(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// Close closes all database connections
func (cm *ConnectionManager) Close() error {
	if cm.probe != nil {
		cm.probe.Close()
	}
	if cm.sqlDB != nil {
		if err := cm.sqlDB.Close(); err != nil {
			cm.logger.Error("Failed to close primary database", zap.Error(err))
			return err
		}
	}
	return nil
}

// NewGORMLogger adapts zap to the GORM logger interface. level follows the
// GORM vocabulary: silent, error, warn, info.
func NewGORMLogger(log *zap.Logger, level string, slow time.Duration) logger.Interface {
	return logger.New(
		&gormLogWriter{logger: log.WithOptions(zap.AddCallerSkip(3))},
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  ParseGORMLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// ParseGORMLevel maps a textual level to GORM's, defaulting to warn.
func ParseGORMLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

type gormLogWriter struct {
	logger *zap.Logger
}

func (w *gormLogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
