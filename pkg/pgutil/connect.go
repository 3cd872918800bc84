package pgutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/config"
)

const (
	maxOpenConns    = 20
	connMaxIdleTime = 5 * time.Minute
	pingTimeout     = 10 * time.Second
)

// ConnectDB opens a bun connection pool for cfg and verifies it with a ping.
func ConnectDB(cfg *config.DatabaseConfig, logger *zap.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// functional options escape special characters in credentials
	connector := pgdriver.NewConnector(
		pgdriver.WithNetwork("tcp"),
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Database),
		pgdriver.WithInsecure(cfg.SSLMode == "" || cfg.SSLMode == "disable"),
		pgdriver.WithApplicationName("goonhub"),
	)

	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(maxOpenConns)
	sqldb.SetMaxIdleConns(maxOpenConns / 2)
	sqldb.SetConnMaxIdleTime(connMaxIdleTime)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.Database, err)
	}

	logger.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)
	return db, nil
}
