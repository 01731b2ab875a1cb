// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore is a read-only store.Store over the jobs and profile tables.
type PostgresStore struct {
	db *sql.DB
}

var _ store.Store = (*PostgresStore)(nil)

// Pool sizes the connection pool. Graph requests run a handful of short
// reads each, so the defaults are modest.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

var DefaultPool = Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: 5 * time.Minute}

// Open connects to databaseURL, verifies the connection and applies pending
// migrations.
func Open(ctx context.Context, databaseURL string, pool Pool) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// migrateUp applies the embedded migrations and logs the resulting version.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "skillgraph_migrations"})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	}
	if v, dirty, err := m.Version(); err == nil {
		slog.Debug("database schema", "version", v, "dirty", dirty)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter model.JobFilter) ([]*model.Job, error) {
	return queryListJobs(ctx, s.db, filter)
}

func (s *PostgresStore) ListUserSkills(ctx context.Context, userID string, limit int) ([]*model.UserSkill, error) {
	return queryListUserSkills(ctx, s.db, userID, limit)
}

func (s *PostgresStore) ListUserCompanies(ctx context.Context, userID string, limit int) ([]*model.UserCompany, error) {
	return queryListUserCompanies(ctx, s.db, userID, limit)
}

func (s *PostgresStore) ListUserPreferences(ctx context.Context, userID string, limit int) ([]*model.UserPreference, error) {
	return queryListUserPreferences(ctx, s.db, userID, limit)
}
