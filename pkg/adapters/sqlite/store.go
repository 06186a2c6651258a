// Package sqlite provides a SQLite-backed StatStore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/adapters/sqlite/migrations"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/ports"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// StatStore persists stats in the "stat" table.
type StatStore struct {
	db *sql.DB
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*StatStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &StatStore{db: db}, nil
}

// Close closes the SQLite handle.
func (s *StatStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *StatStore) Load(ctx context.Context, id uuid.UUID, statType string) (domain.StatRow, error) {
	row := domain.StatRow{UUID: id, StatType: statType}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, val FROM stat WHERE uuid = ? AND stat_type = ?`,
		id.String(), statType,
	).Scan(&row.ID, &row.Val)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StatRow{}, domain.ErrStatNotFound
	}
	if err != nil {
		return domain.StatRow{}, fmt.Errorf("load stat: %w", err)
	}
	return row, nil
}

// Save upserts all rows in one transaction.
func (s *StatStore) Save(ctx context.Context, rows ...*domain.StatRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO stat (uuid, stat_type, val) VALUES (?, ?, ?)
ON CONFLICT (uuid, stat_type) DO UPDATE SET val = excluded.val
RETURNING id`)
	if err != nil {
		return fmt.Errorf("prepare save: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if err := stmt.QueryRowContext(ctx, row.UUID.String(), row.StatType, row.Val).Scan(&row.ID); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("save stat %s: constraint violation: %w", row.StatType, err)
			}
			return fmt.Errorf("save stat %s: %w", row.StatType, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *StatStore) ListByUser(ctx context.Context, id uuid.UUID) ([]domain.StatRow, error) {
	return s.query(ctx,
		`SELECT id, uuid, stat_type, val FROM stat WHERE uuid = ? ORDER BY stat_type`,
		id.String(),
	)
}

func (s *StatStore) Top(ctx context.Context, statType string, limit int) ([]domain.StatRow, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx,
		`SELECT id, uuid, stat_type, val FROM stat WHERE stat_type = ? ORDER BY val DESC, id ASC LIMIT ?`,
		statType, limit,
	)
}

func (s *StatStore) Delete(ctx context.Context, id uuid.UUID, statType string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM stat WHERE uuid = ? AND stat_type = ?`,
		id.String(), statType,
	); err != nil {
		return fmt.Errorf("delete stat: %w", err)
	}
	return nil
}

func (s *StatStore) query(ctx context.Context, query string, args ...any) ([]domain.StatRow, error) {
	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rs.Close()

	var out []domain.StatRow
	for rs.Next() {
		var (
			row     domain.StatRow
			rawUUID string
		)
		if err := rs.Scan(&row.ID, &rawUUID, &row.StatType, &row.Val); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		if row.UUID, err = uuid.Parse(rawUUID); err != nil {
			return nil, fmt.Errorf("scan stat: bad uuid %q: %w", rawUUID, err)
		}
		out = append(out, row)
	}
	return out, rs.Err()
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
			return true
		}
	}
	return false
}

var _ ports.StatStore = (*StatStore)(nil)
