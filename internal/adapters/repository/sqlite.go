package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/ttfl/internal/domain/model"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLitePickStore is a PickStore backed by a SQLite file.
type SQLitePickStore struct {
	db           *sql.DB
	path         string
	busyTimeout  time.Duration
	maxOpenConns int
	migrate      bool
}

// OpenSQLite opens or creates the pick database at path and applies the
// schema migrations unless WithoutMigrations is given.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLitePickStore, error) {
	if path == "" {
		return nil, errors.New("open sqlite: empty database path")
	}
	s := &SQLitePickStore{
		path:         path,
		busyTimeout:  5 * time.Second,
		maxOpenConns: 4,
		migrate:      true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	if s.migrate {
		mg, err := NewMigrator(path)
		if err != nil {
			return nil, err
		}
		upErr := mg.Up()
		if err := mg.Close(); err != nil && upErr == nil {
			upErr = err
		}
		if upErr != nil {
			return nil, upErr
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("close database after ping error: %w (ping: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s.db = db
	return s, nil
}

// Append implements PickStore.
func (s *SQLitePickStore) Append(ctx context.Context, pick model.PickRecord) (bool, error) {
	pick, err := validatePick(pick)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO picks (player_id, pick_date) VALUES (?, ?) ON CONFLICT (player_id, pick_date) DO NOTHING`,
		string(pick.Player), model.FormatDate(pick.Date))
	if err != nil {
		return false, fmt.Errorf("insert pick %s on %s: %w", pick.Player, model.FormatDate(pick.Date), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert pick rows affected: %w", err)
	}
	return n == 0, nil
}

// Picks implements PickStore.
func (s *SQLitePickStore) Picks(ctx context.Context) ([]model.PickRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player_id, pick_date FROM picks ORDER BY pick_date, player_id`)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PickRecord
	for rows.Next() {
		var player, date string
		if err := rows.Scan(&player, &date); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		d, err := model.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("stored pick date %q: %w", date, err)
		}
		out = append(out, model.PickRecord{Player: model.PlayerID(player), Date: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate picks: %w", err)
	}
	return out, nil
}

// Path returns the database file path.
func (s *SQLitePickStore) Path() string { return s.path }

// Close implements PickStore.
func (s *SQLitePickStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
