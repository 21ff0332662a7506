package repository

import "time"

// Option applies a configuration option to the SQLitePickStore.
type Option func(*SQLitePickStore)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLitePickStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithMaxOpenConns sets the connection pool size.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLitePickStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithoutMigrations skips applying schema migrations on open.
func WithoutMigrations() Option {
	return func(s *SQLitePickStore) {
		s.migrate = false
	}
}
