// Package session persists verified viewer identities per share token.
// A stored session lets a repeat visit skip the email/OTP steps, but it is
// a hint, not a capability: every restore is re-validated against the
// server, and a server rejection deletes the local entry.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// TTL bounds how long a verified session is trusted locally. Expiry is
// checked on every read; there is no background sweeper.
const TTL = 24 * time.Hour

// keyPrefix namespaces session rows, one entry per token.
const keyPrefix = "shareview.session."

// DirPerms is used when creating the data directory.
const DirPerms = 0o700

// Session is a verified viewer identity for one share token. Written only
// after a server-side verification succeeds.
type Session struct {
	Email      string
	VerifiedAt time.Time
	ShareType  string
	FolderID   string
}

// Store is a token-keyed session store backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// nowFunc returns the current time. Tests override this to exercise
	// expiry without sleeping.
	nowFunc func() time.Time
}

// Open opens (creating if needed) the session database at dbPath and runs
// schema migrations. Use ":memory:" for tests.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, DirPerms); err != nil {
			return nil, fmt.Errorf("session: creating data directory %s: %w", dir, err)
		}
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: opening database %s: %w", dbPath, err)
	}

	// Sole-writer pattern: only one connection writes at a time.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		logger:  logger,
		nowFunc: time.Now,
	}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Read returns the stored session for a token, or nil when none exists.
// A session older than TTL is deleted on read and reported as absent;
// lazy expiry, not a background timer.
func (s *Store) Read(ctx context.Context, token string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT email, verified_at, share_type, folder_id FROM share_sessions WHERE key = ?`,
		key(token),
	)

	var (
		sess       Session
		verifiedMS int64
	)

	err := row.Scan(&sess.Email, &verifiedMS, &sess.ShareType, &sess.FolderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // sentinel for "no session"
	}

	if err != nil {
		return nil, fmt.Errorf("session: reading session: %w", err)
	}

	sess.VerifiedAt = time.UnixMilli(verifiedMS)

	if s.nowFunc().Sub(sess.VerifiedAt) >= TTL {
		s.logger.Debug("stored session expired, deleting",
			slog.Time("verified_at", sess.VerifiedAt),
		)

		if err := s.Clear(ctx, token); err != nil {
			return nil, err
		}

		return nil, nil //nolint:nilnil // sentinel for "no session"
	}

	return &sess, nil
}

// Write stores a verified session for a token, overwriting any prior entry.
// Call only after the server has confirmed the email/OTP verification.
func (s *Store) Write(ctx context.Context, token string, sess Session) error {
	verifiedAt := sess.VerifiedAt
	if verifiedAt.IsZero() {
		verifiedAt = s.nowFunc()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO share_sessions (key, email, verified_at, share_type, folder_id)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			email = excluded.email,
			verified_at = excluded.verified_at,
			share_type = excluded.share_type,
			folder_id = excluded.folder_id`,
		key(token), sess.Email, verifiedAt.UnixMilli(), sess.ShareType, sess.FolderID,
	)
	if err != nil {
		return fmt.Errorf("session: writing session: %w", err)
	}

	s.logger.Debug("session stored", slog.String("share_type", sess.ShareType))

	return nil
}

// Clear deletes the stored session for a token. Called when a server call
// that should have succeeded with a cached session returns an auth failure,
// so stale credentials cannot cause a retry loop. Deleting an absent entry
// is not an error.
func (s *Store) Clear(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM share_sessions WHERE key = ?`, key(token),
	); err != nil {
		return fmt.Errorf("session: clearing session: %w", err)
	}

	return nil
}

// key returns the namespaced row key for a token.
func key(token string) string {
	return keyPrefix + token
}
