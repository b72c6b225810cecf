// Package sqlite provides SQLite-backed persistence for user record documents.
// Each record is stored as one JSON document row; mutation services go
// through the transactional update path so concurrent writers cannot lose
// each other's changes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/mcalhoun/shelfie/internal/platform/storage/sqlitemigrate"
	"github.com/mcalhoun/shelfie/internal/record"
	"github.com/mcalhoun/shelfie/internal/storage"
	"github.com/mcalhoun/shelfie/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for user record documents.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a user record SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// CreateUser inserts one user record and fails if the uid is taken.
func (s *Store) CreateUser(ctx context.Context, user record.UserRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	uid := strings.TrimSpace(user.UID)
	if uid == "" {
		return fmt.Errorf("user uid is required")
	}
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user document: %w", err)
	}
	now := toMillis(time.Now())
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO users (uid, doc, created_at, updated_at)
VALUES (?, ?, ?, ?)
`, uid, string(doc), now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert user document: %w", err)
	}
	return nil
}

// PutUser writes one full user record document, inserting or replacing.
func (s *Store) PutUser(ctx context.Context, user record.UserRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	uid := strings.TrimSpace(user.UID)
	if uid == "" {
		return fmt.Errorf("user uid is required")
	}
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user document: %w", err)
	}
	now := toMillis(time.Now())
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO users (uid, doc, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (uid) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
`, uid, string(doc), now, now)
	if err != nil {
		return fmt.Errorf("put user document: %w", err)
	}
	return nil
}

// GetUser loads one user record by uid.
func (s *Store) GetUser(ctx context.Context, uid string) (record.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return record.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return record.UserRecord{}, fmt.Errorf("storage is not configured")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return record.UserRecord{}, fmt.Errorf("user uid is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT doc FROM users WHERE uid = ?`, uid)
	return scanUserDocument(row.Scan)
}

// ListUsers loads every user record ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]record.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT doc FROM users ORDER BY created_at ASC, uid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list user documents: %w", err)
	}
	defer rows.Close()

	var users []record.UserRecord
	for rows.Next() {
		user, err := scanUserDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user documents: %w", err)
	}
	return users, nil
}

// UpdateUser applies fn to one user record inside a transaction and writes
// the result back. The record is loaded, mutated, and stored atomically.
func (s *Store) UpdateUser(ctx context.Context, uid string, fn storage.UpdateFunc) (record.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return record.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return record.UserRecord{}, fmt.Errorf("storage is not configured")
	}
	if fn == nil {
		return record.UserRecord{}, fmt.Errorf("update func is required")
	}

	var updated record.UserRecord
	err := s.UpdateUsers(ctx, []string{uid}, func(users map[string]*record.UserRecord) error {
		user, ok := users[strings.TrimSpace(uid)]
		if !ok {
			return storage.ErrNotFound
		}
		if err := fn(user); err != nil {
			return err
		}
		updated = *user
		return nil
	})
	if err != nil {
		return record.UserRecord{}, err
	}
	return updated, nil
}

// UpdateUsers applies fn to several user records inside one transaction.
// Every listed record must exist; either all records are written back or
// none is.
func (s *Store) UpdateUsers(ctx context.Context, uids []string, fn storage.MultiUpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if fn == nil {
		return fmt.Errorf("update func is required")
	}
	if len(uids) == 0 {
		return fmt.Errorf("at least one uid is required")
	}

	normalized := make([]string, 0, len(uids))
	seen := make(map[string]bool, len(uids))
	for _, uid := range uids {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			return fmt.Errorf("user uid is required")
		}
		if seen[uid] {
			continue
		}
		seen[uid] = true
		normalized = append(normalized, uid)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin user update: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback user update: %v", cause, rollbackErr)
		}
		return cause
	}

	users := make(map[string]*record.UserRecord, len(normalized))
	for _, uid := range normalized {
		row := tx.QueryRowContext(ctx, `SELECT doc FROM users WHERE uid = ?`, uid)
		user, err := scanUserDocument(row.Scan)
		if err != nil {
			return rollbackWith(err)
		}
		users[uid] = &user
	}

	if err := fn(users); err != nil {
		return rollbackWith(err)
	}

	now := toMillis(time.Now())
	for _, uid := range normalized {
		doc, err := json.Marshal(users[uid])
		if err != nil {
			return rollbackWith(fmt.Errorf("marshal user document: %w", err))
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE users SET doc = ?, updated_at = ? WHERE uid = ?
`, string(doc), now, uid); err != nil {
			return rollbackWith(fmt.Errorf("write user document: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user update: %w", err)
	}
	return nil
}

func scanUserDocument(scan func(dest ...any) error) (record.UserRecord, error) {
	var doc string
	if err := scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.UserRecord{}, storage.ErrNotFound
		}
		return record.UserRecord{}, fmt.Errorf("scan user document: %w", err)
	}
	var user record.UserRecord
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return record.UserRecord{}, fmt.Errorf("unmarshal user document: %w", err)
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		// SQLITE_CONSTRAINT and its PRIMARYKEY/UNIQUE extended codes.
		return code == 19 || code == 1555 || code == 2067
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
