package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_permissions (
	email TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	password TEXT NOT NULL,
	role TEXT NOT NULL,
	assigned_wtws TEXT
);
CREATE TABLE IF NOT EXISTS water_quality_log (
	entry_id TEXT PRIMARY KEY,
	entry_timestamp TEXT NOT NULL,
	wtw_name TEXT NOT NULL,
	sampling_point TEXT NOT NULL,
	user_email TEXT NOT NULL,
	passcode_used TEXT NOT NULL,
	ph REAL NOT NULL,
	turbidity REAL NOT NULL,
	free_chlorine REAL NOT NULL
);
`

// SQLiteStore backs the app with a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the SQLite database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	// modernc.org/sqlite takes pragmas as _pragma=name(value); the
	// mattn-style _journal_mode=WAL form is silently ignored by it.
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]UserRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, name, password, role, assigned_wtws FROM user_permissions`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanUserRows(rows)
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, u UserRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_permissions (email, name, password, role, assigned_wtws)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			password = excluded.password,
			role = excluded.role,
			assigned_wtws = excluded.assigned_wtws`,
		u.Email, u.Name, u.PasswordDigest, u.Role, nullIfEmpty(u.FacilitiesRaw))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertEntries(ctx context.Context, entries []EntryRow) ([]RowError, error) {
	var rowErrs []RowError
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO water_quality_log
				(entry_id, entry_timestamp, wtw_name, sampling_point,
				 user_email, passcode_used, ph, turbidity, free_chlorine)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.EntryID, e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.FacilityName, e.SamplingPoint, e.UserEmail, e.PasscodeUsed,
			e.PH, e.Turbidity, e.FreeChlorine)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Message: err.Error()})
		}
	}
	return rowErrs, nil
}

// CountEntries is a test and maintenance helper.
func (s *SQLiteStore) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM water_quality_log`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanUserRows(rows *sql.Rows) ([]UserRow, error) {
	var out []UserRow
	for rows.Next() {
		var u UserRow
		var facilities sql.NullString
		if err := rows.Scan(&u.Email, &u.Name, &u.PasswordDigest, &u.Role, &facilities); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		if facilities.Valid {
			u.FacilitiesRaw = facilities.String
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
