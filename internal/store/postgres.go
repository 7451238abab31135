package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS user_permissions (
	email TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	password TEXT NOT NULL,
	role TEXT NOT NULL,
	assigned_wtws TEXT
);
CREATE TABLE IF NOT EXISTS water_quality_log (
	entry_id TEXT PRIMARY KEY,
	entry_timestamp TIMESTAMPTZ NOT NULL,
	wtw_name TEXT NOT NULL,
	sampling_point TEXT NOT NULL,
	user_email TEXT NOT NULL,
	passcode_used TEXT NOT NULL,
	ph DOUBLE PRECISION NOT NULL,
	turbidity DOUBLE PRECISION NOT NULL,
	free_chlorine DOUBLE PRECISION NOT NULL
);
`

// PostgresStore backs the app with a shared Postgres database.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects using a pgx DSN and ensures the schema exists.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]UserRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, name, password, role, assigned_wtws FROM user_permissions`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanUserRows(rows)
}

func (s *PostgresStore) UpsertUser(ctx context.Context, u UserRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_permissions (email, name, password, role, assigned_wtws)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			password = EXCLUDED.password,
			role = EXCLUDED.role,
			assigned_wtws = EXCLUDED.assigned_wtws`,
		u.Email, u.Name, u.PasswordDigest, u.Role, nullIfEmpty(u.FacilitiesRaw))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertEntries(ctx context.Context, entries []EntryRow) ([]RowError, error) {
	var rowErrs []RowError
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO water_quality_log
				(entry_id, entry_timestamp, wtw_name, sampling_point,
				 user_email, passcode_used, ph, turbidity, free_chlorine)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.EntryID, e.Timestamp.UTC(), e.FacilityName, e.SamplingPoint,
			e.UserEmail, e.PasscodeUsed, e.PH, e.Turbidity, e.FreeChlorine)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Message: err.Error()})
		}
	}
	return rowErrs, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
