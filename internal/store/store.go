// Package store provides access to the backing database: the user permission
// table and the append-only water quality log. Two backends are supported,
// SQLite for single-host deployments and Postgres for shared ones; the driver
// comes from the startup secrets blob.
package store

import (
	"context"
	"fmt"
	"time"
)

// UserRow is one row of the user permission table, as stored. The facility
// list is kept raw here; normalization happens at directory-load time.
type UserRow struct {
	Email          string
	Name           string
	PasswordDigest string
	Role           string
	FacilitiesRaw  string // NULL, JSON array, or comma-delimited; empty when NULL
}

// EntryRow is one row of the water quality log.
type EntryRow struct {
	EntryID       string
	Timestamp     time.Time
	FacilityName  string
	SamplingPoint string
	UserEmail     string
	PasscodeUsed  string
	PH            float64
	Turbidity     float64
	FreeChlorine  float64
}

// RowError reports a single rejected row from an insert batch. The store
// accepts the request as a whole but may reject individual rows; callers
// surface these verbatim instead of claiming success.
type RowError struct {
	Index   int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Index, e.Message)
}

// Store is the backing-store contract.
type Store interface {
	// ListUsers returns every row of the user permission table.
	ListUsers(ctx context.Context) ([]UserRow, error)
	// UpsertUser inserts or replaces a user row keyed by email.
	UpsertUser(ctx context.Context, u UserRow) error
	// InsertEntries appends rows to the water quality log and reports
	// per-row failures. A non-nil error means the request itself failed
	// and no per-row reporting was possible.
	InsertEntries(ctx context.Context, rows []EntryRow) ([]RowError, error)
	Close() error
}

// Open selects a backend by driver name.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
