package dbx

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docme/internal/common"
)

// StorageErr wraps a driver error so callers can match common.ErrStorage
// and still see the cause.
func StorageErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, common.ErrStorage, err)
}

func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// UnixNano stores timestamps as UTC nanoseconds, which keeps ordering and
// equality exact in SQLite.
func UnixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func FromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
