package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrLikeConflict = errors.New("like changed concurrently")
	ErrTransient    = errors.New("store temporarily unavailable")
)

// Postgres SQLSTATE codes worth retrying: serialization_failure,
// deadlock_detected, lock_not_available and too_many_connections.
var transientPgCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
	"53300": true,
}

// Classify maps driver and gorm errors onto the repository error set.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLikeConflict), errors.Is(err, ErrTransient):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isTransient(err):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	default:
		return err
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientPgCodes[pgErr.Code]
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"database is locked", "sqlite_busy", "connection refused", "too many connections", "broken pipe"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
