package httperr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FromStore classifies a raw store error. Already classified errors pass
// through unchanged.
func FromStore(err error, notFoundCode string) error {
	if err == nil {
		return nil
	}

	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFoundErr(notFoundCode, "The requested record was not found.")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &BusinessError{Kind: KindConflict, Code: "duplicate", Message: messageFor("duplicate"), Err: err}
	case IsTransientStore(err):
		return Transient("store_unavailable", err)
	}
	return err
}

// IsTransientStore reports timeouts and connection-level failures.
func IsTransientStore(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception, 57P: operator intervention, 40001: serialization
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "57P") ||
			pgErr.Code == "40001"
	}

	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
