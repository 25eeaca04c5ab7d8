// internal/repository/postgres/errors.go
package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"atm-backend/internal/util"
)

// wrapStoreError classifies a driver failure. Connection-level problems are
// tagged retryable via util.ErrStorageUnavailable; everything else is wrapped
// as-is for the caller to inspect.
func wrapStoreError(op string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%s: %w: %w", op, util.ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
