package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"ms-admission/internal/models"

	"github.com/lib/pq"
)

// PostgreSQL error codes treated as transient contention.
var busyCodes = map[pq.ErrorCode]bool{
	"55P03": true, // lock_not_available
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"57014": true, // query_canceled
}

// Classify maps a store error onto the error taxonomy. Typed errors pass
// through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var typed *models.Error
	if errors.As(err, &typed) {
		return err
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.NewError(models.KindNotFound, "not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewError(models.KindBusy, "transaction timed out waiting for a lock", err)
	case errors.Is(err, context.Canceled):
		return models.NewError(models.KindBusy, "transaction canceled", err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if busyCodes[pqErr.Code] {
			return models.NewError(models.KindBusy, "row lock not acquired", err)
		}
		return models.NewError(models.KindInternal, "store failure", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return models.NewError(models.KindBusy, "database is locked", err)
	}

	return models.NewError(models.KindInternal, "store failure", err)
}
