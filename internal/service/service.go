package service

import (
	"context"
	"errors"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/infra"
	"github.com/courtside/platform/internal/repository"
	"github.com/jackc/pgx/v5"
)

// Pool is the database handle services run against: queries outside a
// transaction plus Begin. *pgxpool.Pool satisfies it.
type Pool interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// storageError passes domain errors through untouched and classifies
// everything else as UNAVAILABLE (transient) or INTERNAL.
func storageError(op string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if infra.IsTransient(err) {
		return domain.ErrUnavailable("database", err)
	}
	return domain.ErrInternal(op, err)
}
