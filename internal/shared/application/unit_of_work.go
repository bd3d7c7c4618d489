// Package application holds the pieces every command handler shares:
// the unit-of-work contract and event metadata stamping.
package application

import "context"

// UnitOfWork scopes a set of repository writes to one transaction. The
// transaction rides in the context returned by Begin, so repositories
// pick it up without threading a handle through every call.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc runs inside an open transaction.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork runs fn transactionally: commit on nil, rollback on
// error. The fn error wins over any rollback error.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
