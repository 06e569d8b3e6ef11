// Package application holds the transaction and event plumbing shared by command handlers.
package application

import (
	"context"
	"errors"
	"fmt"
)

// UnitOfWork scopes repository and outbox writes to one transaction.
// Begin returns a context that carries the transaction; repositories pick it up from there.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// WithUnitOfWork runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back when it fails or panics.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn func(txCtx context.Context) error) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(txCtx)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := uow.Rollback(txCtx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := uow.Commit(txCtx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
