// Package persistence scopes repository calls to a database transaction carried in the context.
package persistence

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned by Commit and Rollback on a context Begin did not produce.
var ErrNoTransaction = errors.New("no transaction in context")

type txHandle interface {
	commit(ctx context.Context) error
	rollback(ctx context.Context) error
}

// scope is the transaction stored in a context. Only the scope that opened the
// transaction may end it, so nested units of work join the outer one.
type scope struct {
	tx    txHandle
	owned bool
}

// UnitOfWork opens one transaction per outermost Begin.
type UnitOfWork struct {
	key   any
	begin func(ctx context.Context) (txHandle, error)
}

// Begin returns a context carrying a transaction. A context that already carries one
// for the same database gets a non-owning scope.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if outer, ok := ctx.Value(u.key).(*scope); ok {
		return context.WithValue(ctx, u.key, &scope{tx: outer.tx}), nil
	}

	tx, err := u.begin(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, u.key, &scope{tx: tx, owned: true}), nil
}

// Commit commits the transaction when ctx owns it.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	s, ok := ctx.Value(u.key).(*scope)
	if !ok {
		return ErrNoTransaction
	}
	if !s.owned {
		return nil
	}
	return s.tx.commit(ctx)
}

// Rollback rolls the transaction back when ctx owns it.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	s, ok := ctx.Value(u.key).(*scope)
	if !ok {
		return ErrNoTransaction
	}
	if !s.owned {
		return nil
	}
	return s.tx.rollback(ctx)
}
