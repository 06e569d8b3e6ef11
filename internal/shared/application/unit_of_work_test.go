package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type txKey struct{}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newMockUnitOfWork() (*mockUnitOfWork, context.Context, context.Context) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "tx")
	uow := new(mockUnitOfWork)
	uow.On("Begin", ctx).Return(txCtx, nil)
	return uow, ctx, txCtx
}

func TestWithUnitOfWork_Commits(t *testing.T) {
	uow, ctx, txCtx := newMockUnitOfWork()
	uow.On("Commit", txCtx).Return(nil)

	var got context.Context
	err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
		got = ctx
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, txCtx, got)
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestWithUnitOfWork_RollsBackOnError(t *testing.T) {
	uow, ctx, txCtx := newMockUnitOfWork()
	uow.On("Rollback", txCtx).Return(nil)
	failure := errors.New("duplicate member")

	err := WithUnitOfWork(ctx, uow, func(context.Context) error { return failure })

	assert.Equal(t, failure, err)
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestWithUnitOfWork_RollbackFailureIsJoined(t *testing.T) {
	uow, ctx, txCtx := newMockUnitOfWork()
	rollbackErr := errors.New("connection lost")
	uow.On("Rollback", txCtx).Return(rollbackErr)
	failure := errors.New("duplicate member")

	err := WithUnitOfWork(ctx, uow, func(context.Context) error { return failure })

	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, err, rollbackErr)
}

func TestWithUnitOfWork_BeginFails(t *testing.T) {
	ctx := context.Background()
	uow := new(mockUnitOfWork)
	beginErr := errors.New("database is locked")
	uow.On("Begin", ctx).Return(ctx, beginErr)

	called := false
	err := WithUnitOfWork(ctx, uow, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, beginErr)
	assert.False(t, called)
}

func TestWithUnitOfWork_CommitFails(t *testing.T) {
	uow, ctx, txCtx := newMockUnitOfWork()
	commitErr := errors.New("disk full")
	uow.On("Commit", txCtx).Return(commitErr)

	err := WithUnitOfWork(ctx, uow, func(context.Context) error { return nil })

	assert.ErrorIs(t, err, commitErr)
	assert.Contains(t, err.Error(), "commit transaction")
}

func TestWithUnitOfWork_RollsBackOnPanic(t *testing.T) {
	uow, ctx, txCtx := newMockUnitOfWork()
	uow.On("Rollback", txCtx).Return(nil)

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithUnitOfWork(ctx, uow, func(context.Context) error { panic("boom") })
	})
	uow.AssertExpectations(t)
}
