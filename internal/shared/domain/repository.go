package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract every aggregate store starts from.
type Repository[T any] interface {
	Save(ctx context.Context, aggregate T) error
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
