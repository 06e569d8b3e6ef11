package database

import (
	"context"
)

// Connection is an open database handle. Repositories reach the driver handle through
// the concrete sqlite or postgres connection.
type Connection interface {
	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error
	// Close closes the database connection.
	Close() error
	// Driver returns the driver type for this connection.
	Driver() Driver
}
