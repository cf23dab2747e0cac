package domain

import "context"

// Database defines lifecycle operations for the underlying document store.
// Each implementation (SQLite, MongoDB) owns its own schema or index setup,
// so the storage backend can be chosen at startup.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
	Users() UserRepository
	Movies() MovieRepository
}
