// Package store persists users, designs and canvas snapshots. The canvas itself is
// stored as an opaque JSON document; each save appends a new version.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

type Design struct {
	ID        string
	OwnerID   string
	Name      string
	Layout    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID        string
	DesignID  string
	Version   int
	Canvas    json.RawMessage
	CreatedAt time.Time
}

// Store is implemented by the Postgres and SQLite backends.
type Store interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	CreateDesign(ctx context.Context, d Design) (Design, error)
	GetDesign(ctx context.Context, id string) (Design, error)
	ListDesigns(ctx context.Context, ownerID string) ([]Design, error)
	RenameDesign(ctx context.Context, id, name string) (Design, error)
	DeleteDesign(ctx context.Context, id string) error

	// SaveSnapshot appends canvas as the next version of the design.
	SaveSnapshot(ctx context.Context, designID string, canvas json.RawMessage) (Snapshot, error)
	LatestSnapshot(ctx context.Context, designID string) (Snapshot, error)

	Close() error
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the backend named by driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgres(ctx, dsn)
	case DriverSQLite:
		return NewSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
