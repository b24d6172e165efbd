package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/popcanvas/popcanvas/internal/typeid"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS designs (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		layout TEXT NOT NULL DEFAULT 'modal',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_designs_owner ON designs(owner_id)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		design_id TEXT NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
		version INTEGER NOT NULL,
		canvas JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (design_id, version)
	)`,
}

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, pings and applies the schema.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u User) (User, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (User, error) {
	return p.getUser(ctx, `WHERE id = $1`, id)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return p.getUser(ctx, `WHERE email = $1`, email)
}

func (p *Postgres) getUser(ctx context.Context, where string, arg string) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		return User{}, notFound(err, "get user")
	}
	return u, nil
}

func (p *Postgres) CreateDesign(ctx context.Context, d Design) (Design, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO designs (id, owner_id, name, layout) VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		d.ID, d.OwnerID, d.Name, d.Layout,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Design{}, ErrConflict
		}
		return Design{}, fmt.Errorf("create design: %w", err)
	}
	return d, nil
}

const designColumns = `id, owner_id, name, layout, created_at, updated_at`

func scanDesign(row pgx.Row) (Design, error) {
	var d Design
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Layout, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (p *Postgres) GetDesign(ctx context.Context, id string) (Design, error) {
	d, err := scanDesign(p.pool.QueryRow(ctx, `SELECT `+designColumns+` FROM designs WHERE id = $1`, id))
	if err != nil {
		return Design{}, notFound(err, "get design")
	}
	return d, nil
}

func (p *Postgres) ListDesigns(ctx context.Context, ownerID string) ([]Design, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+designColumns+` FROM designs WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	designs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Design, error) {
		return scanDesign(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	return designs, nil
}

func (p *Postgres) RenameDesign(ctx context.Context, id, name string) (Design, error) {
	d, err := scanDesign(p.pool.QueryRow(ctx,
		`UPDATE designs SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+designColumns, id, name))
	if err != nil {
		return Design{}, notFound(err, "rename design")
	}
	return d, nil
}

func (p *Postgres) DeleteDesign(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveSnapshot(ctx context.Context, designID string, canvas json.RawMessage) (Snapshot, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the design row so concurrent saves get consecutive versions.
	var layout string
	if err := tx.QueryRow(ctx, `SELECT layout FROM designs WHERE id = $1 FOR UPDATE`, designID).Scan(&layout); err != nil {
		return Snapshot{}, notFound(err, "lock design")
	}

	snap := Snapshot{ID: typeid.NewSnapshotID(), DesignID: designID, Canvas: canvas}
	err = tx.QueryRow(ctx,
		`INSERT INTO snapshots (id, design_id, version, canvas)
		 SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3 FROM snapshots WHERE design_id = $2
		 RETURNING version, created_at`,
		snap.ID, designID, []byte(canvas),
	).Scan(&snap.Version, &snap.CreatedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE designs SET updated_at = now() WHERE id = $1`, designID); err != nil {
		return Snapshot{}, fmt.Errorf("touch design: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

func (p *Postgres) LatestSnapshot(ctx context.Context, designID string) (Snapshot, error) {
	var snap Snapshot
	var canvas []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, design_id, version, canvas, created_at FROM snapshots
		 WHERE design_id = $1 ORDER BY version DESC LIMIT 1`, designID,
	).Scan(&snap.ID, &snap.DesignID, &snap.Version, &canvas, &snap.CreatedAt)
	if err != nil {
		return Snapshot{}, notFound(err, "get snapshot")
	}
	snap.Canvas = canvas
	return snap, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
