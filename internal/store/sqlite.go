package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/popcanvas/popcanvas/internal/typeid"
)

// SQLite is the single-file Store used for local and development setups.
// Timestamps are stored as unix milliseconds.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (or creates) the database file at path and migrates it.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			display_name TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS designs (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			layout TEXT NOT NULL DEFAULT 'modal',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_designs_owner ON designs(owner_id)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			design_id TEXT NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
			version INTEGER NOT NULL,
			canvas TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE (design_id, version)
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func now() time.Time {
	return time.UnixMilli(time.Now().UnixMilli())
}

func (s *SQLite) CreateUser(ctx context.Context, u User) (User, error) {
	u.CreatedAt = now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password, display_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt.UnixMilli())
	if err != nil {
		if isConstraintUnique(err) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *SQLite) getUser(ctx context.Context, where, arg string) (User, error) {
	var u User
	var created int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, email, password, display_name, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &created)
	if err != nil {
		return User{}, noRows(err, "get user")
	}
	u.CreatedAt = time.UnixMilli(created)
	return u, nil
}

func (s *SQLite) CreateDesign(ctx context.Context, d Design) (Design, error) {
	d.CreatedAt = now()
	d.UpdatedAt = d.CreatedAt
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO designs (id, owner_id, name, layout, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.OwnerID, d.Name, d.Layout, d.CreatedAt.UnixMilli(), d.UpdatedAt.UnixMilli())
	if err != nil {
		if isConstraintUnique(err) {
			return Design{}, ErrConflict
		}
		return Design{}, fmt.Errorf("create design: %w", err)
	}
	return d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDesign(row scanner) (Design, error) {
	var d Design
	var created, updated int64
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Layout, &created, &updated); err != nil {
		return Design{}, err
	}
	d.CreatedAt = time.UnixMilli(created)
	d.UpdatedAt = time.UnixMilli(updated)
	return d, nil
}

func (s *SQLite) GetDesign(ctx context.Context, id string) (Design, error) {
	d, err := scanSQLiteDesign(s.conn.QueryRowContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE id = ?`, id))
	if err != nil {
		return Design{}, noRows(err, "get design")
	}
	return d, nil
}

func (s *SQLite) ListDesigns(ctx context.Context, ownerID string) ([]Design, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE owner_id = ? ORDER BY updated_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()

	designs := []Design{}
	for rows.Next() {
		d, err := scanSQLiteDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

func (s *SQLite) RenameDesign(ctx context.Context, id, name string) (Design, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE designs SET name = ?, updated_at = ? WHERE id = ?`, name, now().UnixMilli(), id)
	if err != nil {
		return Design{}, fmt.Errorf("rename design: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Design{}, ErrNotFound
	}
	return s.GetDesign(ctx, id)
}

func (s *SQLite) DeleteDesign(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE design_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLite) SaveSnapshot(ctx context.Context, designID string, canvas json.RawMessage) (Snapshot, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM designs WHERE id = ?`, designID).Scan(&exists); err != nil {
		return Snapshot{}, noRows(err, "find design")
	}

	snap := Snapshot{ID: typeid.NewSnapshotID(), DesignID: designID, Canvas: canvas, CreatedAt: now()}
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE design_id = ?`, designID,
	).Scan(&snap.Version); err != nil {
		return Snapshot{}, fmt.Errorf("next version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, design_id, version, canvas, created_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, designID, snap.Version, string(canvas), snap.CreatedAt.UnixMilli()); err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE designs SET updated_at = ? WHERE id = ?`, snap.CreatedAt.UnixMilli(), designID); err != nil {
		return Snapshot{}, fmt.Errorf("touch design: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

func (s *SQLite) LatestSnapshot(ctx context.Context, designID string) (Snapshot, error) {
	var snap Snapshot
	var canvas string
	var created int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, design_id, version, canvas, created_at FROM snapshots
		 WHERE design_id = ? ORDER BY version DESC LIMIT 1`, designID,
	).Scan(&snap.ID, &snap.DesignID, &snap.Version, &canvas, &created)
	if err != nil {
		return Snapshot{}, noRows(err, "get snapshot")
	}
	snap.Canvas = json.RawMessage(canvas)
	snap.CreatedAt = time.UnixMilli(created)
	return snap, nil
}

func noRows(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConstraintUnique(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
