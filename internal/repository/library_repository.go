package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// LibraryRepo provides read access to provisioned libraries.  Libraries
// are created by an out-of-band provisioning step; the reservation core
// never mutates them.
type LibraryRepo struct {
	db *sql.DB
}

// NewLibraryRepo returns a new LibraryRepo bound to the given database.
func NewLibraryRepo(db *sql.DB) *LibraryRepo { return &LibraryRepo{db: db} }

// GetByID returns a single library.  ErrLibraryNotFound is returned
// when no library with the given ID exists.
func (r *LibraryRepo) GetByID(ctx context.Context, id uint64) (*model.Library, error) {
	const q = `SELECT id, name, is_active, created_at, updated_at FROM libraries WHERE id = ?`
	var l model.Library
	err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns all active libraries ordered by name.
func (r *LibraryRepo) List(ctx context.Context) ([]model.Library, error) {
	const q = `SELECT id, name, is_active, created_at, updated_at FROM libraries WHERE is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Library, 0)
	for rows.Next() {
		var l model.Library
		if err := rows.Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
