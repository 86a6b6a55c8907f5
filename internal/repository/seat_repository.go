package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// SeatRepo provides access to the fixed seat layout of each library.
// Seats are provisioned once when a library is set up and are never
// destroyed during normal operation; the reservation core only reads
// them.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ListByLibrary returns all active seats of a library ordered by label.
func (r *SeatRepo) ListByLibrary(ctx context.Context, libraryID uint64) ([]model.Seat, error) {
	const q = `SELECT id, library_id, label, is_active, created_at, updated_at
			   FROM seats
			   WHERE library_id = ? AND is_active = 1
			   ORDER BY label`
	rows, err := r.db.QueryContext(ctx, q, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.LibraryID, &s.Label, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether a seat belongs to the provisioned layout of
// the given library and is active.
func (r *SeatRepo) Exists(ctx context.Context, libraryID, seatID uint64) (bool, error) {
	const q = `SELECT 1 FROM seats WHERE id = ? AND library_id = ? AND is_active = 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, seatID, libraryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
