package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// BookingRepo persists the authoritative seat×shift status map.  Rows
// exist only for pairs that are PENDING or BOOKED; clearing a pair back
// to EMPTY deletes its row.  The booking store serializes writes per
// seat, so every statement here can be a single atomic query.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// SeatExists reports whether the seat is part of the provisioned layout
// of the library.  It satisfies the store's repository contract so the
// store can reject updates for unknown seats before touching the map.
func (r *BookingRepo) SeatExists(ctx context.Context, libraryID, seatID uint64) (bool, error) {
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

// SeatStatuses returns the stored shift→status map for one seat.
// Shifts without a row are EMPTY and therefore absent from the result.
func (r *BookingRepo) SeatStatuses(ctx context.Context, libraryID, seatID uint64) (map[string]model.Status, error) {
	const q = `SELECT shift, status FROM seat_bookings WHERE library_id = ? AND seat_id = ?`
	rows, err := r.db.QueryContext(ctx, q, libraryID, seatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]model.Status)
	for rows.Next() {
		var shift string
		var status string
		if err := rows.Scan(&shift, &status); err != nil {
			return nil, err
		}
		out[shift] = model.Status(status)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus durably writes one (seat, shift) status.  EMPTY removes the
// row; PENDING and BOOKED upsert it.  The write is a single statement
// and is the commit point of an update: once it returns nil the change
// is durable.
func (r *BookingRepo) SetStatus(ctx context.Context, rec model.BookingRecord) error {
	if rec.Status == model.StatusEmpty {
		const del = `DELETE FROM seat_bookings WHERE library_id = ? AND seat_id = ? AND shift = ?`
		_, err := r.db.ExecContext(ctx, del, rec.LibraryID, rec.SeatID, rec.Shift)
		return err
	}
	const up = `INSERT INTO seat_bookings (library_id, seat_id, shift, status, actor, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON DUPLICATE KEY UPDATE status = VALUES(status), actor = VALUES(actor), updated_at = VALUES(updated_at)`
	_, err := r.db.ExecContext(ctx, up, rec.LibraryID, rec.SeatID, rec.Shift, string(rec.Status), rec.Actor, rec.UpdatedAt.UTC())
	return err
}

// Snapshot returns a full copy of the seat×shift map for one library.
func (r *BookingRepo) Snapshot(ctx context.Context, libraryID uint64) (model.Snapshot, error) {
	const q = `SELECT seat_id, shift, status FROM seat_bookings WHERE library_id = ?`
	rows, err := r.db.QueryContext(ctx, q, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snap := make(model.Snapshot)
	for rows.Next() {
		var seatID uint64
		var shift string
		var status string
		if err := rows.Scan(&seatID, &shift, &status); err != nil {
			return nil, err
		}
		if snap[seatID] == nil {
			snap[seatID] = make(map[string]model.Status)
		}
		snap[seatID][shift] = model.Status(status)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}
