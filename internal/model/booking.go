package model

import "time"

// BookingRecord is one entry of the authoritative seat×shift status
// map.  A record only exists for pairs that are not EMPTY; clearing a
// pair back to EMPTY removes the row.  Records are mutated exclusively
// through the booking store's validated write path.
//
// Fields:
//  LibraryID – library owning the seat.
//  SeatID    – seat being committed.
//  Shift     – shift label from the catalog.
//  Status    – PENDING or BOOKED (EMPTY rows are not stored).
//  Actor     – identifier of the caller that performed the last change.
//  UpdatedAt – timestamp of the last committed change.
type BookingRecord struct {
	LibraryID uint64    // seat_bookings.library_id
	SeatID    uint64    // seat_bookings.seat_id
	Shift     string    // seat_bookings.shift
	Status    Status    // seat_bookings.status
	Actor     string    // seat_bookings.actor
	UpdatedAt time.Time // seat_bookings.updated_at
}

// Snapshot is a point-in-time copy of the seat×shift status map for one
// library.  The outer key is the seat ID, the inner key the shift
// label.  A seat or shift absent from the snapshot is EMPTY.
type Snapshot map[uint64]map[string]Status

// StatusOf returns the stored status for a seat/shift pair, defaulting
// to EMPTY when no entry exists.
func (s Snapshot) StatusOf(seatID uint64, shift string) Status {
	if shifts, ok := s[seatID]; ok {
		if st, ok := shifts[shift]; ok {
			return st
		}
	}
	return StatusEmpty
}

// Clone returns a deep copy of the snapshot so callers can hand it out
// without exposing shared mutable state.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for seatID, shifts := range s {
		m := make(map[string]Status, len(shifts))
		for shift, st := range shifts {
			m[shift] = st
		}
		out[seatID] = m
	}
	return out
}
