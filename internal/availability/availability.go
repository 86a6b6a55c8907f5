// Package availability computes the effective display status of a seat
// for a requested shift.  The computation is pure: it works on a
// supplied snapshot and catalog, performs no I/O and keeps no state, so
// view clients can run the exact same derivation on their local cache.
package availability

import (
	"github.com/iliyamo/library-seat-reservation/internal/catalog"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// DisplayStatus is what a viewer sees for one seat/shift cell.
type DisplayStatus string

const (
	Available DisplayStatus = "AVAILABLE"
	Pending   DisplayStatus = "PENDING"
	Booked    DisplayStatus = "BOOKED"
)

// DisplayFor resolves the status shown for a seat when viewed through
// the requested shift.  Rules, highest priority first:
//
//  1. A seat absent from the snapshot is AVAILABLE (fail open; an
//     unknown seat is never shown as blocked).
//  2. If any shift overlapping the requested one (including the shift
//     itself) is PENDING for the seat, the cell shows PENDING.
//  3. Otherwise, if any overlapping shift is BOOKED, the cell shows
//     BOOKED.
//  4. Otherwise the cell is AVAILABLE.
//
// PENDING outranks BOOKED on purpose: an in-flight reservation is the
// state a viewer can still lose to, so it is the cautionary one.
func DisplayFor(cat *catalog.Catalog, snap model.Snapshot, seatID uint64, shift string) DisplayStatus {
	shifts, ok := snap[seatID]
	if !ok || len(shifts) == 0 {
		return Available
	}
	booked := false
	for _, o := range cat.Overlapping(shift) {
		switch shifts[o] {
		case model.StatusPending:
			return Pending
		case model.StatusBooked:
			booked = true
		}
	}
	if booked {
		return Booked
	}
	return Available
}
