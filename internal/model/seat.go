package model

import "time"

// Seat describes a physical seat in a library.  The layout is fixed at
// provisioning time: seats are created once and never removed during
// normal operation.  The label is opaque to the reservation core; no
// row/column geometry is attached to it.
//
// Fields:
//  ID        – primary key identifier.
//  LibraryID – library to which this seat belongs.
//  Label     – seat label shown to patrons (e.g. "12", "A-3").
//  IsActive  – whether the seat can currently be reserved.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Seat struct {
	ID        uint64    // seats.id
	LibraryID uint64    // seats.library_id
	Label     string    // seats.label
	IsActive  bool      // seats.is_active
	CreatedAt time.Time // seats.created_at
	UpdatedAt time.Time // seats.updated_at
}
