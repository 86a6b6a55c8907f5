package model

import "time"

// Library represents one physical reading hall whose seats can be
// reserved per shift.  Each library maps to exactly one broadcast room
// for live seat updates.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable name shown to patrons.
//  IsActive  – whether the library currently accepts reservations.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Library struct {
	ID        uint64    // libraries.id
	Name      string    // libraries.name
	IsActive  bool      // libraries.is_active
	CreatedAt time.Time // libraries.created_at
	UpdatedAt time.Time // libraries.updated_at
}
