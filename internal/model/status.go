package model

// Status enumerates the committed states a seat can hold for a shift.
// EMPTY is the implicit default: a (seat, shift) pair without a stored
// row is EMPTY.  Transitions are driven by external callers (a payment
// initiator, an admin tool, a housekeeping process); the store only
// enforces the no-double-booking rule on transitions into BOOKED.
type Status string

const (
	StatusEmpty   Status = "EMPTY"   // seat not committed for the shift
	StatusPending Status = "PENDING" // reservation attempt in flight (e.g. payment initiated)
	StatusBooked  Status = "BOOKED"  // final commitment for the shift
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusEmpty, StatusPending, StatusBooked:
		return true
	}
	return false
}
