package availability

import (
	"testing"

	"github.com/iliyamo/library-seat-reservation/internal/catalog"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

func TestUnknownSeatIsAvailable(t *testing.T) {
	cat := catalog.Default()
	snap := model.Snapshot{}
	for _, s := range cat.Shifts() {
		if got := DisplayFor(cat, snap, 99, s); got != Available {
			t.Errorf("unknown seat, shift %q: got %s, want AVAILABLE", s, got)
		}
	}
}

func TestBookedVisibleThroughOverlap(t *testing.T) {
	cat := catalog.Default()
	snap := model.Snapshot{
		12: {catalog.ShiftMorning: model.StatusBooked},
	}
	if got := DisplayFor(cat, snap, 12, catalog.ShiftFirstHalf); got != Booked {
		t.Errorf("overlapping shift: got %s, want BOOKED", got)
	}
	if got := DisplayFor(cat, snap, 12, catalog.ShiftEvening); got != Available {
		t.Errorf("non-overlapping shift: got %s, want AVAILABLE", got)
	}
}

func TestPendingOutranksBooked(t *testing.T) {
	cat := catalog.Default()
	// Seat booked for the second-half shift, with a pending attempt on
	// the overlapping afternoon shift.  Viewing the second-half shift
	// must show PENDING, not BOOKED.
	snap := model.Snapshot{
		7: {
			catalog.ShiftSecondHalf: model.StatusBooked,
			catalog.ShiftAfternoon:  model.StatusPending,
		},
	}
	if got := DisplayFor(cat, snap, 7, catalog.ShiftSecondHalf); got != Pending {
		t.Errorf("got %s, want PENDING", got)
	}
}

func TestPendingOnSameShift(t *testing.T) {
	cat := catalog.Default()
	snap := model.Snapshot{
		3: {catalog.ShiftEvening: model.StatusPending},
	}
	if got := DisplayFor(cat, snap, 3, catalog.ShiftEvening); got != Pending {
		t.Errorf("got %s, want PENDING", got)
	}
	// The morning shift does not overlap the evening one.
	if got := DisplayFor(cat, snap, 3, catalog.ShiftMorning); got != Available {
		t.Errorf("got %s, want AVAILABLE", got)
	}
}

func TestAllDayBlocksEveryShift(t *testing.T) {
	cat := catalog.Default()
	snap := model.Snapshot{
		5: {catalog.ShiftAllDay: model.StatusBooked},
	}
	for _, s := range cat.Shifts() {
		if got := DisplayFor(cat, snap, 5, s); got != Booked {
			t.Errorf("shift %q: got %s, want BOOKED", s, got)
		}
	}
}

func TestEmptyEntriesAreAvailable(t *testing.T) {
	cat := catalog.Default()
	snap := model.Snapshot{
		4: {catalog.ShiftMorning: model.StatusEmpty},
	}
	if got := DisplayFor(cat, snap, 4, catalog.ShiftMorning); got != Available {
		t.Errorf("got %s, want AVAILABLE", got)
	}
}
