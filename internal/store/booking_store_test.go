package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/iliyamo/library-seat-reservation/internal/catalog"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// fakeRepo is an in-memory BookingRepository with the same semantics as
// the MySQL implementation: rows exist only for non-EMPTY statuses.
type fakeRepo struct {
	mu      sync.Mutex
	seats   map[string]bool
	data    map[string]map[string]model.Status // "lib:seat" -> shift -> status
	failSet bool                               // force SetStatus to fail
}

func newFakeRepo(libraryID uint64, seatIDs ...uint64) *fakeRepo {
	r := &fakeRepo{
		seats: make(map[string]bool),
		data:  make(map[string]map[string]model.Status),
	}
	for _, id := range seatIDs {
		r.seats[key(libraryID, id)] = true
	}
	return r
}

func key(libraryID, seatID uint64) string {
	return fmt.Sprintf("%d:%d", libraryID, seatID)
}

func (r *fakeRepo) SeatExists(ctx context.Context, libraryID, seatID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats[key(libraryID, seatID)], nil
}

func (r *fakeRepo) SeatStatuses(ctx context.Context, libraryID, seatID uint64) (map[string]model.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]model.Status)
	for shift, st := range r.data[key(libraryID, seatID)] {
		out[shift] = st
	}
	return out, nil
}

func (r *fakeRepo) SetStatus(ctx context.Context, rec model.BookingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSet {
		return errors.New("disk on fire")
	}
	k := key(rec.LibraryID, rec.SeatID)
	if rec.Status == model.StatusEmpty {
		delete(r.data[k], rec.Shift)
		if len(r.data[k]) == 0 {
			delete(r.data, k)
		}
		return nil
	}
	if r.data[k] == nil {
		r.data[k] = make(map[string]model.Status)
	}
	r.data[k][rec.Shift] = rec.Status
	return nil
}

func (r *fakeRepo) Snapshot(ctx context.Context, libraryID uint64) (model.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(model.Snapshot)
	for k, shifts := range r.data {
		var lib, seat uint64
		fmt.Sscanf(k, "%d:%d", &lib, &seat)
		if lib != libraryID {
			continue
		}
		m := make(map[string]model.Status, len(shifts))
		for shift, st := range shifts {
			m[shift] = st
		}
		snap[seat] = m
	}
	return snap, nil
}

// recordingPub captures published events in order.
type recordingPub struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (p *recordingPub) Publish(room string, ev model.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPub) all() []model.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

func newStore(t *testing.T, seatIDs ...uint64) (*BookingStore, *fakeRepo, *recordingPub) {
	t.Helper()
	repo := newFakeRepo(1, seatIDs...)
	pub := &recordingPub{}
	return New(catalog.Default(), repo, pub, nil), repo, pub
}

func TestApplyUpdateCommitsAndBroadcasts(t *testing.T) {
	st, _, pub := newStore(t, 12)
	ack, err := st.ApplyUpdate(context.Background(), UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftMorning,
		Status: model.StatusBooked, Actor: "staff-1",
	})
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if ack.CommitSeq == 0 || ack.NoOp {
		t.Fatalf("unexpected ack: %+v", ack)
	}
	evs := pub.all()
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1", len(evs))
	}
	if evs[0].SeatID != 12 || evs[0].Status != model.StatusBooked || evs[0].CommitSeq != ack.CommitSeq {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}

func TestRejectsOverlappingBooking(t *testing.T) {
	st, _, pub := newStore(t, 12)
	ctx := context.Background()
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftMorning,
		Status: model.StatusBooked, Actor: "staff-1",
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftFirstHalf,
		Status: model.StatusBooked, Actor: "staff-2",
	})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("got %v, want InvariantViolationError", err)
	}
	if len(iv.ConflictingShifts) != 1 || iv.ConflictingShifts[0] != catalog.ShiftMorning {
		t.Fatalf("conflicting shifts = %v", iv.ConflictingShifts)
	}
	if len(pub.all()) != 1 {
		t.Fatal("rejected update must not emit an event")
	}
}

func TestAllowsNonOverlappingBooking(t *testing.T) {
	st, _, _ := newStore(t, 12)
	ctx := context.Background()
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftMorning,
		Status: model.StatusBooked, Actor: "staff-1",
	}); err != nil {
		t.Fatalf("morning booking: %v", err)
	}
	// The evening shift does not overlap the morning one.
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftEvening,
		Status: model.StatusBooked, Actor: "staff-1",
	}); err != nil {
		t.Fatalf("evening booking should pass: %v", err)
	}
}

func TestPendingDoesNotBlockBooking(t *testing.T) {
	st, _, _ := newStore(t, 4)
	ctx := context.Background()
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 4, Shift: catalog.ShiftMorning,
		Status: model.StatusPending, Actor: "payment",
	}); err != nil {
		t.Fatalf("pending: %v", err)
	}
	// Only two BOOKED shifts violate the invariant; a PENDING overlap
	// does not reject a booking.
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 4, Shift: catalog.ShiftFirstHalf,
		Status: model.StatusBooked, Actor: "payment",
	}); err != nil {
		t.Fatalf("booking over pending overlap should pass: %v", err)
	}
}

func TestIdempotentRepeat(t *testing.T) {
	st, repo, pub := newStore(t, 12)
	ctx := context.Background()
	req := UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftAfternoon,
		Status: model.StatusPending, Actor: "payment",
	}
	first, err := st.ApplyUpdate(ctx, req)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	second, err := st.ApplyUpdate(ctx, req)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if !second.NoOp || second.CommitSeq != first.CommitSeq {
		t.Fatalf("second apply should be a no-op with the same seq: %+v", second)
	}
	if len(pub.all()) != 1 {
		t.Fatal("no-op must not emit a second event")
	}
	snap, _ := repo.Snapshot(ctx, 1)
	if snap.StatusOf(12, catalog.ShiftAfternoon) != model.StatusPending {
		t.Fatal("state changed on repeated apply")
	}
}

func TestSeatNotFound(t *testing.T) {
	st, _, _ := newStore(t, 12)
	_, err := st.ApplyUpdate(context.Background(), UpdateRequest{
		LibraryID: 1, SeatID: 999, Shift: catalog.ShiftMorning,
		Status: model.StatusBooked, Actor: "staff-1",
	})
	if !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("got %v, want ErrSeatNotFound", err)
	}
}

func TestUnknownShiftAndStatus(t *testing.T) {
	st, _, _ := newStore(t, 12)
	ctx := context.Background()
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: "midnight special",
		Status: model.StatusBooked,
	}); !errors.Is(err, ErrUnknownShift) {
		t.Fatalf("got %v, want ErrUnknownShift", err)
	}
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 12, Shift: catalog.ShiftMorning,
		Status: model.Status("HELD"),
	}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("got %v, want ErrInvalidStatus", err)
	}
}

func TestOverrideBypassesInvariant(t *testing.T) {
	st, repo, pub := newStore(t, 8)
	ctx := context.Background()
	if _, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 8, Shift: catalog.ShiftMorning,
		Status: model.StatusBooked, Actor: "staff-1",
	}); err != nil {
		t.Fatalf("booking: %v", err)
	}
	ack, err := st.ApplyUpdate(ctx, UpdateRequest{
		LibraryID: 1, SeatID: 8, Shift: catalog.ShiftFirstHalf,
		Status: model.StatusBooked, Actor: "admin-1", Override: true,
	})
	if err != nil {
		t.Fatalf("override should bypass validation: %v", err)
	}
	if ack.NoOp {
		t.Fatal("override commit reported as no-op")
	}
	snap, _ := repo.Snapshot(ctx, 1)
	if snap.StatusOf(8, catalog.ShiftFirstHalf) != model.StatusBooked {
		t.Fatal("override was not persisted")
	}
	evs := pub.all()
	last := evs[len(evs)-1]
	if !last.Override {
		t.Fatal("override commit must be flagged in the event")
	}
}

func TestPersistenceFailureDoesNotCommit(t *testing.T) {
	st, repo, pub := newStore(t, 2)
	repo.failSet = true
	_, err := st.ApplyUpdate(context.Background(), UpdateRequest{
		LibraryID: 1, SeatID: 2, Shift: catalog.ShiftMorning,
		Status: model.StatusBooked, Actor: "staff-1",
	})
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want PersistenceError", err)
	}
	if len(pub.all()) != 0 {
		t.Fatal("failed write must not emit an event")
	}
	snap, _ := repo.Snapshot(context.Background(), 1)
	if len(snap) != 0 {
		t.Fatal("failed write must leave the map untouched")
	}
}

// Two concurrent bookings of overlapping shifts on the same seat:
// exactly one must win.
func TestConcurrentConflictingBookings(t *testing.T) {
	st, _, _ := newStore(t, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	shifts := []string{catalog.ShiftMorning, catalog.ShiftFirstHalf}
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = st.ApplyUpdate(ctx, UpdateRequest{
				LibraryID: 1, SeatID: 5, Shift: shifts[i],
				Status: model.StatusBooked, Actor: fmt.Sprintf("racer-%d", i),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		var iv *InvariantViolationError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &iv):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("got %d acks and %d rejections, want exactly one of each", ok, rejected)
	}
}

// No sequence of non-override updates may leave a seat BOOKED on two
// overlapping shifts.
func TestInvariantHoldsOverSequences(t *testing.T) {
	st, repo, _ := newStore(t, 1, 2, 3)
	ctx := context.Background()
	cat := catalog.Default()

	seats := []uint64{1, 2, 3}
	statuses := []model.Status{model.StatusEmpty, model.StatusPending, model.StatusBooked}
	n := 0
	for _, seat := range seats {
		for _, shift := range cat.Shifts() {
			for _, status := range statuses {
				// Outcome per call does not matter here; only the
				// resulting state does.
				_, _ = st.ApplyUpdate(ctx, UpdateRequest{
					LibraryID: 1, SeatID: seat, Shift: shift,
					Status: status, Actor: "seq",
				})
				n++
			}
		}
	}
	if n == 0 {
		t.Fatal("no updates applied")
	}
	snap, err := repo.Snapshot(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	for seat, shifts := range snap {
		for a, sa := range shifts {
			for b, sb := range shifts {
				if a == b {
					continue
				}
				if sa == model.StatusBooked && sb == model.StatusBooked && cat.Overlaps(a, b) {
					t.Fatalf("seat %d booked on overlapping shifts %q and %q", seat, a, b)
				}
			}
		}
	}
}

// A subscriber that misses events and refetches the snapshot ends up
// with exactly the authoritative state.
func TestSnapshotResyncMatchesAppliedEvents(t *testing.T) {
	st, _, pub := newStore(t, 10, 11)
	ctx := context.Background()

	baseline, err := st.Snapshot(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	local := baseline.Clone()

	updates := []UpdateRequest{
		{LibraryID: 1, SeatID: 10, Shift: catalog.ShiftMorning, Status: model.StatusPending, Actor: "payment"},
		{LibraryID: 1, SeatID: 10, Shift: catalog.ShiftMorning, Status: model.StatusBooked, Actor: "payment"},
		{LibraryID: 1, SeatID: 11, Shift: catalog.ShiftEvening, Status: model.StatusBooked, Actor: "staff-1"},
		{LibraryID: 1, SeatID: 11, Shift: catalog.ShiftEvening, Status: model.StatusEmpty, Actor: "system", Override: true},
		{LibraryID: 1, SeatID: 11, Shift: catalog.ShiftAllDay, Status: model.StatusBooked, Actor: "staff-2"},
	}
	for i, u := range updates {
		if _, err := st.ApplyUpdate(ctx, u); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	// The subscriber saw only the first two events, then disconnected.
	for _, ev := range pub.all()[:2] {
		if local[ev.SeatID] == nil {
			local[ev.SeatID] = make(map[string]model.Status)
		}
		if ev.Status == model.StatusEmpty {
			delete(local[ev.SeatID], ev.Shift)
		} else {
			local[ev.SeatID][ev.Shift] = ev.Status
		}
	}

	// Reconnect: throw the cache away and refetch.
	rebuilt, err := st.Snapshot(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	authoritative, err := st.Snapshot(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rebuilt) != len(authoritative) {
		t.Fatalf("rebuilt state differs: %v vs %v", rebuilt, authoritative)
	}
	for seat, shifts := range authoritative {
		for shift, want := range shifts {
			if got := rebuilt.StatusOf(seat, shift); got != want {
				t.Fatalf("seat %d shift %q: got %s, want %s", seat, shift, got, want)
			}
		}
	}
	// And it is independent of the partially applied local cache.
	if local.StatusOf(11, catalog.ShiftAllDay) == model.StatusBooked {
		t.Fatal("stale cache unexpectedly saw the missed event")
	}
}

func TestCommitSeqMonotonicPerSeat(t *testing.T) {
	st, _, pub := newStore(t, 6)
	ctx := context.Background()
	transitions := []model.Status{model.StatusPending, model.StatusBooked, model.StatusEmpty, model.StatusPending}
	for _, status := range transitions {
		if _, err := st.ApplyUpdate(ctx, UpdateRequest{
			LibraryID: 1, SeatID: 6, Shift: catalog.ShiftAfternoon,
			Status: status, Actor: "cycle",
		}); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
	var prev uint64
	for _, ev := range pub.all() {
		if ev.CommitSeq <= prev {
			t.Fatalf("commit seq not increasing: %d after %d", ev.CommitSeq, prev)
		}
		prev = ev.CommitSeq
	}
}
