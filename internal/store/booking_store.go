// Package store implements the single write authority over the
// seat×shift status map.  Every mutation flows through ApplyUpdate,
// which validates the no-double-booking invariant against the current
// durable state, commits, and only then emits a change event.  One
// store instance owns one deployment's map; updates for the same seat
// are serialized, updates for different seats proceed independently.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/library-seat-reservation/internal/catalog"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// BookingRepository is the durable backing of the seat×shift map.  The
// MySQL implementation lives in internal/repository; tests substitute
// an in-memory fake.
type BookingRepository interface {
	SeatExists(ctx context.Context, libraryID, seatID uint64) (bool, error)
	SeatStatuses(ctx context.Context, libraryID, seatID uint64) (map[string]model.Status, error)
	SetStatus(ctx context.Context, rec model.BookingRecord) error
	Snapshot(ctx context.Context, libraryID uint64) (model.Snapshot, error)
}

// Publisher receives a change event after every durable commit.  The
// websocket hub implements it; publishing must never block and its
// failures never surface to the committing caller.
type Publisher interface {
	Publish(room string, ev model.ChangeEvent)
}

// AuditSink receives a copy of every committed change for offline
// processing (the RabbitMQ audit trail).  Called on its own goroutine;
// errors are the sink's problem, not the committer's.
type AuditSink func(ctx context.Context, ev model.ChangeEvent)

// ErrSeatNotFound rejects updates for seats outside the provisioned
// layout.  Handlers translate it into 404.
var ErrSeatNotFound = errors.New("seat not part of the provisioned layout")

// ErrUnknownShift rejects updates referencing a shift label missing
// from the catalog.  Handlers translate it into 400.
var ErrUnknownShift = errors.New("shift not in catalog")

// ErrInvalidStatus rejects updates carrying a status outside the
// EMPTY/PENDING/BOOKED set.  Handlers translate it into 400.
var ErrInvalidStatus = errors.New("invalid status")

// InvariantViolationError is returned when committing the update would
// book the seat into two overlapping shifts.  The conflicting shifts
// are reported so the initiator can show them to the end user.
type InvariantViolationError struct {
	ConflictingShifts []string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("seat already booked for overlapping shifts %v", e.ConflictingShifts)
}

// PersistenceError wraps a failed durable write.  The update is not
// committed, no event is published, and the caller may retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "durable write failed: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// UpdateRequest describes one status change attempt.
type UpdateRequest struct {
	LibraryID uint64
	SeatID    uint64
	Shift     string
	Status    model.Status
	Actor     string
	// Override bypasses invariant validation.  It is the audited admin
	// path: still serialized per seat, still broadcast, still flagged
	// in the emitted event.
	Override bool
}

// Ack confirms a processed update.  NoOp is set when the stored status
// already matched and nothing was written or broadcast.
type Ack struct {
	CommitSeq uint64
	NoOp      bool
}

// BookingStore validates and commits seat status updates.
type BookingStore struct {
	cat   *catalog.Catalog
	repo  BookingRepository
	pub   Publisher
	audit AuditSink

	mu      sync.Mutex
	seatMu  map[string]*sync.Mutex
	lastSeq map[string]uint64
	seq     uint64
}

// New constructs a BookingStore.  pub may be nil when no live fan-out
// is wanted (e.g. in housekeeping tools); audit may be nil when no
// audit trail is configured.
func New(cat *catalog.Catalog, repo BookingRepository, pub Publisher, audit AuditSink) *BookingStore {
	if cat == nil || repo == nil {
		panic("nil catalog or repository passed to store.New")
	}
	return &BookingStore{
		cat:     cat,
		repo:    repo,
		pub:     pub,
		audit:   audit,
		seatMu:  make(map[string]*sync.Mutex),
		lastSeq: make(map[string]uint64),
	}
}

// Snapshot returns a full read-only copy of one library's seat×shift
// map.  Subscribers call it on connect and after reconnects to rebuild
// their baseline before applying live events.
func (s *BookingStore) Snapshot(ctx context.Context, libraryID uint64) (model.Snapshot, error) {
	return s.repo.Snapshot(ctx, libraryID)
}

// ApplyUpdate validates and durably commits one status change, then
// emits a change event to the library's room.  It blocks until the
// write is durable; event emission is fire-and-forget.
//
// Unless req.Override is set, a transition into BOOKED is rejected with
// an InvariantViolationError when any overlapping shift of the same
// seat is already BOOKED.  Validation always runs against the store's
// current authoritative state, inside the seat's critical section, so
// two racing conflicting bookings can never both pass.
//
// Re-applying the stored status is a no-op success: nothing is written
// and no event is emitted.
func (s *BookingStore) ApplyUpdate(ctx context.Context, req UpdateRequest) (Ack, error) {
	if !req.Status.Valid() {
		return Ack{}, ErrInvalidStatus
	}
	if !s.cat.Has(req.Shift) {
		return Ack{}, ErrUnknownShift
	}

	key := seatKey(req.LibraryID, req.SeatID)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	ok, err := s.repo.SeatExists(ctx, req.LibraryID, req.SeatID)
	if err != nil {
		return Ack{}, &PersistenceError{Err: err}
	}
	if !ok {
		return Ack{}, ErrSeatNotFound
	}

	statuses, err := s.repo.SeatStatuses(ctx, req.LibraryID, req.SeatID)
	if err != nil {
		return Ack{}, &PersistenceError{Err: err}
	}

	current := model.StatusEmpty
	if st, ok := statuses[req.Shift]; ok {
		current = st
	}
	if current == req.Status {
		return Ack{CommitSeq: s.lastSeqFor(key), NoOp: true}, nil
	}

	if req.Status == model.StatusBooked && !req.Override {
		var conflicts []string
		for _, o := range s.cat.Overlapping(req.Shift) {
			if o != req.Shift && statuses[o] == model.StatusBooked {
				conflicts = append(conflicts, o)
			}
		}
		if len(conflicts) > 0 {
			return Ack{}, &InvariantViolationError{ConflictingShifts: conflicts}
		}
	}

	now := time.Now().UTC()
	rec := model.BookingRecord{
		LibraryID: req.LibraryID,
		SeatID:    req.SeatID,
		Shift:     req.Shift,
		Status:    req.Status,
		Actor:     req.Actor,
		UpdatedAt: now,
	}
	if err := s.repo.SetStatus(ctx, rec); err != nil {
		return Ack{}, &PersistenceError{Err: err}
	}

	seq := s.nextSeq(key)
	ev := model.ChangeEvent{
		LibraryID:   req.LibraryID,
		SeatID:      req.SeatID,
		Shift:       req.Shift,
		Status:      req.Status,
		Actor:       req.Actor,
		Override:    req.Override,
		CommitSeq:   seq,
		CommittedAt: now.Format(time.RFC3339),
	}
	if req.Override {
		log.Printf("booking-store: override commit library=%d seat=%d shift=%q status=%s actor=%s seq=%d",
			req.LibraryID, req.SeatID, req.Shift, req.Status, req.Actor, seq)
	}
	// Publishing happens inside the seat critical section so events for
	// one seat enter the fan-out queue in commit order.
	if s.pub != nil {
		s.pub.Publish(strconv.FormatUint(req.LibraryID, 10), ev)
	}
	if s.audit != nil {
		go s.audit(context.WithoutCancel(ctx), ev)
	}
	return Ack{CommitSeq: seq}, nil
}

func seatKey(libraryID, seatID uint64) string {
	return strconv.FormatUint(libraryID, 10) + ":" + strconv.FormatUint(seatID, 10)
}

// lockFor returns the per-seat mutex, creating it on first use.
func (s *BookingStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.seatMu[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.seatMu[key] = m
	return m
}

func (s *BookingStore) nextSeq(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.lastSeq[key] = s.seq
	return s.seq
}

func (s *BookingStore) lastSeqFor(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq[key]
}
