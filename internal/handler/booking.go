package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/availability"
	"github.com/iliyamo/library-seat-reservation/internal/catalog"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/repository"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// LibraryFinder resolves provisioned libraries.  Satisfied by
// repository.LibraryRepo; tests substitute a fake.
type LibraryFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.Library, error)
}

// SeatLister lists the fixed seat layout of a library.  Satisfied by
// repository.SeatRepo.
type SeatLister interface {
	ListByLibrary(ctx context.Context, libraryID uint64) ([]model.Seat, error)
}

// BookingHandler serves the seat map: snapshot queries, per-shift
// availability and the validated status update endpoint.  All writes go
// through the booking store; the handler never touches the map
// directly.
type BookingHandler struct {
	Store     *store.BookingStore
	Libraries LibraryFinder
	Seats     SeatLister
	Catalog   *catalog.Catalog
}

// NewBookingHandler constructs a BookingHandler with the provided
// collaborators.  All dependencies must be non-nil.
func NewBookingHandler(st *store.BookingStore, libraries LibraryFinder, seats SeatLister, cat *catalog.Catalog) *BookingHandler {
	if st == nil || libraries == nil || seats == nil || cat == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Store: st, Libraries: libraries, Seats: seats, Catalog: cat}
}

// GetShifts handles GET /v1/shifts.  It returns the shift labels in
// catalog order so clients can render the shift picker without
// hardcoding the deployment's timetable.
func (h *BookingHandler) GetShifts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"shifts": h.Catalog.Shifts()})
}

// GetBookings handles GET /v1/libraries/:id/bookings.  It returns the
// full seat×shift status map of one library.  With ?group_by=shift the
// map is grouped as shift → list of {seat_id, status}; the default
// grouping is seat_id → shift → status.  Pairs that are EMPTY are
// omitted either way.
func (h *BookingHandler) GetBookings(c echo.Context) error {
	libID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || libID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Libraries.GetByID(ctx, libID); err != nil {
		if errors.Is(err, repository.ErrLibraryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "library not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	snap, err := h.Store.Snapshot(ctx, libID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}

	if c.QueryParam("group_by") == "shift" {
		type seatStatus struct {
			SeatID uint64       `json:"seat_id"`
			Status model.Status `json:"status"`
		}
		byShift := make(map[string][]seatStatus)
		for seatID, shifts := range snap {
			for shift, status := range shifts {
				byShift[shift] = append(byShift[shift], seatStatus{SeatID: seatID, Status: status})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{
			"library_id": libID,
			"bookings":   byShift,
		})
	}

	bySeat := make(map[string]map[string]model.Status, len(snap))
	for seatID, shifts := range snap {
		bySeat[strconv.FormatUint(seatID, 10)] = shifts
	}
	return c.JSON(http.StatusOK, echo.Map{
		"library_id": libID,
		"bookings":   bySeat,
	})
}

// GetAvailability handles GET /v1/libraries/:id/availability?shift=S.
// For every seat of the library it resolves the effective display
// status for the requested shift, taking overlapping shifts into
// account exactly the way a view client would.
func (h *BookingHandler) GetAvailability(c echo.Context) error {
	libID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || libID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
	}
	shift := c.QueryParam("shift")
	if shift == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shift query parameter is required"})
	}
	if !h.Catalog.Has(shift) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown shift"})
	}
	ctx := c.Request().Context()
	if _, err := h.Libraries.GetByID(ctx, libID); err != nil {
		if errors.Is(err, repository.ErrLibraryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "library not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.Seats.ListByLibrary(ctx, libID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	snap, err := h.Store.Snapshot(ctx, libID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	type seatAvailability struct {
		SeatID uint64                     `json:"seat_id"`
		Label  string                     `json:"label"`
		Status availability.DisplayStatus `json:"status"`
	}
	items := make([]seatAvailability, 0, len(seats))
	for _, s := range seats {
		items = append(items, seatAvailability{
			SeatID: s.ID,
			Label:  s.Label,
			Status: availability.DisplayFor(h.Catalog, snap, s.ID, shift),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"library_id": libID,
		"shift":      shift,
		"seats":      items,
	})
}

// UpdateSeatStatus handles PATCH /v1/libraries/:id/seats/:seatID/status.
// The body carries {shift, status, override}.  The acting operator is
// taken from the JWT; override additionally requires the ADMIN role.
// Responses: 200 with the commit sequence, 409 with the conflicting
// shifts on an invariant violation, 404 for unknown seats, 400 for
// malformed input.
func (h *BookingHandler) UpdateSeatStatus(c echo.Context) error {
	libID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || libID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
	}
	seatID, err := strconv.ParseUint(c.Param("seatID"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body struct {
		Shift    string `json:"shift"`
		Status   string `json:"status"`
		Override bool   `json:"override"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	actor, _ := c.Get("user_id").(string)
	if actor == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if body.Override {
		if role, _ := c.Get("role").(string); role != "ADMIN" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "override requires admin role"})
		}
	}

	ack, err := h.Store.ApplyUpdate(c.Request().Context(), store.UpdateRequest{
		LibraryID: libID,
		SeatID:    seatID,
		Shift:     body.Shift,
		Status:    model.Status(body.Status),
		Actor:     actor,
		Override:  body.Override,
	})
	if err != nil {
		var iv *store.InvariantViolationError
		var pe *store.PersistenceError
		switch {
		case errors.As(err, &iv):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":              "invariant_violation",
				"detail":             "seat already booked for an overlapping shift",
				"conflicting_shifts": iv.ConflictingShifts,
			})
		case errors.Is(err, store.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, store.ErrUnknownShift):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown shift"})
		case errors.Is(err, store.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		case errors.As(err, &pe):
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "persistence_failure", "detail": "update not committed, retry"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"commit_seq": ack.CommitSeq,
		"no_op":      ack.NoOp,
	})
}
