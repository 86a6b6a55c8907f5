package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/hub"
	"github.com/iliyamo/library-seat-reservation/internal/repository"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// LiveHandler attaches websocket subscribers to a library's broadcast
// room.  The server pushes one JSON change event per committed status
// change; there is no backlog, so clients must fetch the snapshot after
// connecting (and again after every reconnect) to establish a baseline.
type LiveHandler struct {
	Hub       *hub.Hub
	Libraries LibraryFinder
}

// NewLiveHandler constructs a LiveHandler.  Both dependencies must be
// non-nil.
func NewLiveHandler(h *hub.Hub, libraries LibraryFinder) *LiveHandler {
	if h == nil || libraries == nil {
		panic("nil dependency passed to NewLiveHandler")
	}
	return &LiveHandler{Hub: h, Libraries: libraries}
}

// Subscribe handles GET /ws/libraries/:id.  It validates the library,
// upgrades the connection and hands it to the hub.  Subscribers are
// listeners only; inbound frames are discarded.
func (h *LiveHandler) Subscribe(c echo.Context) error {
	libID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || libID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
	}
	if _, err := h.Libraries.GetByID(c.Request().Context(), libID); err != nil {
		if errors.Is(err, repository.ErrLibraryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "library not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote an error response.
		return nil
	}
	h.Hub.HandleConn(conn, strconv.FormatUint(libID, 10))
	return nil
}
