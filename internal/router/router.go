package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/library-seat-reservation/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/library-seat-reservation/internal/middleware" // JWT, role and rate-limit middleware
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the operator authentication endpoints under
// /v1/auth.  Registration creates STAFF accounts; ADMIN promotion is an
// out-of-band step.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterBooking wires the seat map endpoints.  Snapshot and
// availability reads are public so anonymous patrons can browse; the
// status update endpoint requires an authenticated STAFF or ADMIN
// operator (the ADMIN-only override gate lives in the handler, since it
// depends on the request body).  The rate limiter guards all /v1
// routes and degrades to a pass-through when Redis is unavailable.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, l *handler.LiveHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	v1 := e.Group("/v1")
	if rateLimit != nil {
		v1.Use(rateLimit)
	}

	v1.GET("/shifts", b.GetShifts)
	v1.GET("/libraries/:id/bookings", b.GetBookings)
	v1.GET("/libraries/:id/availability", b.GetAvailability)

	upd := v1.Group("")
	upd.Use(middleware.JWTAuth(jwtSecret))
	upd.Use(middleware.RequireRole("STAFF", "ADMIN"))
	upd.PATCH("/libraries/:id/seats/:seatID/status", b.UpdateSeatStatus)

	// The live channel sits outside /v1: browsers cannot set an
	// Authorization header on a websocket dial, and subscribers are
	// read-only anyway.
	e.GET("/ws/libraries/:id", l.Subscribe)
}
