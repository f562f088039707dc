// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviedesk/movie-ticket-booking/internal/handler"
)

// RegisterRoutes maps the booking API onto the provided Echo instance.
// rateLimit is applied to the whole /api/bookings group; cache wraps only
// the read-heavy availability endpoint (the middleware itself restricts
// caching to GET).  Pass-through middlewares are fine here: both factories
// degrade to no-ops when Redis is unavailable.
//
// Static segments (email, reference, search, availability) are registered
// alongside the :id parameter route; Echo resolves static paths first, so
// /api/bookings/email/x never collides with /api/bookings/:id.
func RegisterRoutes(e *echo.Echo, b *handler.BookingHandler, h *handler.HealthHandler, rateLimit, cache echo.MiddlewareFunc) {
	e.GET("/health", h.Health)
	e.GET("/api", handler.APIInfo)

	g := e.Group("/api/bookings", rateLimit)
	g.POST("", b.CreateBooking)
	g.GET("", b.ListBookings)
	g.GET("/email/:email", b.GetBookingsByEmail)
	g.GET("/reference/:reference", b.GetBookingByReference)
	g.GET("/search/all", b.SearchBookings)
	g.GET("/availability/:movie/:time", b.GetAvailability, cache)
	g.GET("/:id", b.GetBooking)
	g.DELETE("/:id", b.DeleteBooking)
}
