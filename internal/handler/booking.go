package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviedesk/movie-ticket-booking/internal/model"
	"github.com/moviedesk/movie-ticket-booking/internal/queue"
	"github.com/moviedesk/movie-ticket-booking/internal/repository"
)

// EventPublisher sends booking lifecycle events to the message broker.
// Implementations must be safe for concurrent use.  A nil publisher
// disables event publishing entirely.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error
}

// BookingHandler serves the booking API.  It depends only on the
// BookingStore interface and an optional event publisher, so tests can
// exercise every route against in-memory doubles.
type BookingHandler struct {
	Store  repository.BookingStore
	Events EventPublisher
}

// NewBookingHandler constructs a BookingHandler.  The store must be
// non-nil; events may be nil to disable publishing.
func NewBookingHandler(store repository.BookingStore, events EventPublisher) *BookingHandler {
	if store == nil {
		panic("nil store passed to NewBookingHandler")
	}
	return &BookingHandler{Store: store, Events: events}
}

// CreateBooking handles POST /api/bookings.  It validates and normalizes
// the submitted fields, derives the total amount and booking reference,
// and persists the record.  Seat conflicts against existing bookings are
// not checked here; availability is advisory and queried separately by
// clients before submitting.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req model.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	booking, errs := model.NewBooking(req, time.Now())
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Validation failed",
			"errors":  errs,
		})
	}
	if err := h.Store.Create(c.Request().Context(), booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Server error. Please try again.",
			"error":   err.Error(),
		})
	}
	h.publish(c, queue.EventBookingCreated, booking)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Booking created successfully!",
		"booking": booking,
	})
}

// ListBookings handles GET /api/bookings and returns every booking,
// newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.Store.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings":      bookings,
		"totalBookings": len(bookings),
	})
}

// GetBooking handles GET /api/bookings/:id.  A non-numeric or zero id is
// reported as malformed rather than not found.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseBookingID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid booking ID"})
	}
	booking, err := h.Store.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, booking)
}

// GetBookingsByEmail handles GET /api/bookings/email/:email.  The email is
// lowercased before matching, making the lookup case-insensitive.
func (h *BookingHandler) GetBookingsByEmail(c echo.Context) error {
	email := strings.ToLower(pathParam(c, "email"))
	bookings, err := h.Store.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings":      bookings,
		"total":         len(bookings),
		"customerEmail": email,
	})
}

// GetBookingByReference handles GET /api/bookings/reference/:reference.
// References are stored uppercase, so the input is uppercased before
// matching and lowercase references still resolve.
func (h *BookingHandler) GetBookingByReference(c echo.Context) error {
	reference := strings.ToUpper(pathParam(c, "reference"))
	booking, err := h.Store.GetByReference(c.Request().Context(), reference)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"message": "No booking found with this reference number",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error searching booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking": booking,
		"message": "Booking found successfully",
	})
}

// SearchBookings handles GET /api/bookings/search/all?email=&reference=.
// Both criteria are optional; whichever are present are normalized and
// combined.  Requiring at least one criterion is left to the client.
func (h *BookingHandler) SearchBookings(c echo.Context) error {
	email := c.QueryParam("email")
	reference := c.QueryParam("reference")
	bookings, err := h.Store.Search(c.Request().Context(),
		strings.ToLower(email), strings.ToUpper(reference))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to search bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings": bookings,
		"total":    len(bookings),
		"searchCriteria": echo.Map{
			"email":     email,
			"reference": reference,
		},
	})
}

// DeleteBooking handles DELETE /api/bookings/:id.  Cancellation is a
// permanent removal; the deleted record is returned once and no audit
// trail is kept.
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	id, err := parseBookingID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid booking ID"})
	}
	booking, err := h.Store.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to cancel booking"})
	}
	h.publish(c, queue.EventBookingCancelled, booking)
	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Booking cancelled successfully",
		"cancelledBooking": booking,
	})
}

// GetAvailability handles GET /api/bookings/availability/:movie/:time.
// It returns the flattened seat labels of every confirmed booking for the
// movie and showtime.  Theater is not part of the filter.
func (h *BookingHandler) GetAvailability(c echo.Context) error {
	movie := pathParam(c, "movie")
	showTime := pathParam(c, "time")
	seats, err := h.Store.BookedSeats(c.Request().Context(), movie, showTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch availability"})
	}
	if seats == nil {
		seats = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookedSeats": seats,
		"totalBooked": len(seats),
	})
}

// publish sends a booking event when a publisher is configured.  Failures
// are already logged by the publisher and never affect the response.
func (h *BookingHandler) publish(c echo.Context, eventType string, b *model.Booking) {
	if h.Events == nil {
		return
	}
	_ = h.Events.PublishBookingEvent(c.Request().Context(), queue.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		CustomerEmail:    b.CustomerEmail,
		MovieTitle:       b.MovieTitle,
		MovieTime:        b.MovieTime,
		Theater:          b.Theater,
		Seats:            b.Seats,
		TotalAmount:      b.TotalAmount,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

// pathParam returns a path parameter with percent-escapes decoded.  Echo
// hands params back still escaped when the raw path carries non-canonical
// escapes, and clients encode emails and movie titles ("%40", "%3A",
// "%20"), so matching on the raw value would miss every stored row.  An
// undecodable value is used as-is.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// parseBookingID parses a path id parameter.  Zero is rejected along with
// anything non-numeric; both count as a malformed identifier.
func parseBookingID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid booking id")
	}
	return id, nil
}
