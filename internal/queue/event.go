// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking is created or cancelled.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingEvent struct {
	Type             string   `json:"type"`
	BookingID        uint64   `json:"booking_id"`
	BookingReference string   `json:"booking_reference"`
	CustomerEmail    string   `json:"customer_email"`
	MovieTitle       string   `json:"movie_title"`
	MovieTime        string   `json:"movie_time"`
	Theater          string   `json:"theater"`
	Seats            []string `json:"seats"`
	TotalAmount      int      `json:"total_amount"`
	OccurredAt       string   `json:"occurred_at"`
}
