package model

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// SeatPrice is the fixed price charged per seat.  The total amount of a
// booking is derived from it exactly once, at creation time.
const SeatPrice = 200

// StatusConfirmed is the status assigned to every new booking.  Cancellation
// removes the record entirely, so no other status value is ever written.
const StatusConfirmed = "confirmed"

// referencePrefix starts every booking reference.  The full reference is the
// prefix, the creation time in unix milliseconds and a short random suffix,
// which together make collisions astronomically unlikely.
const referencePrefix = "MOV"

// minPhoneDigits is the minimum number of digits a customer phone number
// must contain after normalization.
const minPhoneDigits = 10

// Booking is a persisted reservation of one or more seats for a specific
// movie, showtime and theater.  Bookings are immutable once created; the
// only lifecycle transition is deletion.
//
// Fields:
//  ID               – primary key identifier.
//  CustomerName     – trimmed customer name.
//  CustomerEmail    – trimmed, lowercased customer email; search key.
//  CustomerPhone    – digits-only phone number.
//  MovieTitle       – movie being booked.
//  MovieTime        – showtime label (e.g. "7:00 PM").
//  Theater          – theater name.
//  Seats            – ordered seat labels (e.g. "A1").
//  TotalAmount      – len(Seats) * SeatPrice, fixed at creation.
//  BookingDate      – when the booking was made.
//  Status           – always "confirmed" while the record exists.
//  BookingReference – unique human-shareable reference.
//  CreatedAt        – creation timestamp assigned by the store.
//  UpdatedAt        – last update timestamp assigned by the store.
type Booking struct {
	ID               uint64    `json:"id"`
	CustomerName     string    `json:"customerName"`
	CustomerEmail    string    `json:"customerEmail"`
	CustomerPhone    string    `json:"customerPhone"`
	MovieTitle       string    `json:"movieTitle"`
	MovieTime        string    `json:"movieTime"`
	Theater          string    `json:"theater"`
	Seats            []string  `json:"seats"`
	TotalAmount      int       `json:"totalAmount"`
	BookingDate      time.Time `json:"bookingDate"`
	Status           string    `json:"status"`
	BookingReference string    `json:"bookingReference"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreateBookingRequest carries the raw, unvalidated fields submitted by a
// client when creating a booking.
type CreateBookingRequest struct {
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	CustomerPhone string   `json:"customerPhone"`
	MovieTitle    string   `json:"movieTitle"`
	MovieTime     string   `json:"movieTime"`
	Theater       string   `json:"theater"`
	Seats         []string `json:"seats"`
}

// NewBooking validates and normalizes a creation request and builds the
// booking to be persisted.  On validation failure it returns nil and the
// itemized list of field error messages.  Normalization trims every text
// field, lowercases the email and strips non-digit characters from the
// phone number.  The total amount, status, booking date and reference are
// all assigned here.
func NewBooking(req CreateBookingRequest, now time.Time) (*Booking, []string) {
	name := strings.TrimSpace(req.CustomerName)
	email := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	phone := digitsOnly(req.CustomerPhone)
	title := strings.TrimSpace(req.MovieTitle)
	showTime := strings.TrimSpace(req.MovieTime)
	theater := strings.TrimSpace(req.Theater)
	seats := normalizeSeats(req.Seats)

	var errs []string
	if name == "" {
		errs = append(errs, "customerName is required")
	}
	if email == "" {
		errs = append(errs, "customerEmail is required")
	}
	if phone == "" {
		errs = append(errs, "customerPhone is required")
	} else if len(phone) < minPhoneDigits {
		errs = append(errs, "customerPhone must contain at least 10 digits")
	}
	if title == "" {
		errs = append(errs, "movieTitle is required")
	}
	if showTime == "" {
		errs = append(errs, "movieTime is required")
	}
	if theater == "" {
		errs = append(errs, "theater is required")
	}
	if len(seats) == 0 {
		errs = append(errs, "please select at least one seat")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &Booking{
		CustomerName:     name,
		CustomerEmail:    email,
		CustomerPhone:    phone,
		MovieTitle:       title,
		MovieTime:        showTime,
		Theater:          theater,
		Seats:            seats,
		TotalAmount:      len(seats) * SeatPrice,
		BookingDate:      now.UTC(),
		Status:           StatusConfirmed,
		BookingReference: NewBookingReference(now),
	}, nil
}

// NewBookingReference generates a booking reference of the form
// "MOV" + unix milliseconds + 5 uppercase alphanumeric characters.
func NewBookingReference(now time.Time) string {
	return referencePrefix + strconv.FormatInt(now.UnixMilli(), 10) + randomSuffix(5)
}

// referenceAlphabet holds the characters a reference suffix is drawn from.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomSuffix returns n characters drawn from referenceAlphabet using
// crypto/rand.  A read failure falls back to the current nanosecond clock so
// that reference generation never blocks booking creation.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		seed := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(seed >> (uint(i) * 8))
		}
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(out)
}

// digitsOnly strips every non-digit character from s.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeSeats trims each seat label and drops empty entries, preserving
// the submitted order.
func normalizeSeats(seats []string) []string {
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
