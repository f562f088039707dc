// Package repository provides data access to the bookings store.  Sentinel
// errors defined here let handlers distinguish failure scenarios without
// inspecting driver-specific error values.
package repository

import "errors"

// ErrBookingNotFound is returned when a lookup or delete targets a booking
// that does not exist.  Handlers should translate this into an HTTP 404
// response.
var ErrBookingNotFound = errors.New("booking not found")
