package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/moviedesk/movie-ticket-booking/internal/model"
)

// BookingStore is the persistence contract consumed by the HTTP handlers.
// It is satisfied by BookingRepo and by test doubles, so handlers never
// touch a concrete database handle directly.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListAll(ctx context.Context) ([]model.Booking, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]model.Booking, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	Search(ctx context.Context, email, reference string) ([]model.Booking, error)
	Delete(ctx context.Context, id uint64) (*model.Booking, error)
	BookedSeats(ctx context.Context, movieTitle, movieTime string) ([]string, error)
}

// BookingRepo provides CRUD operations for bookings and their seats.
// Each booking row owns an ordered set of booking_seats rows; the seat
// table is always read and written together with its parent.  All
// timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, customer_name, customer_email, customer_phone,
       movie_title, movie_time, theater, total_amount, booking_date,
       status, booking_reference, created_at, updated_at`

// Create inserts a booking and its seats inside a transaction.  It
// populates the generated ID and the store-assigned timestamps on the
// provided booking.  The unique index on booking_reference surfaces a
// reference collision as a driver error, which is returned unchanged.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO bookings
		(customer_name, customer_email, customer_phone, movie_title, movie_time,
		 theater, total_amount, booking_date, status, booking_reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.MovieTitle, b.MovieTime,
		b.Theater, b.TotalAmount, b.BookingDate, b.Status, b.BookingReference,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if err := r.insertSeatsTx(ctx, tx, b.ID, b.Seats); err != nil {
		return err
	}

	// Query the row back to populate defaults assigned by the store.
	const sel = `SELECT booking_date, created_at, updated_at FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.BookingDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertSeatsTx bulk-inserts the seat labels for one booking in a single
// statement.  Position records the order the seats were submitted in.
func (r *BookingRepo) insertSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, position, seat_label) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	for i, label := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, bookingID, i, label)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListAll returns every booking ordered by creation time, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, "", nil)
}

// ListByEmail returns all bookings for the given (already lowercased)
// customer email, newest first.
func (r *BookingRepo) ListByEmail(ctx context.Context, email string) ([]model.Booking, error) {
	return r.list(ctx, "WHERE customer_email = ?", []interface{}{email})
}

// Search returns bookings matching whichever of email and reference are
// non-empty, newest first.  Both empty returns every booking; requiring at
// least one criterion is the client's responsibility.
func (r *BookingRepo) Search(ctx context.Context, email, reference string) ([]model.Booking, error) {
	var conds []string
	var args []interface{}
	if email != "" {
		conds = append(conds, "customer_email = ?")
		args = append(args, email)
	}
	if reference != "" {
		conds = append(conds, "booking_reference = ?")
		args = append(args, reference)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return r.list(ctx, where, args)
}

// list runs the shared booking query with an optional WHERE clause and
// batch-loads the seats for every returned row in a single query.
func (r *BookingRepo) list(ctx context.Context, where string, args []interface{}) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings ` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		b.Seats = []string{}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := make([]interface{}, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
		placeholders = append(placeholders, "?")
	}
	seatQ := `SELECT booking_id, seat_label FROM booking_seats
	          WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY booking_id, position`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bookingID uint64
		var label string
		if err := srows.Scan(&bookingID, &label); err != nil {
			return nil, err
		}
		if idx, ok := index[bookingID]; ok {
			bookings[idx].Seats = append(bookings[idx].Seats, label)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetByID returns a single booking with its seats.  ErrBookingNotFound is
// returned when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByReference returns the booking carrying the given (already
// uppercased) reference, or ErrBookingNotFound.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return r.getOne(ctx, "booking_reference = ?", reference)
}

func (r *BookingRepo) getOne(ctx context.Context, cond string, arg interface{}) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + cond
	var b model.Booking
	err := scanBooking(r.db.QueryRowContext(ctx, q, arg), &b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	seats, err := r.seatsFor(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Seats = seats
	return &b, nil
}

func (r *BookingRepo) seatsFor(ctx context.Context, bookingID uint64) ([]string, error) {
	const q = `SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		seats = append(seats, label)
	}
	return seats, rows.Err()
}

// Delete removes a booking permanently and returns the deleted record.
// The booking_seats rows go with it via the cascading foreign key.
// ErrBookingNotFound is returned when the id has no match.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const del = `DELETE FROM bookings WHERE id = ?`
	result, err := r.db.ExecContext(ctx, del, id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// BookedSeats returns the flattened list of seat labels across every
// confirmed booking for the given movie and showtime.  Theater is
// deliberately not part of the filter; availability treats all theaters
// showing the same movie and time as one seat map.
func (r *BookingRepo) BookedSeats(ctx context.Context, movieTitle, movieTime string) ([]string, error) {
	const q = `SELECT bs.seat_label
	           FROM booking_seats bs
	           JOIN bookings b ON b.id = bs.booking_id
	           WHERE b.movie_title = ? AND b.movie_time = ? AND b.status = ?
	           ORDER BY bs.booking_id, bs.position`
	rows, err := r.db.QueryContext(ctx, q, movieTitle, movieTime, model.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		seats = append(seats, label)
	}
	return seats, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner, b *model.Booking) error {
	return row.Scan(
		&b.ID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.MovieTitle, &b.MovieTime, &b.Theater, &b.TotalAmount, &b.BookingDate,
		&b.Status, &b.BookingReference, &b.CreatedAt, &b.UpdatedAt,
	)
}
