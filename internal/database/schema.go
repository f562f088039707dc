package database

import (
	"context"
	"database/sql"
)

// schemaStatements creates the bookings tables when they do not exist yet.
// booking_reference carries a unique index; booking_seats rows cascade on
// delete so cancelling a booking removes its seats in one statement.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		customer_name VARCHAR(255) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(32) NOT NULL,
		movie_title VARCHAR(255) NOT NULL,
		movie_time VARCHAR(64) NOT NULL,
		theater VARCHAR(255) NOT NULL,
		total_amount INT UNSIGNED NOT NULL,
		booking_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status VARCHAR(32) NOT NULL DEFAULT 'confirmed',
		booking_reference VARCHAR(64) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_bookings_reference (booking_reference),
		KEY idx_bookings_email (customer_email),
		KEY idx_bookings_show (movie_title, movie_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		booking_id BIGINT UNSIGNED NOT NULL,
		position INT UNSIGNED NOT NULL,
		seat_label VARCHAR(16) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_booking_seats_booking (booking_id),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id)
			REFERENCES bookings (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema executes the schema statements.  Every statement is
// idempotent, so running it on each startup is safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
