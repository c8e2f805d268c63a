package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the back-office store.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Rooms
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			number INTEGER UNIQUE NOT NULL,
			complex TEXT NOT NULL DEFAULT '',
			base_price REAL NOT NULL,
			special_prices TEXT NOT NULL DEFAULT '{}',
			description TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Bookings; stays are half-open [check_in, check_out)
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			check_in DATETIME NOT NULL,
			check_out DATETIME NOT NULL,
			nights INTEGER NOT NULL,
			guest_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			price_per_night REAL NOT NULL DEFAULT 0,
			price_per_night_no_vat REAL NOT NULL DEFAULT 0,
			total_price REAL NOT NULL DEFAULT 0,
			is_tourist BOOLEAN NOT NULL DEFAULT 0,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			notes TEXT NOT NULL DEFAULT '',
			is_multi_room BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1
		)`,

		// Rooms occupied per booking
		`CREATE TABLE IF NOT EXISTS booking_rooms (
			booking_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			PRIMARY KEY (booking_id, room_id),
			FOREIGN KEY (booking_id) REFERENCES bookings(id),
			FOREIGN KEY (room_id) REFERENCES rooms(id)
		)`,

		// Per-slot dynamic price overrides; date is a YYYY-MM-DD day key
		`CREATE TABLE IF NOT EXISTS dynamic_prices (
			room_id TEXT NOT NULL,
			date TEXT NOT NULL,
			price REAL NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (room_id, date),
			FOREIGN KEY (room_id) REFERENCES rooms(id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_bookings_dates ON bookings(check_in, check_out)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(payment_status)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_rooms_room ON booking_rooms(room_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
