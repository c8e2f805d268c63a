package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
	"github.com/Hezi12/rothschild-backoffice/internal/repository"
)

// FetchBookings returns every booking overlapping [from, to), canceled
// ones included; the engine filters those itself.
func (db *DB) FetchBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, check_in, check_out, nights, guest_name, phone,
		       price_per_night, price_per_night_no_vat, total_price,
		       is_tourist, payment_status, notes, is_multi_room,
		       created_at, updated_at, version
		FROM bookings
		WHERE check_in < ? AND check_out > ?
		ORDER BY created_at`, to, from)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var (
		out  []*models.Booking
		byID = make(map[string]*models.Booking)
	)
	for rows.Next() {
		var (
			b      models.Booking
			status string
		)
		if err := rows.Scan(&b.ID, &b.CheckIn, &b.CheckOut, &b.Nights, &b.GuestName, &b.Phone,
			&b.PricePerNight, &b.PricePerNightNoVat, &b.TotalPrice,
			&b.IsTourist, &status, &b.Notes, &b.IsMultiRoomBooking,
			&b.CreatedAt, &b.UpdatedAt, &b.Version); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		parsed, err := models.ParsePaymentStatus(status)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		b.PaymentStatus = parsed
		out = append(out, &b)
		byID[b.ID] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachRooms(ctx, byID, from, to); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) attachRooms(ctx context.Context, byID map[string]*models.Booking, from, to time.Time) error {
	rows, err := db.QueryContext(ctx, `
		SELECT br.booking_id, br.room_id
		FROM booking_rooms br
		JOIN bookings b ON b.id = br.booking_id
		WHERE b.check_in < ? AND b.check_out > ?`, to, from)
	if err != nil {
		return fmt.Errorf("query booking rooms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID, roomID string
		if err := rows.Scan(&bookingID, &roomID); err != nil {
			return fmt.Errorf("scan booking room: %w", err)
		}
		if b, ok := byID[bookingID]; ok {
			b.Rooms = append(b.Rooms, models.RoomRef{ID: roomID})
		}
	}
	return rows.Err()
}

// CreateBooking inserts a booking together with its room links, rejecting
// stays that would double-book a slot. Booking creation is an external
// collaborator concern; it lives here so the admin surface and tests have
// a real one.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentPending
	}
	b.IsMultiRoomBooking = len(b.Rooms) > 1

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if b.Active() {
		for _, roomID := range b.OccupiedRoomIDs() {
			if err := checkSlotFree(ctx, tx, roomID, b.ID, b.CheckIn, b.CheckOut); err != nil {
				return err
			}
		}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (id, check_in, check_out, nights, guest_name, phone,
			price_per_night, price_per_night_no_vat, total_price,
			is_tourist, payment_status, notes, is_multi_room, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		b.ID, models.Midnight(b.CheckIn), models.Midnight(b.CheckOut), b.Nights, b.GuestName, b.Phone,
		b.PricePerNight, b.PricePerNightNoVat, b.TotalPrice,
		b.IsTourist, string(b.PaymentStatus), b.Notes, b.IsMultiRoomBooking, now, now)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	for _, roomID := range b.OccupiedRoomIDs() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO booking_rooms (booking_id, room_id) VALUES (?, ?)", b.ID, roomID); err != nil {
			return fmt.Errorf("insert booking room: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	b.Version = 1
	return nil
}

// PatchBooking applies a partial update under an optimistic version
// check, re-validating slot availability server-side. Its accept/reject
// is the authoritative outcome of a relocation.
func (db *DB) PatchBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getBookingTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != patch.ExpectedVersion {
		return nil, fmt.Errorf("booking %s at version %d, patch expects %d: %w",
			id, current.Version, patch.ExpectedVersion, repository.ErrStaleVersion)
	}

	next := applyPatch(current, patch)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if next.Active() {
		for _, roomID := range next.OccupiedRoomIDs() {
			if err := checkSlotFree(ctx, tx, roomID, id, next.CheckIn, next.CheckOut); err != nil {
				return nil, err
			}
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET check_in = ?, check_out = ?, nights = ?,
			price_per_night = ?, price_per_night_no_vat = ?, total_price = ?,
			is_tourist = ?, payment_status = ?, notes = ?, is_multi_room = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		models.Midnight(next.CheckIn), models.Midnight(next.CheckOut), next.Nights,
		next.PricePerNight, next.PricePerNightNoVat, next.TotalPrice,
		next.IsTourist, string(next.PaymentStatus), next.Notes, next.IsMultiRoomBooking,
		time.Now(), id, patch.ExpectedVersion)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrStaleVersion
	}

	if patch.Rooms != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_rooms WHERE booking_id = ?", id); err != nil {
			return nil, fmt.Errorf("clear booking rooms: %w", err)
		}
		for _, roomID := range next.OccupiedRoomIDs() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO booking_rooms (booking_id, room_id) VALUES (?, ?)", id, roomID); err != nil {
				return nil, fmt.Errorf("insert booking room: %w", err)
			}
		}
	}

	updated, err := getBookingTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// UpdatePaymentStatus moves a booking through its payment states. A
// booking is never deleted, only canceled.
func (db *DB) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid payment status %q", status)
	}
	res, err := db.ExecContext(ctx, `
		UPDATE bookings SET payment_status = ?, updated_at = ?, version = version + 1
		WHERE id = ?`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// checkSlotFree rejects an overlap with any other active booking in the
// room over the half-open stay interval.
func checkSlotFree(ctx context.Context, tx *sql.Tx, roomID, excludeBookingID string, checkIn, checkOut time.Time) error {
	var conflicting string
	err := tx.QueryRowContext(ctx, `
		SELECT b.id FROM bookings b
		JOIN booking_rooms br ON br.booking_id = b.id
		WHERE br.room_id = ? AND b.id != ? AND b.payment_status != 'canceled'
		  AND b.check_in < ? AND ? < b.check_out
		LIMIT 1`,
		roomID, excludeBookingID, models.Midnight(checkOut), models.Midnight(checkIn)).Scan(&conflicting)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	return fmt.Errorf("room %s already booked by %s: %w", roomID, conflicting, repository.ErrSlotTaken)
}

func getBookingTx(ctx context.Context, tx *sql.Tx, id string) (*models.Booking, error) {
	var (
		b      models.Booking
		status string
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, check_in, check_out, nights, guest_name, phone,
		       price_per_night, price_per_night_no_vat, total_price,
		       is_tourist, payment_status, notes, is_multi_room,
		       created_at, updated_at, version
		FROM bookings WHERE id = ?`, id).
		Scan(&b.ID, &b.CheckIn, &b.CheckOut, &b.Nights, &b.GuestName, &b.Phone,
			&b.PricePerNight, &b.PricePerNightNoVat, &b.TotalPrice,
			&b.IsTourist, &status, &b.Notes, &b.IsMultiRoomBooking,
			&b.CreatedAt, &b.UpdatedAt, &b.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	parsed, err := models.ParsePaymentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", id, err)
	}
	b.PaymentStatus = parsed

	rows, err := tx.QueryContext(ctx, "SELECT room_id FROM booking_rooms WHERE booking_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("query booking rooms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var roomID string
		if err := rows.Scan(&roomID); err != nil {
			return nil, err
		}
		b.Rooms = append(b.Rooms, models.RoomRef{ID: roomID})
	}
	return &b, rows.Err()
}

// applyPatch merges a partial update over the current row.
func applyPatch(current *models.Booking, patch models.BookingPatch) *models.Booking {
	next := current.Clone()
	if patch.CheckIn != nil {
		next.CheckIn = *patch.CheckIn
	}
	if patch.CheckOut != nil {
		next.CheckOut = *patch.CheckOut
	}
	if patch.Nights != nil {
		next.Nights = *patch.Nights
	}
	if patch.Rooms != nil {
		next.Rooms = patch.Rooms
		next.IsMultiRoomBooking = len(patch.Rooms) > 1
	}
	if patch.PricePerNight != nil {
		next.PricePerNight = *patch.PricePerNight
	}
	if patch.PricePerNightNoVat != nil {
		next.PricePerNightNoVat = *patch.PricePerNightNoVat
	}
	if patch.TotalPrice != nil {
		next.TotalPrice = *patch.TotalPrice
	}
	if patch.IsTourist != nil {
		next.IsTourist = *patch.IsTourist
	}
	if patch.PaymentStatus != nil {
		next.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	return next
}
