package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidStay is returned when check-out does not follow check-in.
	ErrInvalidStay = errors.New("booking: check-out must be after check-in")
	// ErrNoRooms is returned for a booking without a room reference.
	ErrNoRooms = errors.New("booking: at least one room reference is required")
)

// RoomRef points at an occupied room. Source payloads carry either a bare
// room id or an embedded room object; both normalize into this variant and
// everything downstream goes through ResolveID.
type RoomRef struct {
	ID   string `json:"id"`
	Room *Room  `json:"room,omitempty"`
}

// ResolveID returns the referenced room id regardless of representation.
func (r RoomRef) ResolveID() string {
	if r.ID != "" {
		return r.ID
	}
	if r.Room != nil {
		return r.Room.ID
	}
	return ""
}

// UnmarshalJSON accepts "room-id", {"id": ...} or a full room object.
func (r *RoomRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		return nil
	}
	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return fmt.Errorf("room ref: %w", err)
	}
	r.ID = room.ID
	r.Room = &room
	return nil
}

// MarshalJSON renders the compact id form when no room object is embedded.
func (r RoomRef) MarshalJSON() ([]byte, error) {
	if r.Room != nil {
		return json.Marshal(r.Room)
	}
	return json.Marshal(r.ID)
}

// Booking is a stay occupying one or more rooms over the half-open
// interval [CheckIn, CheckOut). Canceled bookings stay on record but are
// excluded from occupancy.
type Booking struct {
	ID                 string        `json:"id"`
	Rooms              []RoomRef     `json:"rooms"`
	IsMultiRoomBooking bool          `json:"is_multi_room_booking"`
	CheckIn            time.Time     `json:"check_in"`
	CheckOut           time.Time     `json:"check_out"`
	Nights             int           `json:"nights"`
	GuestName          string        `json:"guest_name"`
	Phone              string        `json:"phone,omitempty"`
	PricePerNight      float64       `json:"price_per_night"`        // VAT inclusive
	PricePerNightNoVat float64       `json:"price_per_night_no_vat"` // VAT exclusive
	TotalPrice         float64       `json:"total_price"`
	IsTourist          bool          `json:"is_tourist"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	Notes              string        `json:"notes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Version            int64         `json:"version"`
}

// Validate checks the stay invariants: a valid interval, a consistent
// denormalized nights count and at least one room reference.
func (b *Booking) Validate() error {
	if !Midnight(b.CheckOut).After(Midnight(b.CheckIn)) {
		return ErrInvalidStay
	}
	if len(b.Rooms) == 0 {
		return ErrNoRooms
	}
	if span := DaysBetween(b.CheckIn, b.CheckOut); b.Nights != span {
		return fmt.Errorf("booking: nights %d does not match stay span %d", b.Nights, span)
	}
	return nil
}

// Active reports whether the booking counts toward occupancy.
func (b *Booking) Active() bool {
	return b.PaymentStatus != PaymentCanceled
}

// ContainsDate reports whether the stay covers the given calendar day.
// The check-out day itself is free for a new arrival.
func (b *Booking) ContainsDate(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(Midnight(b.CheckIn)) && d.Before(Midnight(b.CheckOut))
}

// OccupiedRoomIDs returns every room id the booking occupies. For
// single-room bookings only the first reference counts even if stale
// extra entries are present.
func (b *Booking) OccupiedRoomIDs() []string {
	if len(b.Rooms) == 0 {
		return nil
	}
	if !b.IsMultiRoomBooking {
		return []string{b.Rooms[0].ResolveID()}
	}
	ids := make([]string, 0, len(b.Rooms))
	for _, ref := range b.Rooms {
		if id := ref.ResolveID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// OccupiesRoom reports whether the booking occupies the given room.
func (b *Booking) OccupiesRoom(roomID string) bool {
	for _, id := range b.OccupiedRoomIDs() {
		if id == roomID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Snapshots hand out clones so a render cycle
// never observes a half-updated booking.
func (b *Booking) Clone() *Booking {
	dup := *b
	dup.Rooms = make([]RoomRef, len(b.Rooms))
	copy(dup.Rooms, b.Rooms)
	return &dup
}

// BookingPatch is a partial update emitted by the relocation executor and
// by direct edits. Nil fields are left untouched by the persistence
// collaborator. ExpectedVersion guards against concurrent writers.
type BookingPatch struct {
	CheckIn            *time.Time     `json:"check_in,omitempty"`
	CheckOut           *time.Time     `json:"check_out,omitempty"`
	Nights             *int           `json:"nights,omitempty"`
	Rooms              []RoomRef      `json:"rooms,omitempty"`
	PricePerNight      *float64       `json:"price_per_night,omitempty"`
	PricePerNightNoVat *float64       `json:"price_per_night_no_vat,omitempty"`
	TotalPrice         *float64       `json:"total_price,omitempty"`
	IsTourist          *bool          `json:"is_tourist,omitempty"`
	PaymentStatus      *PaymentStatus `json:"payment_status,omitempty"`
	Notes              *string        `json:"notes,omitempty"`
	ExpectedVersion    int64          `json:"expected_version"`
}

// DynamicPriceOverride pins the nightly price of one (room, date) slot.
// Unique per slot; an upsert overwrites in place.
type DynamicPriceOverride struct {
	RoomID string    `json:"room_id"`
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
}
