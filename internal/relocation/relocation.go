package relocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

var (
	// ErrTargetOccupied is returned when the target slot is held by a
	// different booking.
	ErrTargetOccupied = errors.New("relocation: target slot is occupied")
	// ErrSourceRoomMissing is returned when the dragged booking does not
	// actually occupy the claimed source room.
	ErrSourceRoomMissing = errors.New("relocation: booking does not occupy the source room")
)

// Slot is one (room, calendar date) cell.
type Slot struct {
	RoomID string    `json:"room_id"`
	Date   time.Time `json:"date"`
}

// DragOrigin identifies the cell a stay was dragged from. Any date inside
// a multi-night stay may be the drag origin, not just the check-in day.
type DragOrigin struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	Date      time.Time `json:"date"`
}

// CanRelocate decides whether the dragged booking may land on the target
// slot: the slot is free, or it is exactly the origin cell (a no-op drop
// back must not be rejected as "occupied by itself"). The check must run
// against the current index, never a stale snapshot.
func CanRelocate(ix *calendar.IntervalIndex, origin DragOrigin, target Slot) bool {
	if target.RoomID == origin.RoomID && models.SameDay(target.Date, origin.Date) {
		return true
	}
	return ix.Occupant(target.RoomID, target.Date) == nil
}

// Relocate computes the patch moving the whole stay rigidly by the day
// delta between the dragged cell and the target cell. The stay length is
// invariant and all price fields are copied verbatim: the guest's
// negotiated price survives the move, regardless of the new room's rates.
func Relocate(b *models.Booking, origin DragOrigin, target Slot) (models.BookingPatch, error) {
	dayDelta := models.DaysBetween(origin.Date, target.Date)
	newCheckIn := models.Midnight(b.CheckIn).AddDate(0, 0, dayDelta)
	newCheckOut := models.Midnight(b.CheckOut).AddDate(0, 0, dayDelta)
	nights := models.DaysBetween(b.CheckIn, b.CheckOut)

	rooms, err := replaceRoom(b, origin.RoomID, target.RoomID)
	if err != nil {
		return models.BookingPatch{}, err
	}

	perNight := b.PricePerNight
	perNightNoVat := b.PricePerNightNoVat
	total := b.TotalPrice
	return models.BookingPatch{
		CheckIn:            &newCheckIn,
		CheckOut:           &newCheckOut,
		Nights:             &nights,
		Rooms:              rooms,
		PricePerNight:      &perNight,
		PricePerNightNoVat: &perNightNoVat,
		TotalPrice:         &total,
		ExpectedVersion:    b.Version,
	}, nil
}

// replaceRoom swaps the source room reference for the target room. For a
// multi-room booking only the matching entry is substituted; the rest of
// the room set rides along untouched.
func replaceRoom(b *models.Booking, sourceRoomID, targetRoomID string) ([]models.RoomRef, error) {
	if !b.IsMultiRoomBooking {
		return []models.RoomRef{{ID: targetRoomID}}, nil
	}
	rooms := make([]models.RoomRef, len(b.Rooms))
	copy(rooms, b.Rooms)
	for i, ref := range rooms {
		if ref.ResolveID() == sourceRoomID {
			rooms[i] = models.RoomRef{ID: targetRoomID}
			return rooms, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSourceRoomMissing, sourceRoomID)
}
