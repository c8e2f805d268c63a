package relocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func stay(id, roomID string, checkIn, checkOut time.Time) *models.Booking {
	return &models.Booking{
		ID:                 id,
		Rooms:              []models.RoomRef{{ID: roomID}},
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Nights:             models.DaysBetween(checkIn, checkOut),
		PricePerNight:      117,
		PricePerNightNoVat: 100,
		TotalPrice:         117 * float64(models.DaysBetween(checkIn, checkOut)),
		PaymentStatus:      models.PaymentPending,
		Version:            3,
	}
}

func TestCanRelocate(t *testing.T) {
	occupying := stay("a", "101", day(2024, 3, 10), day(2024, 3, 12))
	ix := calendar.BuildIndex([]*models.Booking{occupying})

	origin := DragOrigin{BookingID: "b", RoomID: "102", Date: day(2024, 3, 11)}

	assert.False(t, CanRelocate(ix, origin, Slot{RoomID: "101", Date: day(2024, 3, 11)}),
		"target held by another booking")
	assert.True(t, CanRelocate(ix, origin, Slot{RoomID: "101", Date: day(2024, 3, 12)}),
		"check-out day is free")
	assert.True(t, CanRelocate(ix, origin, Slot{RoomID: "103", Date: day(2024, 3, 11)}),
		"empty room is free")
}

func TestCanRelocateNoOpDropOnOrigin(t *testing.T) {
	b := stay("b", "101", day(2024, 3, 10), day(2024, 3, 12))
	ix := calendar.BuildIndex([]*models.Booking{b})

	origin := DragOrigin{BookingID: "b", RoomID: "101", Date: day(2024, 3, 11)}
	// Dropping back onto the origin cell must not read as "occupied by itself".
	assert.True(t, CanRelocate(ix, origin, Slot{RoomID: "101", Date: day(2024, 3, 11)}))
}

func TestRelocateShiftsStayRigidly(t *testing.T) {
	// 2 nights in room 101; dragged from the middle cell two days forward
	// into room 102.
	b := stay("b", "101", day(2024, 3, 10), day(2024, 3, 12))

	patch, err := Relocate(b,
		DragOrigin{BookingID: "b", RoomID: "101", Date: day(2024, 3, 11)},
		Slot{RoomID: "102", Date: day(2024, 3, 13)})
	assert.NoError(t, err)

	assert.Equal(t, day(2024, 3, 12), *patch.CheckIn)
	assert.Equal(t, day(2024, 3, 14), *patch.CheckOut)
	assert.Equal(t, 2, *patch.Nights)
	assert.Equal(t, []models.RoomRef{{ID: "102"}}, patch.Rooms)
	assert.Equal(t, int64(3), patch.ExpectedVersion)

	// The negotiated price survives the move untouched.
	assert.Equal(t, 117.0, *patch.PricePerNight)
	assert.Equal(t, 100.0, *patch.PricePerNightNoVat)
	assert.Equal(t, 234.0, *patch.TotalPrice)
}

func TestRelocateBackwardsInTime(t *testing.T) {
	b := stay("b", "101", day(2024, 3, 10), day(2024, 3, 13))

	patch, err := Relocate(b,
		DragOrigin{BookingID: "b", RoomID: "101", Date: day(2024, 3, 10)},
		Slot{RoomID: "101", Date: day(2024, 3, 5)})
	assert.NoError(t, err)

	assert.Equal(t, day(2024, 3, 5), *patch.CheckIn)
	assert.Equal(t, day(2024, 3, 8), *patch.CheckOut)
	assert.Equal(t, 3, *patch.Nights)
}

func TestRelocateRoomOnlyKeepsDates(t *testing.T) {
	b := stay("b", "101", day(2024, 3, 10), day(2024, 3, 12))

	patch, err := Relocate(b,
		DragOrigin{BookingID: "b", RoomID: "101", Date: day(2024, 3, 10)},
		Slot{RoomID: "105", Date: day(2024, 3, 10)})
	assert.NoError(t, err)

	assert.Equal(t, day(2024, 3, 10), *patch.CheckIn)
	assert.Equal(t, day(2024, 3, 12), *patch.CheckOut)
	assert.Equal(t, []models.RoomRef{{ID: "105"}}, patch.Rooms)
}

func TestRelocateMultiRoomSubstitutesOnlyDraggedRoom(t *testing.T) {
	b := stay("b", "101", day(2024, 3, 10), day(2024, 3, 12))
	b.IsMultiRoomBooking = true
	b.Rooms = []models.RoomRef{{ID: "101"}, {ID: "104"}, {ID: "107"}}

	patch, err := Relocate(b,
		DragOrigin{BookingID: "b", RoomID: "104", Date: day(2024, 3, 10)},
		Slot{RoomID: "102", Date: day(2024, 3, 10)})
	assert.NoError(t, err)

	assert.Equal(t, []models.RoomRef{{ID: "101"}, {ID: "102"}, {ID: "107"}}, patch.Rooms)
}

func TestRelocateMultiRoomUnknownSourceRoom(t *testing.T) {
	b := stay("b", "101", day(2024, 3, 10), day(2024, 3, 12))
	b.IsMultiRoomBooking = true
	b.Rooms = []models.RoomRef{{ID: "101"}, {ID: "104"}}

	_, err := Relocate(b,
		DragOrigin{BookingID: "b", RoomID: "999", Date: day(2024, 3, 10)},
		Slot{RoomID: "102", Date: day(2024, 3, 10)})
	assert.ErrorIs(t, err, ErrSourceRoomMissing)
}
