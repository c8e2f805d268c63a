package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func stay(id, roomID string, checkIn, checkOut time.Time) *models.Booking {
	return &models.Booking{
		ID:            id,
		Rooms:         []models.RoomRef{{ID: roomID}},
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Nights:        models.DaysBetween(checkIn, checkOut),
		PaymentStatus: models.PaymentPending,
	}
}

func TestOccupantHalfOpenInterval(t *testing.T) {
	b := stay("b1", "r1", day(2024, 3, 10), day(2024, 3, 13))
	ix := BuildIndex([]*models.Booking{b})

	assert.Nil(t, ix.Occupant("r1", day(2024, 3, 9)))
	for d := day(2024, 3, 10); d.Before(day(2024, 3, 13)); d = d.AddDate(0, 0, 1) {
		assert.Same(t, b, ix.Occupant("r1", d), "occupied on %s", models.DateKey(d))
	}
	// Check-out day is free for a new arrival.
	assert.Nil(t, ix.Occupant("r1", day(2024, 3, 13)))
	assert.Nil(t, ix.Occupant("r2", day(2024, 3, 11)))
}

func TestBackToBackStaysShareTurnoverDay(t *testing.T) {
	leaving := stay("b1", "r1", day(2024, 3, 10), day(2024, 3, 12))
	arriving := stay("b2", "r1", day(2024, 3, 12), day(2024, 3, 14))
	ix := BuildIndex([]*models.Booking{leaving, arriving})

	assert.Same(t, leaving, ix.Occupant("r1", day(2024, 3, 11)))
	assert.Same(t, arriving, ix.Occupant("r1", day(2024, 3, 12)))
	assert.Empty(t, ix.Warnings())
}

func TestCanceledBookingsAreInvisible(t *testing.T) {
	b := stay("b1", "r1", day(2024, 3, 10), day(2024, 3, 12))
	b.PaymentStatus = models.PaymentCanceled
	ix := BuildIndex([]*models.Booking{b})

	assert.Nil(t, ix.Occupant("r1", day(2024, 3, 10)))
}

func TestMultiRoomBookingOccupiesEveryRoom(t *testing.T) {
	b := stay("b1", "r1", day(2024, 3, 10), day(2024, 3, 12))
	b.IsMultiRoomBooking = true
	b.Rooms = []models.RoomRef{{ID: "r1"}, {Room: &models.Room{ID: "r2"}}}
	ix := BuildIndex([]*models.Booking{b})

	assert.Same(t, b, ix.Occupant("r1", day(2024, 3, 10)))
	assert.Same(t, b, ix.Occupant("r2", day(2024, 3, 11)))
}

func TestDuplicateSlotKeepsFirstAndWarns(t *testing.T) {
	first := stay("b1", "r1", day(2024, 3, 10), day(2024, 3, 12))
	second := stay("b2", "r1", day(2024, 3, 11), day(2024, 3, 13))
	ix := BuildIndex([]*models.Booking{first, second})

	// First by input order wins on the contested day.
	assert.Same(t, first, ix.Occupant("r1", day(2024, 3, 11)))
	// The uncontested tail of the second stay is still indexed.
	assert.Same(t, second, ix.Occupant("r1", day(2024, 3, 12)))

	warnings := ix.Warnings()
	assert.Len(t, warnings, 1)
	assert.Equal(t, "r1", warnings[0].RoomID)
	assert.Equal(t, day(2024, 3, 11), warnings[0].Date)
	assert.Equal(t, "b1", warnings[0].KeptBookingID)
	assert.Equal(t, "b2", warnings[0].LostBookingID)
}
