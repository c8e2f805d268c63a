package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
	"github.com/Hezi12/rothschild-backoffice/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func seedRoom(t *testing.T, db *DB, number int) *models.Room {
	t.Helper()
	room := &models.Room{
		Number:    number,
		BasePrice: 400,
		SpecialPrices: map[time.Weekday]float64{
			time.Friday: 550,
		},
	}
	require.NoError(t, db.CreateRoom(context.Background(), room))
	return room
}

func seedBooking(t *testing.T, db *DB, roomID string, checkIn, checkOut time.Time) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Rooms:         []models.RoomRef{{ID: roomID}},
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Nights:        models.DaysBetween(checkIn, checkOut),
		GuestName:     "Dana Levi",
		PricePerNight: 117,
		TotalPrice:    117 * float64(models.DaysBetween(checkIn, checkOut)),
	}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestCreateAndFetchRooms(t *testing.T) {
	db := newTestDB(t)
	seedRoom(t, db, 101)
	seedRoom(t, db, 102)

	rooms, err := db.FetchRooms(context.Background())
	assert.NoError(t, err)
	assert.Len(t, rooms, 2)

	var numbers []int
	for _, r := range rooms {
		numbers = append(numbers, r.Number)
	}
	assert.ElementsMatch(t, []int{101, 102}, numbers)
	assert.Equal(t, 550.0, rooms[0].SpecialPrices[time.Friday], "special prices survive the round trip")
}

func TestCreateBookingAndFetchWindow(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, 101)
	b := seedBooking(t, db, room.ID, day(2024, 3, 10), day(2024, 3, 12))

	got, err := db.FetchBookings(context.Background(), day(2024, 3, 1), day(2024, 4, 1))
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, int64(1), got[0].Version)
	require.Len(t, got[0].Rooms, 1)
	assert.Equal(t, room.ID, got[0].Rooms[0].ID)
	assert.Equal(t, models.PaymentPending, got[0].PaymentStatus)

	// A window that ends before the stay begins sees nothing.
	got, err = db.FetchBookings(context.Background(), day(2024, 2, 1), day(2024, 3, 10))
	assert.NoError(t, err)
	assert.Empty(t, got)

	// A window that clips the stay still returns it.
	got, err = db.FetchBookings(context.Background(), day(2024, 3, 11), day(2024, 3, 20))
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCreateBookingRejectsDoubleBooking(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, 101)
	seedBooking(t, db, room.ID, day(2024, 3, 10), day(2024, 3, 12))

	overlapping := &models.Booking{
		Rooms:    []models.RoomRef{{ID: room.ID}},
		CheckIn:  day(2024, 3, 11),
		CheckOut: day(2024, 3, 13),
		Nights:   2,
	}
	err := db.CreateBooking(context.Background(), overlapping)
	assert.ErrorIs(t, err, repository.ErrSlotTaken)

	// Back to back is fine: check-out day is free for a new arrival.
	adjacent := &models.Booking{
		Rooms:    []models.RoomRef{{ID: room.ID}},
		CheckIn:  day(2024, 3, 12),
		CheckOut: day(2024, 3, 14),
		Nights:   2,
	}
	assert.NoError(t, db.CreateBooking(context.Background(), adjacent))
}

func TestPatchBookingMovesStay(t *testing.T) {
	db := newTestDB(t)
	src := seedRoom(t, db, 101)
	dst := seedRoom(t, db, 102)
	b := seedBooking(t, db, src.ID, day(2024, 3, 10), day(2024, 3, 12))

	checkIn := day(2024, 3, 12)
	checkOut := day(2024, 3, 14)
	nights := 2
	updated, err := db.PatchBooking(context.Background(), b.ID, models.BookingPatch{
		CheckIn:         &checkIn,
		CheckOut:        &checkOut,
		Nights:          &nights,
		Rooms:           []models.RoomRef{{ID: dst.ID}},
		ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.True(t, updated.CheckIn.Equal(checkIn))
	require.Len(t, updated.Rooms, 1)
	assert.Equal(t, dst.ID, updated.Rooms[0].ID)

	// The old room is free again.
	freed := &models.Booking{
		Rooms:    []models.RoomRef{{ID: src.ID}},
		CheckIn:  day(2024, 3, 10),
		CheckOut: day(2024, 3, 12),
		Nights:   2,
	}
	assert.NoError(t, db.CreateBooking(context.Background(), freed))
}

func TestPatchBookingStaleVersion(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, 101)
	b := seedBooking(t, db, room.ID, day(2024, 3, 10), day(2024, 3, 12))

	notes := "late arrival"
	_, err := db.PatchBooking(context.Background(), b.ID, models.BookingPatch{
		Notes:           &notes,
		ExpectedVersion: 7,
	})
	assert.ErrorIs(t, err, repository.ErrStaleVersion)
}

func TestPatchBookingSlotConflict(t *testing.T) {
	db := newTestDB(t)
	src := seedRoom(t, db, 101)
	dst := seedRoom(t, db, 102)
	b := seedBooking(t, db, src.ID, day(2024, 3, 10), day(2024, 3, 12))
	seedBooking(t, db, dst.ID, day(2024, 3, 10), day(2024, 3, 12))

	_, err := db.PatchBooking(context.Background(), b.ID, models.BookingPatch{
		Rooms:           []models.RoomRef{{ID: dst.ID}},
		ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, repository.ErrSlotTaken)

	// The failed patch left the booking untouched.
	got, err := db.FetchBookings(context.Background(), day(2024, 3, 1), day(2024, 4, 1))
	require.NoError(t, err)
	for _, cur := range got {
		if cur.ID == b.ID {
			assert.Equal(t, int64(1), cur.Version)
			assert.Equal(t, src.ID, cur.Rooms[0].ID)
		}
	}
}

func TestPatchBookingUnknownID(t *testing.T) {
	db := newTestDB(t)
	notes := "x"
	_, err := db.PatchBooking(context.Background(), "ghost", models.BookingPatch{
		Notes:           &notes,
		ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCanceledBookingFreesSlot(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, 101)
	b := seedBooking(t, db, room.ID, day(2024, 3, 10), day(2024, 3, 12))

	require.NoError(t, db.UpdatePaymentStatus(context.Background(), b.ID, models.PaymentCanceled))

	replacement := &models.Booking{
		Rooms:    []models.RoomRef{{ID: room.ID}},
		CheckIn:  day(2024, 3, 10),
		CheckOut: day(2024, 3, 12),
		Nights:   2,
	}
	assert.NoError(t, db.CreateBooking(context.Background(), replacement))

	assert.ErrorIs(t, db.UpdatePaymentStatus(context.Background(), "ghost", models.PaymentPaid),
		repository.ErrNotFound)
}

func TestDynamicPriceUpsertAndWindow(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db, 101)
	ctx := context.Background()

	require.NoError(t, db.UpsertDynamicPrice(ctx, room.ID, day(2024, 3, 15), 600))
	require.NoError(t, db.UpsertDynamicPrice(ctx, room.ID, day(2024, 4, 2), 700))

	got, err := db.FetchDynamicPrices(ctx, day(2024, 3, 1), day(2024, 4, 1))
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 600.0, got[0].Price)
	assert.True(t, got[0].Date.Equal(day(2024, 3, 15)))

	// Upsert overwrites in place rather than accumulating rows.
	require.NoError(t, db.UpsertDynamicPrice(ctx, room.ID, day(2024, 3, 15), 650))
	got, err = db.FetchDynamicPrices(ctx, day(2024, 3, 1), day(2024, 4, 1))
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 650.0, got[0].Price)
}

func TestMultiRoomBookingLinksEveryRoom(t *testing.T) {
	db := newTestDB(t)
	r1 := seedRoom(t, db, 101)
	r2 := seedRoom(t, db, 102)

	b := &models.Booking{
		Rooms:    []models.RoomRef{{ID: r1.ID}, {ID: r2.ID}},
		CheckIn:  day(2024, 3, 10),
		CheckOut: day(2024, 3, 12),
		Nights:   2,
	}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	assert.True(t, b.IsMultiRoomBooking)

	got, err := db.FetchBookings(context.Background(), day(2024, 3, 1), day(2024, 4, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Rooms, 2)
}
