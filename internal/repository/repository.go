package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// Persistence collaborator errors. The engine maps these onto its own
// error taxonomy; callers never see storage detail.
var (
	// ErrNotFound means the identified row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrStaleVersion means the patch carried an outdated version; another
	// writer got there first.
	ErrStaleVersion = errors.New("repository: stale booking version")
	// ErrSlotTaken means the patched stay would land on a slot already
	// occupied on the server side.
	ErrSlotTaken = errors.New("repository: target slot already occupied")
)

// Repository is the persistence collaborator contract of the engine. The
// engine is protocol-agnostic: any store returning these shapes works.
type Repository interface {
	// FetchBookings returns active and canceled bookings overlapping
	// [from, to); the engine filters canceled ones itself.
	FetchBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error)

	// FetchRooms returns all rooms in no particular order.
	FetchRooms(ctx context.Context) ([]*models.Room, error)

	// FetchDynamicPrices returns per-slot price overrides within [from, to).
	FetchDynamicPrices(ctx context.Context, from, to time.Time) ([]models.DynamicPriceOverride, error)

	// PatchBooking applies a partial update. The server re-checks slot
	// availability and the expected version; rejection is authoritative.
	PatchBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)

	// UpsertDynamicPrice overwrites the override for one (room, date).
	UpsertDynamicPrice(ctx context.Context, roomID string, date time.Time, price float64) error
}
