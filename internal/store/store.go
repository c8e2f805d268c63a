package store

import (
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
	"github.com/Hezi12/rothschild-backoffice/internal/pricing"
)

// Snapshot is one immutable view of the property: rooms, active and
// canceled bookings, dynamic prices and the derived interval index. A
// snapshot is read-only for its whole lifetime; after every confirmed
// mutation the owner replaces it wholesale from a fresh fetch instead of
// patching it in place.
type Snapshot struct {
	Rooms     []*models.Room
	Bookings  []*models.Booking
	Overrides []models.DynamicPriceOverride
	Index     *calendar.IntervalIndex
	Prices    *pricing.Resolver
	FetchedAt time.Time

	roomsByID map[string]*models.Room
}

// NewSnapshot builds the derived structures for a fetched batch. Rooms are
// sorted by room number here; the fetch collaborator makes no ordering
// promise.
func NewSnapshot(rooms []*models.Room, bookings []*models.Booking, overrides []models.DynamicPriceOverride, fetchedAt time.Time) *Snapshot {
	models.SortRoomsByNumber(rooms)
	byID := make(map[string]*models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	return &Snapshot{
		Rooms:     rooms,
		Bookings:  bookings,
		Overrides: overrides,
		Index:     calendar.BuildIndex(bookings),
		Prices:    pricing.NewResolver(overrides),
		FetchedAt: fetchedAt,
		roomsByID: byID,
	}
}

// Room looks a room up by id.
func (s *Snapshot) Room(id string) (*models.Room, bool) {
	r, ok := s.roomsByID[id]
	return r, ok
}

// Booking looks a booking up by id.
func (s *Snapshot) Booking(id string) (*models.Booking, bool) {
	for _, b := range s.Bookings {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// ActiveBookings returns the non-canceled bookings.
func (s *Snapshot) ActiveBookings() []*models.Booking {
	out := make([]*models.Booking, 0, len(s.Bookings))
	for _, b := range s.Bookings {
		if b.Active() {
			out = append(out, b)
		}
	}
	return out
}
