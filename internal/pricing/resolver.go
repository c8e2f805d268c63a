package pricing

import (
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// Resolver answers the nightly price of a (room, date) slot. Resolution
// order: exact dynamic override, then the room's weekend special price,
// then the room's base price.
type Resolver struct {
	overrides map[string]float64 // roomID + "|" + dateKey
}

// NewResolver indexes the dynamic overrides for O(1) slot lookups.
func NewResolver(overrides []models.DynamicPriceOverride) *Resolver {
	idx := make(map[string]float64, len(overrides))
	for _, o := range overrides {
		idx[overrideKey(o.RoomID, o.Date)] = o.Price
	}
	return &Resolver{overrides: idx}
}

// NightlyPrice resolves the price of one night in the given room.
func (r *Resolver) NightlyPrice(room *models.Room, date time.Time) float64 {
	if p, ok := r.Override(room.ID, date); ok {
		return p
	}
	switch w := models.Midnight(date).Weekday(); w {
	case time.Friday, time.Saturday:
		if p, ok := room.SpecialPriceFor(w); ok {
			return p
		}
	}
	return room.BasePrice
}

// Override returns the dynamic override for the slot, if set.
func (r *Resolver) Override(roomID string, date time.Time) (float64, bool) {
	p, ok := r.overrides[overrideKey(roomID, date)]
	return p, ok
}

func overrideKey(roomID string, date time.Time) string {
	return roomID + "|" + models.DateKey(date)
}
