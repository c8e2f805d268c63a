package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestNightlyPriceResolutionOrder(t *testing.T) {
	room := &models.Room{
		ID:        "r1",
		Number:    101,
		BasePrice: 400,
		SpecialPrices: map[time.Weekday]float64{
			time.Friday:   550,
			time.Saturday: 600,
		},
	}

	// 2024-03-11 is a Monday, 2024-03-15 a Friday, 2024-03-16 a Saturday.
	monday := day(2024, 3, 11)
	friday := day(2024, 3, 15)
	saturday := day(2024, 3, 16)

	r := NewResolver([]models.DynamicPriceOverride{
		{RoomID: "r1", Date: friday, Price: 725},
	})

	assert.Equal(t, 400.0, r.NightlyPrice(room, monday), "weekday falls back to base price")
	assert.Equal(t, 725.0, r.NightlyPrice(room, friday), "override beats the weekend special")
	assert.Equal(t, 600.0, r.NightlyPrice(room, saturday), "weekend special beats base price")
}

func TestNightlyPriceWithoutSpecials(t *testing.T) {
	room := &models.Room{ID: "r1", BasePrice: 400}
	r := NewResolver(nil)

	friday := day(2024, 3, 15)
	assert.Equal(t, 400.0, r.NightlyPrice(room, friday), "no special defined: base price even on Friday")
}

func TestOverrideLookupNormalizesTime(t *testing.T) {
	room := &models.Room{ID: "r1", BasePrice: 400}
	r := NewResolver([]models.DynamicPriceOverride{
		{RoomID: "r1", Date: time.Date(2024, 3, 11, 14, 30, 0, 0, time.UTC), Price: 999},
	})

	// Query with a different time of day on the same calendar date.
	assert.Equal(t, 999.0, r.NightlyPrice(room, time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)))

	_, ok := r.Override("r1", day(2024, 3, 12))
	assert.False(t, ok)
}
