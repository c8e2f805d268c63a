package calendar

import (
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// StayRole describes what a calendar day is within a stay: the arrival
// day, a continuation day, the last occupied night or a one-night stay.
// Derived per (booking, date), never stored.
type StayRole struct {
	IsStart     bool `json:"is_start"`
	IsMiddle    bool `json:"is_middle"`
	IsEnd       bool `json:"is_end"`
	IsSingleDay bool `json:"is_single_day"`
}

// ShowsSummary reports whether the cell carries the guest and payment
// summary. Only arrival and single-day cells do; continuation cells are
// purely visual.
func (r StayRole) ShowsSummary() bool {
	return r.IsStart || r.IsSingleDay
}

// Classify determines the role of a date within a booking. Dates outside
// [checkIn, checkOut) get the zero role.
func Classify(b *models.Booking, date time.Time) StayRole {
	day := models.Midnight(date)
	checkIn := models.Midnight(b.CheckIn)
	checkOut := models.Midnight(b.CheckOut)

	if day.Before(checkIn) || !day.Before(checkOut) {
		return StayRole{}
	}
	if models.DaysBetween(checkIn, checkOut) == 1 {
		return StayRole{IsSingleDay: day.Equal(checkIn)}
	}

	lastNight := checkOut.AddDate(0, 0, -1)
	role := StayRole{
		IsStart: day.Equal(checkIn),
		IsEnd:   day.Equal(lastNight),
	}
	role.IsMiddle = !role.IsStart && !role.IsEnd
	return role
}
