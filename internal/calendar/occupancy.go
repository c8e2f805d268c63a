package calendar

import (
	"math"
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// MonthOccupancy summarizes how full a room is over one calendar month.
// PastPercent covers only the elapsed part of the current month, so a
// manager can tell occupancy achieved so far from occupancy including
// future reservations. For any other month it equals Percent.
type MonthOccupancy struct {
	RoomID           string `json:"room_id"`
	OccupiedDays     int    `json:"occupied_days"`
	Percent          int    `json:"percent"`
	PastOccupiedDays int    `json:"past_occupied_days"`
	PastPercent      int    `json:"past_percent"`
}

// MonthlyOccupancy counts the calendar days of the month on which the room
// is occupied by any non-canceled booking. A stay spanning the month
// boundary contributes only the days falling inside the month. The caller
// supplies "today" so the past split is deterministic.
func MonthlyOccupancy(roomID string, bookings []*models.Booking, year int, month time.Month, today time.Time) MonthOccupancy {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	daysInMonth := models.DaysBetween(monthStart, monthEnd)

	occupied := make(map[string]time.Time)
	for _, b := range bookings {
		if !b.Active() || !b.OccupiesRoom(roomID) {
			continue
		}
		start := models.Midnight(b.CheckIn)
		if start.Before(monthStart) {
			start = monthStart
		}
		end := models.Midnight(b.CheckOut)
		if end.After(monthEnd) {
			end = monthEnd
		}
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			occupied[d.Format(models.DateKeyFormat)] = d
		}
	}

	occ := MonthOccupancy{
		RoomID:       roomID,
		OccupiedDays: len(occupied),
		Percent:      roundPercent(len(occupied), daysInMonth),
	}

	day := models.Midnight(today)
	if day.Before(monthStart) || !day.Before(monthEnd) {
		// Not the current month: no meaningful past/future split.
		occ.PastOccupiedDays = occ.OccupiedDays
		occ.PastPercent = occ.Percent
		return occ
	}

	daysElapsed := models.DaysBetween(monthStart, day) + 1
	for _, d := range occupied {
		if !d.After(day) {
			occ.PastOccupiedDays++
		}
	}
	occ.PastPercent = roundPercent(occ.PastOccupiedDays, daysElapsed)
	return occ
}

func roundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
