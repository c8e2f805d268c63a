package calendar

import (
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// IntegrityWarning records two bookings claiming the same slot. The index
// keeps the first booking by input order but the anomaly is surfaced, not
// swallowed: a silently resolved double booking would hide real damage.
type IntegrityWarning struct {
	RoomID        string    `json:"room_id"`
	Date          time.Time `json:"date"`
	KeptBookingID string    `json:"kept_booking_id"`
	LostBookingID string    `json:"lost_booking_id"`
}

// IntervalIndex maps every occupied (room, day) slot to its booking.
// Built once per fetched batch, queried per calendar cell. Construction is
// O(bookings x stay length); lookups are O(1).
type IntervalIndex struct {
	slots    map[string]*models.Booking
	warnings []IntegrityWarning
}

// BuildIndex expands active bookings into per-day slot entries. Canceled
// bookings are skipped; multi-room bookings claim a slot per room per day.
func BuildIndex(bookings []*models.Booking) *IntervalIndex {
	ix := &IntervalIndex{slots: make(map[string]*models.Booking)}
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		start := models.Midnight(b.CheckIn)
		end := models.Midnight(b.CheckOut)
		for _, roomID := range b.OccupiedRoomIDs() {
			for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
				key := slotKey(roomID, d)
				if kept, taken := ix.slots[key]; taken {
					ix.warnings = append(ix.warnings, IntegrityWarning{
						RoomID:        roomID,
						Date:          d,
						KeptBookingID: kept.ID,
						LostBookingID: b.ID,
					})
					continue
				}
				ix.slots[key] = b
			}
		}
	}
	return ix
}

// Occupant returns the booking holding the slot, or nil when it is free.
// The check-out day itself is free for a new arrival.
func (ix *IntervalIndex) Occupant(roomID string, date time.Time) *models.Booking {
	return ix.slots[slotKey(roomID, models.Midnight(date))]
}

// Warnings returns the duplicate-slot anomalies found during construction.
func (ix *IntervalIndex) Warnings() []IntegrityWarning {
	return ix.warnings
}

func slotKey(roomID string, day time.Time) string {
	return roomID + "|" + day.Format(models.DateKeyFormat)
}
