package service

import (
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// CalendarCell is one (room, date) slot prepared for rendering. Guest and
// payment details appear only on cells whose stay role shows the summary;
// continuation cells carry just the booking id for drag handling.
type CalendarCell struct {
	Date          string            `json:"date"`
	Price         float64           `json:"price"`
	BookingID     string            `json:"booking_id,omitempty"`
	GuestName     string            `json:"guest_name,omitempty"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	Role          calendar.StayRole `json:"role"`
}

// CalendarRow is one room's cells across the requested range.
type CalendarRow struct {
	RoomID     string         `json:"room_id"`
	RoomNumber int            `json:"room_number"`
	Cells      []CalendarCell `json:"cells"`
}

// CalendarGrid renders the rooms-by-days grid for [from, to). Rows come
// out in room number order; each cell resolves its occupant through the
// interval index and its price through the resolver chain.
func (s *BookingService) CalendarGrid(from, to time.Time) ([]CalendarRow, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, validationf("no snapshot loaded")
	}
	start := models.Midnight(from)
	end := models.Midnight(to)
	if !end.After(start) {
		return nil, validationf("end date must follow start date")
	}

	rows := make([]CalendarRow, 0, len(snap.Rooms))
	for _, room := range snap.Rooms {
		row := CalendarRow{RoomID: room.ID, RoomNumber: room.Number}
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			cell := CalendarCell{
				Date:  models.DateKey(d),
				Price: snap.Prices.NightlyPrice(room, d),
			}
			if b := snap.Index.Occupant(room.ID, d); b != nil {
				cell.BookingID = b.ID
				cell.Role = calendar.Classify(b, d)
				if cell.Role.ShowsSummary() {
					cell.GuestName = b.GuestName
					cell.PaymentStatus = string(b.PaymentStatus)
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
