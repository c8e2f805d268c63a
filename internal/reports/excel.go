package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
	"github.com/Hezi12/rothschild-backoffice/internal/store"
)

// DataSource supplies the snapshot and occupancy figures for a report.
type DataSource interface {
	Snapshot() *store.Snapshot
	OccupancyAll(year int, month time.Month) []calendar.MonthOccupancy
}

// Generator renders the monthly back-office workbook: an occupancy sheet
// per room and a bookings sheet for the month.
type Generator struct {
	source DataSource
}

// NewGenerator builds a report generator over the engine state.
func NewGenerator(source DataSource) *Generator {
	return &Generator{source: source}
}

// Monthly renders the workbook for one month and returns the xlsx bytes.
func (g *Generator) Monthly(ctx context.Context, year int, month time.Month) ([]byte, error) {
	snap := g.source.Snapshot()
	if snap == nil {
		return nil, errors.New("reports: no snapshot loaded")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := g.writeOccupancySheet(f, snap, year, month); err != nil {
		return nil, err
	}
	if err := g.writeBookingsSheet(f, snap, year, month); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	_ = ctx
	return buf.Bytes(), nil
}

func (g *Generator) writeOccupancySheet(f *excelize.File, snap *store.Snapshot, year int, month time.Month) error {
	const sheet = "Occupancy"
	f.SetSheetName("Sheet1", sheet)

	header := []any{"Room", "Occupied Days", "Occupancy %", "Past Occupancy %"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("occupancy header: %w", err)
	}
	if err := boldRow(f, sheet, 1, len(header)); err != nil {
		return err
	}

	byRoom := make(map[string]calendar.MonthOccupancy)
	for _, occ := range g.source.OccupancyAll(year, month) {
		byRoom[occ.RoomID] = occ
	}

	row := 2
	for _, room := range snap.Rooms {
		occ := byRoom[room.ID]
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{room.Number, occ.OccupiedDays, occ.Percent, occ.PastPercent}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("occupancy row %d: %w", row, err)
		}
		row++
	}
	return nil
}

func (g *Generator) writeBookingsSheet(f *excelize.File, snap *store.Snapshot, year int, month time.Month) error {
	const sheet = "Bookings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := []any{"ID", "Guest", "Rooms", "Check-In", "Check-Out", "Nights", "Total", "Tourist", "Status"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("bookings header: %w", err)
	}
	if err := boldRow(f, sheet, 1, len(header)); err != nil {
		return err
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	row := 2
	for _, b := range snap.Bookings {
		if !b.CheckIn.Before(monthEnd) || !b.CheckOut.After(monthStart) {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			b.ID,
			b.GuestName,
			roomNumbers(snap, b),
			models.DateKey(b.CheckIn),
			models.DateKey(b.CheckOut),
			b.Nights,
			b.TotalPrice,
			b.IsTourist,
			string(b.PaymentStatus),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("bookings row %d: %w", row, err)
		}
		row++
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, start, end, style)
}

func roomNumbers(snap *store.Snapshot, b *models.Booking) string {
	var parts []string
	for _, id := range b.OccupiedRoomIDs() {
		if room, ok := snap.Room(id); ok {
			parts = append(parts, fmt.Sprintf("%d", room.Number))
		} else {
			parts = append(parts, id)
		}
	}
	return strings.Join(parts, ", ")
}
