package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// FetchDynamicPrices returns per-slot overrides with dates inside [from, to).
func (db *DB) FetchDynamicPrices(ctx context.Context, from, to time.Time) ([]models.DynamicPriceOverride, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT room_id, date, price FROM dynamic_prices
		WHERE date >= ? AND date < ?`,
		models.DateKey(from), models.DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("query dynamic prices: %w", err)
	}
	defer rows.Close()

	var out []models.DynamicPriceOverride
	for rows.Next() {
		var (
			o       models.DynamicPriceOverride
			dateKey string
		)
		if err := rows.Scan(&o.RoomID, &dateKey, &o.Price); err != nil {
			return nil, fmt.Errorf("scan dynamic price: %w", err)
		}
		date, err := models.ParseDateKey(dateKey)
		if err != nil {
			return nil, fmt.Errorf("dynamic price %s/%s: %w", o.RoomID, dateKey, err)
		}
		o.Date = date
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertDynamicPrice overwrites the override for one (room, date) slot.
// There is no delete path; an overwrite is the only mutation.
func (db *DB) UpsertDynamicPrice(ctx context.Context, roomID string, date time.Time, price float64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO dynamic_prices (room_id, date, price, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(room_id, date) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at`,
		roomID, models.DateKey(date), price, time.Now())
	if err != nil {
		return fmt.Errorf("upsert dynamic price: %w", err)
	}
	return nil
}
