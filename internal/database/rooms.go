package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// FetchRooms returns all active rooms. Ordering is left to the engine.
func (db *DB) FetchRooms(ctx context.Context) ([]*models.Room, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, number, complex, base_price, special_prices, description, is_active, created_at, updated_at
		FROM rooms WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var out []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var (
		room       models.Room
		rawSpecial string
	)
	if err := row.Scan(&room.ID, &room.Number, &room.Complex, &room.BasePrice,
		&rawSpecial, &room.Description, &room.IsActive, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan room: %w", err)
	}
	var special map[string]float64
	if rawSpecial != "" {
		if err := json.Unmarshal([]byte(rawSpecial), &special); err != nil {
			return nil, fmt.Errorf("room %s: decode special prices: %w", room.ID, err)
		}
	}
	room.SpecialPrices = models.ParseSpecialPrices(special)
	return &room, nil
}

// CreateRoom inserts a room. Admin surface only; the engine itself never
// creates rooms.
func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	special, err := json.Marshal(specialPricesMap(room.SpecialPrices))
	if err != nil {
		return fmt.Errorf("encode special prices: %w", err)
	}
	now := time.Now()
	_, err = db.ExecContext(ctx, `
		INSERT INTO rooms (id, number, complex, base_price, special_prices, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		room.ID, room.Number, room.Complex, room.BasePrice, string(special), room.Description, now, now)
	if err != nil {
		return fmt.Errorf("insert room %d: %w", room.Number, err)
	}
	room.IsActive = true
	return nil
}

func specialPricesMap(prices map[time.Weekday]float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for w, p := range prices {
		out[fmt.Sprintf("%d", int(w))] = p
	}
	return out
}
