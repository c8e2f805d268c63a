package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Room is a bookable unit. Rooms are loaded once per session and mutated
// only through the admin surface; the engine treats them as read-only.
type Room struct {
	ID            string                       `json:"id"`
	Number        int                          `json:"number"`
	Complex       string                       `json:"complex,omitempty"`
	BasePrice     float64                      `json:"base_price"`
	SpecialPrices map[time.Weekday]float64     `json:"-"`
	Description   string                       `json:"description,omitempty"`
	IsActive      bool                         `json:"is_active"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// SpecialPriceFor returns the per-weekday special price, if one is defined.
func (r *Room) SpecialPriceFor(w time.Weekday) (float64, bool) {
	if r.SpecialPrices == nil {
		return 0, false
	}
	p, ok := r.SpecialPrices[w]
	return p, ok
}

// ParseSpecialPrices normalizes a loosely keyed weekday price mapping.
// Source data keys weekdays either by English name ("friday") or by
// numeric index ("5", Sunday=0), so both are accepted.
func ParseSpecialPrices(raw map[string]float64) map[time.Weekday]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[time.Weekday]float64, len(raw))
	for key, price := range raw {
		if price <= 0 {
			continue
		}
		if w, ok := parseWeekday(key); ok {
			out[w] = price
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseWeekday(key string) (time.Weekday, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), true
	}
	return 0, false
}

// SortRoomsByNumber orders rooms for display. The fetch collaborator makes
// no ordering promise, so the core sorts on ingestion.
func SortRoomsByNumber(rooms []*Room) {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
}
