package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/events"
	"github.com/Hezi12/rothschild-backoffice/internal/metrics"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
	"github.com/Hezi12/rothschild-backoffice/internal/pricing"
	"github.com/Hezi12/rothschild-backoffice/internal/relocation"
	"github.com/Hezi12/rothschild-backoffice/internal/repository"
	"github.com/Hezi12/rothschild-backoffice/internal/store"
)

// BookingService owns the in-memory snapshot of the property and runs
// every user-initiated operation as one read-decide-persist cycle. The
// snapshot is read-only while an operation runs and is replaced wholesale
// from a fresh fetch after every confirmed mutation; nothing is patched
// optimistically.
type BookingService struct {
	repo   repository.Repository
	calc   pricing.Calculator
	bus    *events.EventBus
	logger *zerolog.Logger
	clock  func() time.Time

	mu         sync.RWMutex
	snap       *store.Snapshot
	windowFrom time.Time
	windowTo   time.Time
}

// New wires a booking service. The bus may be nil when no subscribers
// exist (tests).
func New(repo repository.Repository, calc pricing.Calculator, bus *events.EventBus, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:   repo,
		calc:   calc,
		bus:    bus,
		logger: logger,
		clock:  time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *BookingService) WithClock(clock func() time.Time) *BookingService {
	s.clock = clock
	return s
}

// Refresh fetches rooms, bookings and dynamic prices for the window and
// replaces the snapshot. Duplicate-slot anomalies found while indexing
// are logged, counted and published, never silently resolved.
func (s *BookingService) Refresh(ctx context.Context, from, to time.Time) error {
	rooms, err := s.repo.FetchRooms(ctx)
	if err != nil {
		return &TransportError{Op: "fetch rooms", Err: err}
	}
	bookings, err := s.repo.FetchBookings(ctx, from, to)
	if err != nil {
		return &TransportError{Op: "fetch bookings", Err: err}
	}
	overrides, err := s.repo.FetchDynamicPrices(ctx, from, to)
	if err != nil {
		return &TransportError{Op: "fetch dynamic prices", Err: err}
	}

	snap := store.NewSnapshot(rooms, bookings, overrides, s.clock())
	for _, w := range snap.Index.Warnings() {
		metrics.IncIntegrityWarning()
		s.logger.Warn().
			Str("room_id", w.RoomID).
			Str("date", models.DateKey(w.Date)).
			Str("kept_booking", w.KeptBookingID).
			Str("lost_booking", w.LostBookingID).
			Msg("two bookings claim the same slot")
		s.publish(events.New(events.TopicIntegrityWarning, events.IntegrityEvent{
			RoomID:        w.RoomID,
			Date:          w.Date,
			KeptBookingID: w.KeptBookingID,
			LostBookingID: w.LostBookingID,
		}))
	}

	s.mu.Lock()
	s.snap = snap
	s.windowFrom = models.Midnight(from)
	s.windowTo = models.Midnight(to)
	s.mu.Unlock()
	metrics.IncSnapshotRebuild()
	return nil
}

// Reload re-fetches the current window.
func (s *BookingService) Reload(ctx context.Context) error {
	s.mu.RLock()
	from, to := s.windowFrom, s.windowTo
	s.mu.RUnlock()
	return s.Refresh(ctx, from, to)
}

// Snapshot returns the current immutable view. May be nil before the
// first Refresh.
func (s *BookingService) Snapshot() *store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// RelocateRequest identifies a drag from one cell onto another.
type RelocateRequest struct {
	BookingID    string    `json:"booking_id"`
	SourceRoomID string    `json:"source_room_id"`
	SourceDate   time.Time `json:"source_date"`
	TargetRoomID string    `json:"target_room_id"`
	TargetDate   time.Time `json:"target_date"`
}

// Relocate validates the drop against the live index, shifts the stay and
// persists the patch. The persistence collaborator has the final word: a
// rejection surfaces as ConflictError and forces a re-fetch, and on
// success the snapshot is likewise rebuilt from a fresh fetch rather than
// patched in place.
func (s *BookingService) Relocate(ctx context.Context, req RelocateRequest) (*models.Booking, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, &TransportError{Op: "relocate", Err: errors.New("no snapshot loaded")}
	}

	b, ok := snap.Booking(req.BookingID)
	if !ok {
		return nil, validationf("unknown booking %s", req.BookingID)
	}
	if _, ok := snap.Room(req.TargetRoomID); !ok {
		return nil, validationf("unknown target room %s", req.TargetRoomID)
	}

	origin := relocation.DragOrigin{BookingID: b.ID, RoomID: req.SourceRoomID, Date: req.SourceDate}
	target := relocation.Slot{RoomID: req.TargetRoomID, Date: req.TargetDate}

	if !relocation.CanRelocate(snap.Index, origin, target) {
		metrics.IncRelocation("rejected")
		occupant := snap.Index.Occupant(target.RoomID, target.Date)
		return nil, validationf("slot (%s, %s) is occupied by booking %s",
			target.RoomID, models.DateKey(target.Date), occupant.ID)
	}

	patch, err := relocation.Relocate(b, origin, target)
	if err != nil {
		metrics.IncRelocation("rejected")
		return nil, validationf("cannot relocate: %v", err)
	}

	updated, err := s.repo.PatchBooking(ctx, b.ID, patch)
	if err != nil {
		return nil, s.mapPatchError(ctx, "relocate", b, req, err)
	}

	metrics.IncRelocation("moved")
	s.publish(events.New(events.TopicBookingRelocated, events.RelocationEvent{
		BookingID:    b.ID,
		SourceRoomID: req.SourceRoomID,
		TargetRoomID: req.TargetRoomID,
		TargetDate:   req.TargetDate,
	}))
	s.reloadAfterMutation(ctx)
	return updated, nil
}

// mapPatchError translates persistence rejections into the engine error
// taxonomy. Conflicts revert nothing locally (nothing was changed) but
// force a re-fetch so the next attempt sees the server's state.
func (s *BookingService) mapPatchError(ctx context.Context, op string, b *models.Booking, req RelocateRequest, err error) error {
	switch {
	case errors.Is(err, repository.ErrStaleVersion), errors.Is(err, repository.ErrSlotTaken):
		metrics.IncRelocation("conflict")
		s.publish(events.New(events.TopicRelocationConflict, events.RelocationEvent{
			BookingID:    b.ID,
			SourceRoomID: req.SourceRoomID,
			TargetRoomID: req.TargetRoomID,
			TargetDate:   req.TargetDate,
			Reason:       err.Error(),
		}))
		s.reloadAfterMutation(ctx)
		return &ConflictError{Op: op, Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return ErrBookingNotFound
	default:
		return &TransportError{Op: op, Err: err}
	}
}

func (s *BookingService) reloadAfterMutation(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Error().Err(err).Msg("snapshot reload after mutation failed; state may be stale")
	}
}

func (s *BookingService) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// QuotePrice prices a prospective stay in a room: each night resolved
// through override, weekend special and base price, summed into a
// VAT-aware breakdown. Room prices are VAT inclusive; the exclusive side
// is derived.
func (s *BookingService) QuotePrice(roomID string, checkIn, checkOut time.Time, isTourist bool) (pricing.Breakdown, error) {
	snap := s.Snapshot()
	if snap == nil {
		return pricing.Breakdown{}, &TransportError{Op: "quote", Err: errors.New("no snapshot loaded")}
	}
	room, ok := snap.Room(roomID)
	if !ok {
		return pricing.Breakdown{}, validationf("unknown room %s", roomID)
	}
	nights := models.DaysBetween(checkIn, checkOut)
	if nights <= 0 {
		return pricing.Breakdown{}, validationf("stay must be at least one night")
	}

	var total float64
	for d, end := models.Midnight(checkIn), models.Midnight(checkOut); d.Before(end); d = d.AddDate(0, 0, 1) {
		total += snap.Prices.NightlyPrice(room, d)
	}
	breakdown, err := s.calc.FromTotal(total, nights, isTourist)
	if err != nil {
		return pricing.Breakdown{}, validationf("price derivation: %v", err)
	}
	return breakdown, nil
}

// PriceEdit is a direct edit of a booking's price fields. Exactly one of
// Total or PerNightNoVat drives the derivation; a bare tourist toggle
// reshuffles the VAT split under a fixed total.
type PriceEdit struct {
	Total         *float64 `json:"total,omitempty"`
	PerNightNoVat *float64 `json:"per_night_no_vat,omitempty"`
	IsTourist     *bool    `json:"is_tourist,omitempty"`
}

// UpdateBookingPrice applies a price edit through the persistence
// collaborator and rebuilds the snapshot on success.
func (s *BookingService) UpdateBookingPrice(ctx context.Context, bookingID string, edit PriceEdit) (*models.Booking, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, &TransportError{Op: "price edit", Err: errors.New("no snapshot loaded")}
	}
	b, ok := snap.Booking(bookingID)
	if !ok {
		return nil, validationf("unknown booking %s", bookingID)
	}

	nights := models.DaysBetween(b.CheckIn, b.CheckOut)
	isTourist := b.IsTourist
	if edit.IsTourist != nil {
		isTourist = *edit.IsTourist
	}

	var (
		breakdown pricing.Breakdown
		err       error
	)
	switch {
	case edit.Total != nil:
		breakdown, err = s.calc.FromTotal(*edit.Total, nights, isTourist)
	case edit.PerNightNoVat != nil:
		breakdown, err = s.calc.FromPerNight(*edit.PerNightNoVat, nights, isTourist)
	case edit.IsTourist != nil:
		// Tourist toggle alone: the total stands, only the split moves.
		breakdown = s.calc.ToggleTourist(pricing.Breakdown{
			PerNightNoVat:   b.PricePerNightNoVat,
			PerNightWithVat: b.PricePerNight,
			TotalPrice:      b.TotalPrice,
			Nights:          nights,
		}, isTourist)
	default:
		return nil, validationf("empty price edit")
	}
	if err != nil {
		return nil, validationf("price derivation: %v", err)
	}

	patch := models.BookingPatch{
		PricePerNight:      &breakdown.PerNightWithVat,
		PricePerNightNoVat: &breakdown.PerNightNoVat,
		TotalPrice:         &breakdown.TotalPrice,
		IsTourist:          &isTourist,
		ExpectedVersion:    b.Version,
	}
	updated, err := s.repo.PatchBooking(ctx, b.ID, patch)
	if err != nil {
		return nil, s.mapPatchError(ctx, "price edit", b, RelocateRequest{BookingID: b.ID}, err)
	}
	s.reloadAfterMutation(ctx)
	return updated, nil
}

// SetDynamicPrice pins the price of one (room, date) slot.
func (s *BookingService) SetDynamicPrice(ctx context.Context, roomID string, date time.Time, price float64) error {
	snap := s.Snapshot()
	if snap == nil {
		return &TransportError{Op: "set dynamic price", Err: errors.New("no snapshot loaded")}
	}
	if _, ok := snap.Room(roomID); !ok {
		return validationf("unknown room %s", roomID)
	}
	if price <= 0 {
		return validationf("price must be positive")
	}
	if err := s.repo.UpsertDynamicPrice(ctx, roomID, date, price); err != nil {
		return &TransportError{Op: "set dynamic price", Err: err}
	}
	metrics.IncPriceOverride()
	s.publish(events.New(events.TopicPriceOverrideSet, models.DynamicPriceOverride{
		RoomID: roomID, Date: models.Midnight(date), Price: price,
	}))
	s.reloadAfterMutation(ctx)
	return nil
}

// Occupancy computes the monthly occupancy of one room.
func (s *BookingService) Occupancy(roomID string, year int, month time.Month) (calendar.MonthOccupancy, error) {
	snap := s.Snapshot()
	if snap == nil {
		return calendar.MonthOccupancy{}, &TransportError{Op: "occupancy", Err: errors.New("no snapshot loaded")}
	}
	if _, ok := snap.Room(roomID); !ok {
		return calendar.MonthOccupancy{}, validationf("unknown room %s", roomID)
	}
	return calendar.MonthlyOccupancy(roomID, snap.Bookings, year, month, s.clock()), nil
}

// OccupancyAll computes the monthly occupancy of every room, in room
// number order.
func (s *BookingService) OccupancyAll(year int, month time.Month) []calendar.MonthOccupancy {
	snap := s.Snapshot()
	if snap == nil {
		return nil
	}
	out := make([]calendar.MonthOccupancy, 0, len(snap.Rooms))
	for _, room := range snap.Rooms {
		out = append(out, calendar.MonthlyOccupancy(room.ID, snap.Bookings, year, month, s.clock()))
	}
	return out
}
