package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Hezi12/rothschild-backoffice/internal/calendar"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
	"github.com/Hezi12/rothschild-backoffice/internal/pricing"
	"github.com/Hezi12/rothschild-backoffice/internal/service"
)

// BookingOps is the engine surface the admin API exposes.
type BookingOps interface {
	CalendarGrid(from, to time.Time) ([]service.CalendarRow, error)
	Relocate(ctx context.Context, req service.RelocateRequest) (*models.Booking, error)
	QuotePrice(roomID string, checkIn, checkOut time.Time, isTourist bool) (pricing.Breakdown, error)
	UpdateBookingPrice(ctx context.Context, bookingID string, edit service.PriceEdit) (*models.Booking, error)
	SetDynamicPrice(ctx context.Context, roomID string, date time.Time, price float64) error
	Occupancy(roomID string, year int, month time.Month) (calendar.MonthOccupancy, error)
	OccupancyAll(year int, month time.Month) []calendar.MonthOccupancy
}

// ReportGenerator renders the monthly workbook download.
type ReportGenerator interface {
	Monthly(ctx context.Context, year int, month time.Month) ([]byte, error)
}

// HTTPServer serves the back-office admin API.
type HTTPServer struct {
	ops          BookingOps
	reports      ReportGenerator
	apiKey       string
	maxRangeDays int
	logger       *zerolog.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	rps       rate.Limit
	burst     int
}

// Options configures the server.
type Options struct {
	APIKey            string
	MaxRangeDays      int
	RequestsPerSecond float64
	Burst             int
}

// NewHTTPServer wires the admin API handlers.
func NewHTTPServer(ops BookingOps, reports ReportGenerator, opts Options, logger *zerolog.Logger) *HTTPServer {
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 90
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	return &HTTPServer{
		ops:          ops,
		reports:      reports,
		apiKey:       opts.APIKey,
		maxRangeDays: opts.MaxRangeDays,
		logger:       logger,
		limiters:     make(map[string]*rate.Limiter),
		rps:          rate.Limit(opts.RequestsPerSecond),
		burst:        opts.Burst,
	}
}

// Handler builds the route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/calendar", s.handleCalendar)
	mux.HandleFunc("/api/relocations", s.handleRelocate)
	mux.HandleFunc("/api/prices/quote", s.handleQuote)
	mux.HandleFunc("/api/prices/dynamic", s.handleDynamicPrice)
	mux.HandleFunc("/api/bookings/price", s.handleBookingPrice)
	mux.HandleFunc("/api/occupancy", s.handleOccupancy)
	mux.HandleFunc("/api/reports/occupancy", s.handleOccupancyReport)
	return s.withAuth(s.withRateLimit(mux))
}

// Serve runs the API server until ctx is canceled.
func (s *HTTPServer) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.clientLimiter(r).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) clientLimiter(r *http.Request) *rate.Limiter {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	lim, ok := s.limiters[host]
	if !ok {
		lim = rate.NewLimiter(s.rps, s.burst)
		s.limiters[host] = lim
	}
	return lim
}

// writeServiceError maps the engine error taxonomy onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBookingNotFound), errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case service.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("admin API internal error")
		writeError(w, http.StatusBadGateway, "upstream failure; retry")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

var (
	errRequiredRange  = errors.New("start_date and end_date are required")
	errEndBeforeStart = errors.New("end_date must be after start_date")
)

func errRangeTooWide(maxDays int) error {
	return fmt.Errorf("date range exceeds maximum of %d days", maxDays)
}

func parseDate(s string) (time.Time, error) {
	d, err := models.ParseDateKey(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	return d, nil
}
