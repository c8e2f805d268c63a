package api

import (
	"encoding/json"
	"net/http"

	"github.com/Hezi12/rothschild-backoffice/internal/metrics"
	"github.com/Hezi12/rothschild-backoffice/internal/service"
)

// QuoteRequest is the request body for POST /api/prices/quote.
type QuoteRequest struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`  // Format: YYYY-MM-DD
	CheckOut  string `json:"check_out"` // Format: YYYY-MM-DD
	IsTourist bool   `json:"is_tourist"`
}

// handleQuote prices a prospective stay.
// POST /api/prices/quote
func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("price_quote")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, err := s.ops.QuotePrice(req.RoomID, checkIn, checkOut, req.IsTourist)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// DynamicPriceRequest is the request body for PUT /api/prices/dynamic.
type DynamicPriceRequest struct {
	RoomID string  `json:"room_id"`
	Date   string  `json:"date"` // Format: YYYY-MM-DD
	Price  float64 `json:"price"`
}

// handleDynamicPrice pins the price of one (room, date) slot.
// PUT /api/prices/dynamic
func (s *HTTPServer) handleDynamicPrice(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("dynamic_price")
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use PUT")
		return
	}

	var req DynamicPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ops.SetDynamicPrice(r.Context(), req.RoomID, date, req.Price); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// BookingPriceRequest is the request body for POST /api/bookings/price: a
// direct edit of a booking's price fields. Exactly one of total or
// per_night_no_vat drives the derivation; a bare tourist toggle keeps the
// total fixed and moves only the VAT split.
type BookingPriceRequest struct {
	BookingID     string   `json:"booking_id"`
	Total         *float64 `json:"total,omitempty"`
	PerNightNoVat *float64 `json:"per_night_no_vat,omitempty"`
	IsTourist     *bool    `json:"is_tourist,omitempty"`
}

// handleBookingPrice applies a direct price edit.
// POST /api/bookings/price
func (s *HTTPServer) handleBookingPrice(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_price")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req BookingPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}

	updated, err := s.ops.UpdateBookingPrice(r.Context(), req.BookingID, service.PriceEdit{
		Total:         req.Total,
		PerNightNoVat: req.PerNightNoVat,
		IsTourist:     req.IsTourist,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "booking": updated})
}
