package api

import (
	"encoding/json"
	"net/http"

	"github.com/Hezi12/rothschild-backoffice/internal/metrics"
	"github.com/Hezi12/rothschild-backoffice/internal/service"
)

// RelocateRequest is the request body for POST /api/relocations: a stay
// dragged from one cell onto another.
type RelocateRequest struct {
	BookingID    string `json:"booking_id"`
	SourceRoomID string `json:"source_room_id"`
	SourceDate   string `json:"source_date"` // Format: YYYY-MM-DD
	TargetRoomID string `json:"target_room_id"`
	TargetDate   string `json:"target_date"` // Format: YYYY-MM-DD
}

// handleRelocate validates and executes a drag-relocation.
// POST /api/relocations
func (s *HTTPServer) handleRelocate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("relocations")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req RelocateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BookingID == "" || req.SourceRoomID == "" || req.TargetRoomID == "" {
		writeError(w, http.StatusBadRequest, "booking_id, source_room_id and target_room_id are required")
		return
	}
	sourceDate, err := parseDate(req.SourceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	targetDate, err := parseDate(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.ops.Relocate(r.Context(), service.RelocateRequest{
		BookingID:    req.BookingID,
		SourceRoomID: req.SourceRoomID,
		SourceDate:   sourceDate,
		TargetRoomID: req.TargetRoomID,
		TargetDate:   targetDate,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "booking": updated})
}
