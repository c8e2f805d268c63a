package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/metrics"
	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// CalendarRequest is the request body for POST /api/calendar.
type CalendarRequest struct {
	StartDate string `json:"start_date"` // Format: YYYY-MM-DD
	EndDate   string `json:"end_date"`   // Format: YYYY-MM-DD, exclusive
}

// handleCalendar returns the rooms-by-days grid.
// POST /api/calendar
func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req CalendarRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.ops.CalendarGrid(start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rows": rows,
		"period": map[string]string{
			"start": req.StartDate,
			"end":   req.EndDate,
		},
	})
}

func (s *HTTPServer) parseRange(startDate, endDate string) (start, end time.Time, err error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, errRequiredRange
	}
	start, err = parseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = parseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errEndBeforeStart
	}
	if models.DaysBetween(start, end) > s.maxRangeDays {
		return time.Time{}, time.Time{}, errRangeTooWide(s.maxRangeDays)
	}
	return start, end, nil
}
