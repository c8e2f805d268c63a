package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Hezi12/rothschild-backoffice/internal/metrics"
)

// handleOccupancy returns monthly occupancy, for one room or for all.
// GET /api/occupancy?month=YYYY-MM[&room_id=...]
func (s *HTTPServer) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("occupancy")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		occ, err := s.ops.Occupancy(roomID, year, month)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, occ)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.ops.OccupancyAll(year, month)})
}

// handleOccupancyReport streams the monthly workbook.
// GET /api/reports/occupancy?month=YYYY-MM
func (s *HTTPServer) handleOccupancyReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("occupancy_report")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.reports == nil {
		writeError(w, http.StatusNotFound, "reports disabled")
		return
	}

	year, month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := s.reports.Monthly(r.Context(), year, month)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("occupancy-%04d-%02d.xlsx", year, int(month))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseMonth(raw string) (int, time.Month, error) {
	if raw == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q; expected YYYY-MM", raw)
	}
	return t.Year(), t.Month(), nil
}
