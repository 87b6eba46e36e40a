package http

import (
	"errors"
	"net/http"

	"finbook/internal/core"
	"finbook/internal/services"
)

// dashboardResponse bundles everything the dashboard view needs in one read:
// headline totals, the chart series and the current insight state.
type dashboardResponse struct {
	Totals  services.Totals       `json:"totals"`
	Summary []core.MonthSummary   `json:"summary"`
	Insight services.InsightState `json:"insight"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.tracker.Summary()
	if summary == nil {
		// No data is an empty series, not an error.
		summary = []core.MonthSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary := s.tracker.Summary()
	if summary == nil {
		summary = []core.MonthSummary{}
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Totals:  s.tracker.Totals(),
		Summary: summary,
		Insight: s.tracker.Insight(),
	})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Insight())
}

// handleRefreshInsight re-triggers insight generation. While a request is in
// flight the re-trigger is rejected; the client keeps polling GET
// /api/insight until the state leaves pending.
func (s *Server) handleRefreshInsight(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.RefreshInsight(); err != nil {
		if errors.Is(err, services.ErrInsightPending) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "insight refresh failed")
		return
	}
	writeJSON(w, http.StatusAccepted, s.tracker.Insight())
}
