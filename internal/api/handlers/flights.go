package handlers

import (
	"flight-market-service/internal/api/dto"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type FlightsHandler struct {
	Coordinator  *services.Coordinator
	Narrator     *services.Narrator
	DefaultLimit int
}

// Airport reports live flights for one airport without persisting them.
func (h *FlightsHandler) Airport(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	code := chi.URLParam(r, "airport")
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "airport is required")
		return
	}
	q, msg := parseFlightQuery(r, code, h.DefaultLimit)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	report, err := services.ReportAirport(r.Context(), h.Coordinator, h.Narrator, q.Airport, q.Limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("airport", q.Airport).Msg("airport report failed")
		writeError(w, r, http.StatusInternalServerError, "failed to fetch airport flights")
		return
	}

	flights := make([]dto.FlightResponse, 0, len(report.Flights))
	for _, f := range report.Flights {
		flights = append(flights, dto.NewFlightResponse(f))
	}

	writeJSON(w, r, http.StatusOK, dto.AirportFlightsResponse{
		Success:      true,
		Airport:      report.Airport,
		Source:       string(report.Source),
		Flights:      flights,
		Summary:      dto.NewFlightSummaryResponse(report.Summary),
		Insights:     report.Narrative.Text,
		InsightsMode: report.Narrative.Mode,
		Attempts:     dto.NewAttemptResponses(report.Attempts),
	})
}
