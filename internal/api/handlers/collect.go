package handlers

import (
	"errors"
	"flight-market-service/internal/api/dto"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/ports"
	"flight-market-service/internal/services"
	"fmt"
	"net/http"
)

type CollectHandler struct {
	Coordinator    *services.Coordinator
	Repo           ports.FlightRepository
	DefaultLimit   int
	DefaultAirport string
}

// Collect runs the source fallback chain and stores the accepted batch.
func (h *CollectHandler) Collect(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	airport := r.URL.Query().Get("airport")
	if airport == "" {
		airport = h.DefaultAirport
	}
	q, msg := parseFlightQuery(r, airport, h.DefaultLimit)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	summary, err := services.CollectFlights(r.Context(), services.CollectRequest{
		Target: q.Airport,
		Limit:  q.Limit,
	}, h.Coordinator, h.Repo)

	switch {
	case errors.Is(err, services.ErrNoSourceData):
		writeError(w, r, http.StatusServiceUnavailable, "no flight source returned data")
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("source", string(summary.Source)).Msg("collect flights failed")
		writeError(w, r, http.StatusInternalServerError, "failed to store collected flights")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.CollectResponse{
		Success:          true,
		Message:          fmt.Sprintf("Collected %d flights from %s", summary.Stored, summary.Source),
		FlightsCollected: summary.Stored,
		Source:           string(summary.Source),
		Attempts:         dto.NewAttemptResponses(summary.Attempts),
	})
}
