package handlers

import (
	"flight-market-service/internal/api/dto"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/services"
	"net/http"
)

type AnalyzeHandler struct {
	Analyzer *services.Analyzer
}

// Trends aggregates the stored flights and attaches a narrative.
func (h *AnalyzeHandler) Trends(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	summary, err := h.Analyzer.Analyze(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("analyze trends failed")
		writeError(w, r, http.StatusInternalServerError, "failed to analyze stored flights")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewAnalyzeResponse(summary))
}

func (h *AnalyzeHandler) Visualizations(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	charts, err := h.Analyzer.Visualize(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("build visualizations failed")
		writeError(w, r, http.StatusInternalServerError, "failed to build visualizations")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewVisualizationsResponse(charts))
}

// MarketTrends serves the cached rows written by the last analysis.
func (h *AnalyzeHandler) MarketTrends(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	trends, err := h.Analyzer.CachedTrends(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list market trends failed")
		writeError(w, r, http.StatusInternalServerError, "failed to list market trends")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewMarketTrendsResponse(trends))
}
