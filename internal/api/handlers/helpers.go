package handlers

import (
	"errors"
	"flight-market-service/internal/api/dto"
	"flight-market-service/internal/logging"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// flightQuery carries the user-controlled inputs of the flight endpoints.
type flightQuery struct {
	Airport string `validate:"omitempty,len=3,alpha"`
	Limit   int    `validate:"min=1,max=1000"`
}

// parseFlightQuery reads limit from the query string and validates both fields.
// An absent limit takes fallback; the airport is upper-cased before validation.
func parseFlightQuery(r *http.Request, airport string, fallback int) (flightQuery, string) {
	q := flightQuery{Airport: strings.ToUpper(strings.TrimSpace(airport)), Limit: fallback}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, "limit must be an integer"
		}
		q.Limit = n
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Airport" {
			return q, "airport must be a 3-letter IATA code"
		}
		return q, "limit must be between 1 and 1000"
	}
	return q, ""
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	if slices.Contains(methods, r.Method) {
		return true
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Success: false, Error: msg})
}
