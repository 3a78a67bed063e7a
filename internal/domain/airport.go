package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Airport is an entry in the fixed reference table of covered airports.
type Airport struct {
	Code string
	City string
}

var airports = map[string]string{
	"SYD": "Sydney",
	"MEL": "Melbourne",
	"BNE": "Brisbane",
	"PER": "Perth",
	"ADL": "Adelaide",
	"CNS": "Cairns",
	"DRW": "Darwin",
	"HBA": "Hobart",
}

// Airports returns the reference table ordered by code.
func Airports() []Airport {
	out := make([]Airport, 0, len(airports))
	for code, city := range airports {
		out = append(out, Airport{Code: code, City: city})
	}
	slices.SortFunc(out, func(a, b Airport) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

// AirportCodes returns the reference airport codes ordered by code.
func AirportCodes() []string {
	list := Airports()
	codes := make([]string, 0, len(list))
	for _, a := range list {
		codes = append(codes, a.Code)
	}
	return codes
}

// NormalizeCode upper-cases and trims an IATA code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsKnownAirport reports whether code is in the reference table.
func IsKnownAirport(code string) bool {
	_, ok := airports[NormalizeCode(code)]
	return ok
}

// CityFor returns the city for a known airport code, or "" when unknown.
func CityFor(code string) string {
	return airports[NormalizeCode(code)]
}

// CodeForCity does a case-insensitive reverse lookup from city to airport code.
func CodeForCity(city string) (string, bool) {
	c := strings.TrimSpace(city)
	for code, name := range airports {
		if strings.EqualFold(name, c) {
			return code, true
		}
	}
	return "", false
}
