package domain

import "strings"

// Status is the normalised operational state of a flight.
type Status string

const (
	StatusOnTime    Status = "on-time"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusLanded    Status = "landed"
	StatusArrived   Status = "arrived"
	StatusBoarding  Status = "boarding"
	StatusUnknown   Status = "unknown"
)

var statusAliases = map[string]Status{
	"on-time":   StatusOnTime,
	"on time":   StatusOnTime,
	"ontime":    StatusOnTime,
	"delayed":   StatusDelayed,
	"delay":     StatusDelayed,
	"late":      StatusDelayed,
	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
	"scheduled": StatusScheduled,
	"expected":  StatusScheduled,
	"active":    StatusActive,
	"en-route":  StatusActive,
	"en route":  StatusActive,
	"departed":  StatusActive,
	"airborne":  StatusActive,
	"landed":    StatusLanded,
	"arrived":   StatusArrived,
	"boarding":  StatusBoarding,
	"gate open": StatusBoarding,
}

// ParseStatus maps free-text status strings from sources onto the Status enum.
// Matching is case-insensitive; text such as "Delayed 10:45" matches by prefix.
// Anything unrecognised becomes StatusUnknown.
func ParseStatus(raw string) Status {
	s := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if s == "" {
		return StatusUnknown
	}
	if st, ok := statusAliases[s]; ok {
		return st
	}
	for alias, st := range statusAliases {
		if strings.HasPrefix(s, alias+" ") {
			return st
		}
	}
	return StatusUnknown
}

// CountsAsTraffic reports whether a flight with this status counts toward
// route popularity.
func (s Status) CountsAsTraffic() bool {
	switch s {
	case StatusOnTime, StatusScheduled, StatusActive, StatusLanded, StatusArrived, StatusBoarding:
		return true
	}
	return false
}

// IsOnTime reports whether the status counts toward the on-time percentage.
func (s Status) IsOnTime() bool {
	return s.CountsAsTraffic()
}
