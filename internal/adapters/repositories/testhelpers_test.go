package repositories

import (
	"context"
	"database/sql"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/platform/db"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, dialect, err := db.Open(filepath.Join(t.TempDir(), "flights.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if dialect != db.SQLite {
		t.Fatalf("expected sqlite dialect, got %q", dialect)
	}
	if err := InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func sampleFlight(number string, departure time.Time, price float64, demand int) domain.FlightRecord {
	return domain.FlightRecord{
		FlightNumber:    number,
		Origin:          "SYD",
		Destination:     "MEL",
		OriginCity:      "Sydney",
		DestinationCity: "Melbourne",
		DepartureAt:     departure,
		ArrivalAt:       departure.Add(90 * time.Minute),
		Airline:         "Qantas",
		AircraftType:    "Boeing 737-800",
		Status:          domain.StatusScheduled,
		PriceEstimate:   price,
		DemandScore:     demand,
		Source:          domain.SourceSynthetic,
		CollectedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}
