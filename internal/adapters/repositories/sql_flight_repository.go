package repositories

import (
	"context"
	"database/sql"
	"errors"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/metrics"
	"flight-market-service/internal/platform/db"
	"flight-market-service/internal/platform/obs"
	"fmt"
	"time"
)

// SQL-backed implementation of the FlightRepository port.
// Works against sqlite and postgres; queries are rebound for the dialect.
type SQLFlightRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLFlightRepository(conn *sql.DB, dialect db.Dialect) *SQLFlightRepository {
	return &SQLFlightRepository{DB: conn, Dialect: dialect}
}

const upsertFlightQuery = `
	INSERT INTO flights (
		flight_number,
		departure_date,
		departure_airport,
		arrival_airport,
		departure_city,
		arrival_city,
		departure_at,
		arrival_at,
		airline,
		aircraft_type,
		status,
		price_estimate,
		demand_score,
		source,
		collected_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (flight_number, departure_date) DO UPDATE
	SET departure_airport = excluded.departure_airport,
		arrival_airport = excluded.arrival_airport,
		departure_city = excluded.departure_city,
		arrival_city = excluded.arrival_city,
		departure_at = excluded.departure_at,
		arrival_at = excluded.arrival_at,
		airline = excluded.airline,
		aircraft_type = excluded.aircraft_type,
		status = excluded.status,
		price_estimate = excluded.price_estimate,
		demand_score = excluded.demand_score,
		source = excluded.source,
		collected_at = excluded.collected_at;
	`

// Insert or overwrite records by natural key inside one transaction.
// Records without a flight number or departure time are skipped.
func (s *SQLFlightRepository) UpsertFlights(ctx context.Context, records []domain.FlightRecord) (_ int, err error) {
	defer obs.Time(ctx, "flights.UpsertFlights")(&err)

	if s.DB == nil {
		return 0, errors.New("sql flight repository: DB is nil")
	}

	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert flights: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Dialect, upsertFlightQuery))
	if err != nil {
		return 0, fmt.Errorf("upsert flights: prepare: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, r := range records {
		if r.FlightNumber == "" || r.DepartureAt.IsZero() {
			continue
		}

		_, err := stmt.ExecContext(ctx,
			r.FlightNumber,
			r.DepartureDate(),
			r.Origin,
			r.Destination,
			r.OriginCity,
			r.DestinationCity,
			formatTime(r.DepartureAt),
			nullableTime(r.ArrivalAt),
			r.Airline,
			r.AircraftType,
			string(r.Status),
			r.PriceEstimate,
			r.DemandScore,
			string(r.Source),
			formatTime(r.CollectedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert flights: flight %s on %s: %w", r.FlightNumber, r.DepartureDate(), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert flights: commit tx: %w", err)
	}

	metrics.FlightsUpserted.Add(float64(written))
	return written, nil
}

// Return every stored flight ordered by departure date then flight number.
func (s *SQLFlightRepository) ListFlights(ctx context.Context) (_ []domain.FlightRecord, err error) {
	defer obs.Time(ctx, "flights.ListFlights")(&err)

	if s.DB == nil {
		return nil, errors.New("sql flight repository: DB is nil")
	}

	query := `
	SELECT
		flight_number,
		departure_airport,
		arrival_airport,
		departure_city,
		arrival_city,
		departure_at,
		arrival_at,
		airline,
		aircraft_type,
		status,
		price_estimate,
		demand_score,
		source,
		collected_at
	FROM flights
	ORDER BY departure_date, flight_number;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flights: query flights table: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.FlightRecord, 0, 256)
	for rows.Next() {
		var (
			r                    domain.FlightRecord
			departure, collected string
			arrival              sql.NullString
			status, source       string
		)
		err := rows.Scan(
			&r.FlightNumber,
			&r.Origin,
			&r.Destination,
			&r.OriginCity,
			&r.DestinationCity,
			&departure,
			&arrival,
			&r.Airline,
			&r.AircraftType,
			&status,
			&r.PriceEstimate,
			&r.DemandScore,
			&source,
			&collected,
		)
		if err != nil {
			return nil, fmt.Errorf("list flights: scan row: %w", err)
		}

		if r.DepartureAt, err = parseTime(departure); err != nil {
			return nil, fmt.Errorf("list flights: flight %s departure_at: %w", r.FlightNumber, err)
		}
		if arrival.Valid && arrival.String != "" {
			if r.ArrivalAt, err = parseTime(arrival.String); err != nil {
				return nil, fmt.Errorf("list flights: flight %s arrival_at: %w", r.FlightNumber, err)
			}
		}
		if r.CollectedAt, err = parseTime(collected); err != nil {
			return nil, fmt.Errorf("list flights: flight %s collected_at: %w", r.FlightNumber, err)
		}
		r.Status = domain.Status(status)
		r.Source = domain.Provenance(source)

		flights = append(flights, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flights: row iteration: %w", err)
	}

	return flights, nil
}

func (s *SQLFlightRepository) CountFlights(ctx context.Context) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sql flight repository: DB is nil")
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
