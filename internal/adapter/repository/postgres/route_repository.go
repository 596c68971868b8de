package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/google/uuid"
)

type RouteRepository struct {
	db *sql.DB
}

func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) GetFareRate(ctx context.Context, trainID, coachTypeID uuid.UUID) (*domain.FareRate, error) {
	query := `
	SELECT rate_per_km
	FROM fare_rates
	WHERE train_id = $1 AND coach_type_id = $2
	`

	rate := domain.FareRate{TrainID: trainID, CoachTypeID: coachTypeID}
	err := r.db.QueryRowContext(ctx, query, trainID, coachTypeID).Scan(&rate.RatePerKm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "fare rate", Err: err}
		}
		return nil, err
	}

	return &rate, nil
}

func (r *RouteRepository) GetScheduleStops(ctx context.Context, scheduleID uuid.UUID) ([]domain.ScheduleStop, error) {
	query := `
	SELECT station_id, stop_number, arrival_time, departure_time
	FROM schedule_stops
	WHERE schedule_id = $1
	ORDER BY stop_number ASC
	`

	stops, err := r.queryStops(ctx, scheduleID, query, scheduleID)
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, domain.NotFoundError{Resource: "schedule"}
	}

	return stops, nil
}

// FindRouteStops picks the most recent schedule of the train on which the
// origin's stop number is lower than the destination's.
func (r *RouteRepository) FindRouteStops(ctx context.Context, trainID, fromStationID, toStationID uuid.UUID) ([]domain.ScheduleStop, error) {
	scheduleQuery := `
	SELECT s.id, a.stop_number, b.stop_number
	FROM schedules s
	JOIN schedule_stops a ON a.schedule_id = s.id AND a.station_id = $2
	JOIN schedule_stops b ON b.schedule_id = s.id AND b.station_id = $3
	WHERE s.train_id = $1 AND a.stop_number < b.stop_number
	ORDER BY s.departure_date DESC
	LIMIT 1
	`

	var scheduleID uuid.UUID
	var fromStop, toStop int
	err := r.db.QueryRowContext(ctx, scheduleQuery, trainID, fromStationID, toStationID).Scan(&scheduleID, &fromStop, &toStop)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}

	stopsQuery := `
	SELECT station_id, stop_number, arrival_time, departure_time
	FROM schedule_stops
	WHERE schedule_id = $1 AND stop_number BETWEEN $2 AND $3
	ORDER BY stop_number ASC
	`

	return r.queryStops(ctx, scheduleID, stopsQuery, scheduleID, fromStop, toStop)
}

// GetDistance looks the pair up in either direction.
func (r *RouteRepository) GetDistance(ctx context.Context, stationA, stationB uuid.UUID) (float64, error) {
	query := `
	SELECT distance_km
	FROM station_distances
	WHERE (from_station_id = $1 AND to_station_id = $2)
		OR (from_station_id = $2 AND to_station_id = $1)
	LIMIT 1
	`

	var distance float64
	err := r.db.QueryRowContext(ctx, query, stationA, stationB).Scan(&distance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NotFoundError{Resource: "station distance", Err: err}
		}
		return 0, err
	}

	return distance, nil
}

func (r *RouteRepository) queryStops(ctx context.Context, scheduleID uuid.UUID, query string, args ...any) ([]domain.ScheduleStop, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var stops []domain.ScheduleStop
	for rows.Next() {
		stop := domain.ScheduleStop{ScheduleID: scheduleID}
		var arrival, departure sql.NullTime
		if err := rows.Scan(&stop.StationID, &stop.StopNumber, &arrival, &departure); err != nil {
			return nil, err
		}
		if arrival.Valid {
			stop.ArrivalTime = &arrival.Time
		}
		if departure.Valid {
			stop.DepartureTime = &departure.Time
		}

		stops = append(stops, stop)
	}

	return stops, rows.Err()
}
