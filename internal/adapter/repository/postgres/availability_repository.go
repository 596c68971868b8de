package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/google/uuid"
)

type AvailabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) ListCoachCapacities(ctx context.Context, trainID uuid.UUID) ([]domain.CoachCapacity, error) {
	query := `
	SELECT c.id, c.coach_type_id, c.code, COUNT(s.id)
	FROM coaches c
	LEFT JOIN seats s ON s.coach_id = c.id
	WHERE c.train_id = $1
	GROUP BY c.id, c.coach_type_id, c.code
	ORDER BY c.code ASC
	`

	rows, err := r.db.QueryContext(ctx, query, trainID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var capacities []domain.CoachCapacity
	for rows.Next() {
		c := domain.CoachCapacity{Coach: domain.Coach{TrainID: trainID}}
		if err := rows.Scan(&c.Coach.ID, &c.Coach.CoachTypeID, &c.Coach.Code, &c.TotalSeats); err != nil {
			return nil, err
		}

		capacities = append(capacities, c)
	}

	return capacities, rows.Err()
}

// CountBookedSeats counts held seats per coach for runs of the train that
// depart on date. Cancelled bookings have no booked_seats rows left, the
// status filter only guards against rows written outside this service.
func (r *AvailabilityRepository) CountBookedSeats(ctx context.Context, trainID uuid.UUID, date time.Time) (map[uuid.UUID]int, error) {
	query := `
	SELECT se.coach_id, COUNT(DISTINCT bs.seat_id)
	FROM booked_seats bs
	JOIN bookings b ON b.id = bs.booking_id
	JOIN schedules sc ON sc.id = b.schedule_id
	JOIN seats se ON se.id = bs.seat_id
	WHERE sc.train_id = $1
		AND sc.departure_date = $2
		AND b.status <> 'CANCELLED'
	GROUP BY se.coach_id
	`

	rows, err := r.db.QueryContext(ctx, query, trainID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	booked := make(map[uuid.UUID]int)
	for rows.Next() {
		var coachID uuid.UUID
		var count int
		if err := rows.Scan(&coachID, &count); err != nil {
			return nil, err
		}
		booked[coachID] = count
	}

	return booked, rows.Err()
}
