package ports

import (
	"context"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/google/uuid"
)

type BookingRepository interface {
	// Create stores the booking with its seats, passengers and audit entry in one transaction.
	Create(ctx context.Context, booking *domain.Booking, audit domain.AuditLog) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	// Confirm moves a PENDING booking to CONFIRMED; any other status yields domain.ErrAlreadyConfirmed.
	Confirm(ctx context.Context, cmd domain.TransitionCommand) (*domain.Booking, error)
	// Cancel applies every cancellation effect atomically and returns the refund, if one was requested.
	Cancel(ctx context.Context, cmd domain.TransitionCommand) (*domain.Booking, *domain.Refund, error)
	ListExpirable(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error)
	// Expire cancels a booking only if it is still PENDING with no completed payment.
	// A nil booking means it was no longer eligible.
	Expire(ctx context.Context, cmd domain.TransitionCommand) (*domain.Booking, error)
}

type RouteRepository interface {
	GetFareRate(ctx context.Context, trainID, coachTypeID uuid.UUID) (*domain.FareRate, error)
	GetScheduleStops(ctx context.Context, scheduleID uuid.UUID) ([]domain.ScheduleStop, error)
	// FindRouteStops returns the stops from one station to the other, inclusive, on a
	// schedule of the train that visits them in that order, or domain.ErrRouteNotFound.
	FindRouteStops(ctx context.Context, trainID, fromStationID, toStationID uuid.UUID) ([]domain.ScheduleStop, error)
	GetDistance(ctx context.Context, stationA, stationB uuid.UUID) (float64, error)
}

type AvailabilityRepository interface {
	ListCoachCapacities(ctx context.Context, trainID uuid.UUID) ([]domain.CoachCapacity, error)
	CountBookedSeats(ctx context.Context, trainID uuid.UUID, date time.Time) (map[uuid.UUID]int, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}

// Lease is a cluster-wide mutual exclusion held for a bounded time.
type Lease interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}
