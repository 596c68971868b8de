package services

import (
	"context"
	"strings"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/ports"
)

const DateLayout = "2006-01-02"

// AvailabilityService reads seat counts straight from storage on every call.
// Nothing is cached, so a cancellation is visible to the next query.
type AvailabilityService struct {
	repo ports.AvailabilityRepository
}

func NewAvailabilityService(repo ports.AvailabilityRepository) *AvailabilityService {
	return &AvailabilityService{repo: repo}
}

func (s *AvailabilityService) GetAvailability(ctx context.Context, rawTrainID, rawDate string) ([]domain.CoachAvailability, error) {
	trainID, err := parseID("train_id", rawTrainID)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(rawDate))
	if err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "must be formatted as YYYY-MM-DD", Err: err}
	}

	coaches, err := s.repo.ListCoachCapacities(ctx, trainID)
	if err != nil {
		return nil, err
	}
	if len(coaches) == 0 {
		return []domain.CoachAvailability{}, nil
	}

	booked, err := s.repo.CountBookedSeats(ctx, trainID, date)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CoachAvailability, 0, len(coaches))
	for _, c := range coaches {
		out = append(out, domain.NewCoachAvailability(c.Coach, c.TotalSeats, booked[c.Coach.ID]))
	}
	return out, nil
}
