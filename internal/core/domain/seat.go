package domain

import "github.com/google/uuid"

type Coach struct {
	ID          uuid.UUID
	TrainID     uuid.UUID
	CoachTypeID uuid.UUID
	Code        string
}

type Seat struct {
	ID         uuid.UUID
	CoachID    uuid.UUID
	SeatNumber string
}

// CoachAvailability is the seat count summary of one coach for a train run.
type CoachAvailability struct {
	CoachID     uuid.UUID `json:"coach_id"`
	CoachCode   string    `json:"coach_code"`
	CoachTypeID uuid.UUID `json:"coach_type_id"`
	Total       int       `json:"total"`
	Booked      int       `json:"booked"`
	Available   int       `json:"available"`
}

func NewCoachAvailability(coach Coach, total, booked int) CoachAvailability {
	available := total - booked
	if available < 0 {
		available = 0
	}
	return CoachAvailability{
		CoachID:     coach.ID,
		CoachCode:   coach.Code,
		CoachTypeID: coach.CoachTypeID,
		Total:       total,
		Booked:      booked,
		Available:   available,
	}
}

type CoachCapacity struct {
	Coach      Coach
	TotalSeats int
}
