package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
	BookingCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	ScheduleID    uuid.UUID         `json:"schedule_id"`
	FromStationID uuid.UUID         `json:"from_station_id"`
	ToStationID   uuid.UUID         `json:"to_station_id"`
	Status        BookingStatus     `json:"status"`
	TotalAmount   float64           `json:"total_amount"`
	PNR           string            `json:"pnr"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Seats         []BookedSeat      `json:"seats,omitempty"`
	Passengers    []BookedPassenger `json:"passengers,omitempty"`
}

// IsOwnedBy reports whether userID created the booking.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// BookedSeat holds a seat on a schedule for an active booking.
type BookedSeat struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	SeatID     uuid.UUID `json:"seat_id"`
}

type BookedPassenger struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	SeatID    uuid.UUID `json:"seat_id"`
}

const pnrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const PNRLength = 10

// NewPNR returns a random booking reference drawn from an alphabet without
// the easily confused characters 0/O and 1/I.
func NewPNR() (string, error) {
	buf := make([]byte, PNRLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pnr: %w", err)
	}
	for i, b := range buf {
		buf[i] = pnrAlphabet[int(b)%len(pnrAlphabet)]
	}
	return string(buf), nil
}

// TransitionCommand carries the actor and time of a lifecycle transition.
type TransitionCommand struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Reason    string
	At        time.Time
}

type BookingEventType string

const (
	EventBookingConfirmed BookingEventType = "booking.confirmed"
	EventBookingCancelled BookingEventType = "booking.cancelled"
	EventBookingExpired   BookingEventType = "booking.expired"
)

// BookingEvent is published after a lifecycle transition commits.
type BookingEvent struct {
	Type         BookingEventType `json:"type"`
	BookingID    uuid.UUID        `json:"booking_id"`
	UserID       uuid.UUID        `json:"user_id"`
	PNR          string           `json:"pnr"`
	Status       BookingStatus    `json:"status"`
	TotalAmount  float64          `json:"total_amount"`
	RefundAmount float64          `json:"refund_amount,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        t,
		BookingID:   b.ID,
		UserID:      b.UserID,
		PNR:         b.PNR,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
		OccurredAt:  at.UTC(),
	}
}
