package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PassengerInput struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	SeatID string `json:"seat_id"`
}

type CreateBookingRequest struct {
	UserID        string           `json:"-"`
	ScheduleID    string           `json:"schedule_id"`
	FromStationID string           `json:"from_station_id"`
	ToStationID   string           `json:"to_station_id"`
	StatusID      string           `json:"status_id,omitempty"`
	TotalAmount   float64          `json:"total_amount"`
	Passengers    []PassengerInput `json:"passengers"`
}

type ConfirmBookingRequest struct {
	BookingID string
	UserID    string
}

type CancelBookingRequest struct {
	BookingID string
	UserID    string
	Reason    string `json:"reason"`
}

// BookingService owns every booking state transition. Multi-effect
// transitions are delegated to the repository as single transactions.
type BookingService struct {
	bookingRepo ports.BookingRepository
	routeRepo   ports.RouteRepository
	publisher   ports.EventPublisher
	logger      *logrus.Logger
	now         func() time.Time
}

func NewBookingService(bookingRepo ports.BookingRepository, routeRepo ports.RouteRepository, publisher ports.EventPublisher, logger *logrus.Logger) *BookingService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BookingService{
		bookingRepo: bookingRepo,
		routeRepo:   routeRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for timestamps and audit entries.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	scheduleID, err := parseID("schedule_id", req.ScheduleID)
	if err != nil {
		return nil, err
	}
	fromID, err := parseID("from_station_id", req.FromStationID)
	if err != nil {
		return nil, err
	}
	toID, err := parseID("to_station_id", req.ToStationID)
	if err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, domain.ValidationError{Field: "to_station_id", Msg: "must differ from from_station_id"}
	}
	totalAmount := domain.RoundMoney(req.TotalAmount)
	if totalAmount <= 0 {
		return nil, domain.ValidationError{Field: "total_amount", Msg: "must be at least 0.01"}
	}

	stops, err := s.routeRepo.GetScheduleStops(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !domain.IsForwardRoute(stops, fromID, toID) {
		return nil, domain.ErrInvalidRoute
	}

	pnr, err := domain.NewPNR()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		ID:            uuid.New(),
		UserID:        userID,
		ScheduleID:    scheduleID,
		FromStationID: fromID,
		ToStationID:   toID,
		Status:        domain.BookingPending,
		TotalAmount:   totalAmount,
		PNR:           pnr,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	seen := make(map[uuid.UUID]bool, len(req.Passengers))
	for i, p := range req.Passengers {
		field := fmt.Sprintf("passengers[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			return nil, domain.ValidationError{Field: field + ".name", Msg: "is required"}
		}
		if p.Age <= 0 {
			return nil, domain.ValidationError{Field: field + ".age", Msg: "must be positive"}
		}
		seatID, err := parseID(field+".seat_id", p.SeatID)
		if err != nil {
			return nil, err
		}
		if seen[seatID] {
			return nil, domain.ValidationError{Field: field + ".seat_id", Msg: "seat selected twice"}
		}
		seen[seatID] = true

		booking.Seats = append(booking.Seats, domain.BookedSeat{
			ID:         uuid.New(),
			BookingID:  booking.ID,
			ScheduleID: scheduleID,
			SeatID:     seatID,
		})
		booking.Passengers = append(booking.Passengers, domain.BookedPassenger{
			ID:        uuid.New(),
			BookingID: booking.ID,
			Name:      strings.TrimSpace(p.Name),
			Age:       p.Age,
			Gender:    p.Gender,
			SeatID:    seatID,
		})
	}

	audit := domain.AuditLog{
		ID:     uuid.New(),
		UserID: userID,
		Action: domain.AuditAction(domain.AuditBookingCreated, "booking %s (PNR %s) created with %d seat(s)",
			booking.ID, booking.PNR, len(booking.Seats)),
		CreatedAt: now,
	}

	if err := s.bookingRepo.Create(ctx, booking, audit); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"pnr":        booking.PNR,
		"seats":      len(booking.Seats),
	}).Info("booking created")

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	_, booking, err := s.loadOwned(ctx, bookingID, userID)
	return booking, err
}

// ConfirmBooking is called by the payment flow once a payment has completed.
// Of two racing confirmations only one succeeds; the other gets a conflict.
func (s *BookingService) ConfirmBooking(ctx context.Context, req ConfirmBookingRequest) (*domain.Booking, error) {
	userID, booking, err := s.loadOwned(ctx, req.BookingID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(domain.BookingConfirmed) {
		return nil, domain.ErrAlreadyConfirmed
	}

	now := s.now().UTC()
	confirmed, err := s.bookingRepo.Confirm(ctx, domain.TransitionCommand{
		BookingID: booking.ID,
		ActorID:   userID,
		At:        now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"booking_id": confirmed.ID, "pnr": confirmed.PNR}).Info("booking confirmed")
	s.publish(ctx, domain.NewBookingEvent(domain.EventBookingConfirmed, confirmed, now))

	return confirmed, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, req CancelBookingRequest) (*domain.Booking, error) {
	userID, booking, err := s.loadOwned(ctx, req.BookingID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(domain.BookingCancelled) {
		return nil, domain.ErrAlreadyCancelled
	}

	now := s.now().UTC()
	cancelled, refund, err := s.bookingRepo.Cancel(ctx, domain.TransitionCommand{
		BookingID: booking.ID,
		ActorID:   userID,
		Reason:    strings.TrimSpace(req.Reason),
		At:        now,
	})
	if err != nil {
		return nil, err
	}

	event := domain.NewBookingEvent(domain.EventBookingCancelled, cancelled, now)
	fields := logrus.Fields{"booking_id": cancelled.ID, "pnr": cancelled.PNR}
	if refund != nil {
		event.RefundAmount = refund.Amount
		fields["refund_amount"] = refund.Amount
	}
	s.logger.WithFields(fields).Info("booking cancelled")
	s.publish(ctx, event)

	return cancelled, nil
}

func (s *BookingService) loadOwned(ctx context.Context, rawBookingID, rawUserID string) (uuid.UUID, *domain.Booking, error) {
	bookingID, err := parseID("booking_id", rawBookingID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	userID, err := parseID("user_id", rawUserID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !booking.IsOwnedBy(userID) {
		return uuid.Nil, nil, domain.ErrNotOwner
	}
	return userID, booking, nil
}

// publish is best effort: the transition has already committed.
func (s *BookingService) publish(ctx context.Context, event domain.BookingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("booking_id", event.BookingID).Warn("failed to publish booking event")
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.ValidationError{Field: field, Msg: "must be a valid UUID", Err: err}
	}
	if id == uuid.Nil {
		return uuid.Nil, domain.ValidationError{Field: field, Msg: "is required"}
	}
	return id, nil
}
