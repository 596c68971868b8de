package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/google/uuid"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking, audit domain.AuditLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO bookings (id, user_id, schedule_id, from_station_id, to_station_id, status, total_amount, pnr, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, queryHeader,
		booking.ID, booking.UserID, booking.ScheduleID, booking.FromStationID, booking.ToStationID,
		booking.Status, booking.TotalAmount, booking.PNR, booking.CreatedAt, booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError{Resource: "booking", Msg: "pnr already in use", Err: err}
		}
		return fmt.Errorf("failed to insert booking header: %w", err)
	}

	querySeatOnSchedule := `
	SELECT 1
	FROM seats se
	JOIN coaches c ON c.id = se.coach_id
	JOIN schedules s ON s.train_id = c.train_id
	WHERE se.id = $1 AND s.id = $2
	`

	querySeat := `
	INSERT INTO booked_seats (id, booking_id, schedule_id, seat_id)
	VALUES ($1, $2, $3, $4)
	`

	for _, seat := range booking.Seats {
		var found int
		err := tx.QueryRowContext(ctx, querySeatOnSchedule, seat.SeatID, seat.ScheduleID).Scan(&found)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "seat " + seat.SeatID.String() + " on this schedule", Err: err}
			}
			return fmt.Errorf("failed to check seat %s: %w", seat.SeatID, err)
		}

		if _, err := tx.ExecContext(ctx, querySeat, seat.ID, seat.BookingID, seat.ScheduleID, seat.SeatID); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrSeatTaken
			}
			if isForeignKeyViolation(err) {
				return domain.NotFoundError{Resource: "seat " + seat.SeatID.String(), Err: err}
			}
			return fmt.Errorf("failed to insert booked seat %s: %w", seat.SeatID, err)
		}
	}

	queryPassenger := `
	INSERT INTO booked_passengers (id, booking_id, name, age, gender, seat_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, p := range booking.Passengers {
		if _, err := tx.ExecContext(ctx, queryPassenger, p.ID, p.BookingID, p.Name, p.Age, p.Gender, p.SeatID); err != nil {
			return fmt.Errorf("failed to insert passenger %q: %w", p.Name, err)
		}
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `
	SELECT id, user_id, schedule_id, from_station_id, to_station_id, status, total_amount, pnr, created_at, updated_at
	FROM bookings
	WHERE id = $1
	`

	var b domain.Booking
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&b.ID, &b.UserID, &b.ScheduleID, &b.FromStationID, &b.ToStationID,
		&b.Status, &b.TotalAmount, &b.PNR, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return nil, err
	}

	seatRows, err := r.db.QueryContext(ctx, `SELECT id, schedule_id, seat_id FROM booked_seats WHERE booking_id = $1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()

	for seatRows.Next() {
		s := domain.BookedSeat{BookingID: b.ID}
		if err := seatRows.Scan(&s.ID, &s.ScheduleID, &s.SeatID); err != nil {
			return nil, err
		}
		b.Seats = append(b.Seats, s)
	}
	if err := seatRows.Err(); err != nil {
		return nil, err
	}

	paxRows, err := r.db.QueryContext(ctx, `SELECT id, name, age, gender, seat_id FROM booked_passengers WHERE booking_id = $1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer paxRows.Close()

	for paxRows.Next() {
		p := domain.BookedPassenger{BookingID: b.ID}
		if err := paxRows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.SeatID); err != nil {
			return nil, err
		}
		b.Passengers = append(b.Passengers, p)
	}
	if err := paxRows.Err(); err != nil {
		return nil, err
	}

	return &b, nil
}

// Confirm relies on the status guard in the UPDATE: of two racing calls the
// second matches no row and reports a conflict.
func (r *BookingRepository) Confirm(ctx context.Context, cmd domain.TransitionCommand) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer tx.Rollback()

	query := `
	UPDATE bookings
	SET status = $1, updated_at = $2
	WHERE id = $3 AND status = $4
	RETURNING user_id, schedule_id, from_station_id, to_station_id, total_amount, pnr, created_at
	`

	b := domain.Booking{ID: cmd.BookingID, Status: domain.BookingConfirmed, UpdatedAt: cmd.At}
	err = tx.QueryRowContext(ctx, query, domain.BookingConfirmed, cmd.At, cmd.BookingID, domain.BookingPending).Scan(
		&b.UserID, &b.ScheduleID, &b.FromStationID, &b.ToStationID, &b.TotalAmount, &b.PNR, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlreadyConfirmed
		}
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	audit := domain.AuditLog{
		ID:        uuid.New(),
		UserID:    cmd.ActorID,
		Action:    domain.AuditAction(domain.AuditBookingConfirmed, "booking %s (PNR %s) confirmed", b.ID, b.PNR),
		CreatedAt: cmd.At,
	}
	if err := insertAudit(ctx, tx, audit); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &b, nil
}

// Cancel locks the booking row, then applies the status change, seat and
// passenger release, refund and audit entry in one transaction.
func (r *BookingRepository) Cancel(ctx context.Context, cmd domain.TransitionCommand) (*domain.Booking, *domain.Refund, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	defer tx.Rollback()

	lockQuery := `
	SELECT user_id, schedule_id, from_station_id, to_station_id, status, total_amount, pnr, created_at
	FROM bookings
	WHERE id = $1
	FOR UPDATE
	`

	b := domain.Booking{ID: cmd.BookingID}
	err = tx.QueryRowContext(ctx, lockQuery, cmd.BookingID).Scan(
		&b.UserID, &b.ScheduleID, &b.FromStationID, &b.ToStationID, &b.Status, &b.TotalAmount, &b.PNR, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return nil, nil, err
	}
	if !b.Status.CanTransitionTo(domain.BookingCancelled) {
		return nil, nil, domain.ErrAlreadyCancelled
	}

	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
		domain.BookingCancelled, cmd.At, cmd.BookingID); err != nil {
		return nil, nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	b.Status = domain.BookingCancelled
	b.UpdatedAt = cmd.At

	if err := releaseSeats(ctx, tx, cmd.BookingID); err != nil {
		return nil, nil, err
	}

	refund, err := requestRefund(ctx, tx, cmd)
	if err != nil {
		return nil, nil, err
	}

	audit := domain.AuditLog{
		ID:        uuid.New(),
		UserID:    cmd.ActorID,
		Action:    domain.CancellationAuditAction(&b, refund, cmd.Reason),
		CreatedAt: cmd.At,
	}
	if err := insertAudit(ctx, tx, audit); err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &b, refund, nil
}

func (r *BookingRepository) ListExpirable(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	query := `
	SELECT b.id, b.user_id, b.pnr, b.created_at
	FROM bookings b
	WHERE b.status = 'PENDING'
		AND b.created_at < $1
		AND NOT EXISTS (
			SELECT 1 FROM payments p WHERE p.booking_id = b.id AND p.status = 'COMPLETED'
		)
	ORDER BY b.created_at ASC
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b := domain.Booking{Status: domain.BookingPending}
		if err := rows.Scan(&b.ID, &b.UserID, &b.PNR, &b.CreatedAt); err != nil {
			return nil, err
		}

		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// Expire evaluates "still pending and unpaid" in the same statement that
// writes the new status, so a payment that completed first always wins.
func (r *BookingRepository) Expire(ctx context.Context, cmd domain.TransitionCommand) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer tx.Rollback()

	query := `
	UPDATE bookings b
	SET status = 'CANCELLED', updated_at = $1
	WHERE b.id = $2
		AND b.status = 'PENDING'
		AND NOT EXISTS (
			SELECT 1 FROM payments p WHERE p.booking_id = b.id AND p.status = 'COMPLETED'
		)
	RETURNING b.user_id, b.schedule_id, b.from_station_id, b.to_station_id, b.total_amount, b.pnr, b.created_at
	`

	b := domain.Booking{ID: cmd.BookingID, Status: domain.BookingCancelled, UpdatedAt: cmd.At}
	err = tx.QueryRowContext(ctx, query, cmd.At, cmd.BookingID).Scan(
		&b.UserID, &b.ScheduleID, &b.FromStationID, &b.ToStationID, &b.TotalAmount, &b.PNR, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to expire booking: %w", err)
	}

	if err := releaseSeats(ctx, tx, cmd.BookingID); err != nil {
		return nil, err
	}

	audit := domain.AuditLog{
		ID:        uuid.New(),
		UserID:    b.UserID,
		Action:    domain.ExpiryAuditAction(&b, cmd.Reason),
		CreatedAt: cmd.At,
	}
	if err := insertAudit(ctx, tx, audit); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &b, nil
}

func releaseSeats(ctx context.Context, tx *sql.Tx, bookingID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM booked_seats WHERE booking_id = $1`, bookingID); err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM booked_passengers WHERE booking_id = $1`, bookingID); err != nil {
		return fmt.Errorf("failed to remove passengers: %w", err)
	}
	return nil
}

// requestRefund inserts a refund for the booking's completed payment, if any.
// The unique payment_id constraint turns a second attempt into a conflict.
func requestRefund(ctx context.Context, tx *sql.Tx, cmd domain.TransitionCommand) (*domain.Refund, error) {
	paymentQuery := `
	SELECT id, amount
	FROM payments
	WHERE booking_id = $1 AND status = 'COMPLETED'
	ORDER BY amount DESC
	LIMIT 1
	`

	var paymentID uuid.UUID
	var amount float64
	err := tx.QueryRowContext(ctx, paymentQuery, cmd.BookingID).Scan(&paymentID, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}
	if amount <= 0 {
		return nil, nil
	}

	refund := &domain.Refund{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Amount:    domain.RoundMoney(amount),
		Status:    domain.RefundRequested,
		CreatedAt: cmd.At,
	}

	insertQuery := `
	INSERT INTO refunds (id, payment_id, amount, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (payment_id) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, insertQuery, refund.ID, refund.PaymentID, refund.Amount, refund.Status, refund.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert refund: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, domain.ErrRefundExists
	}

	return refund, nil
}

func insertAudit(ctx context.Context, tx *sql.Tx, audit domain.AuditLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, created_at) VALUES ($1, $2, $3, $4)`,
		audit.ID, audit.UserID, audit.Action, audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
