package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/adapter/repository/postgres"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// completedPaymentGuard keeps a paid booking from being expired.
const completedPaymentGuard = `AND NOT EXISTS \(\s+SELECT 1 FROM payments p WHERE p.booking_id = b.id AND p.status = 'COMPLETED'\s+\)`

// actionPrefix matches an audit action by its leading event code.
type actionPrefix string

func (p actionPrefix) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, string(p)+": ")
}

func newBookingRepo(t *testing.T) (*postgres.BookingRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return postgres.NewBookingRepository(db), mock
}

func lockedRow(status domain.BookingStatus, userID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "schedule_id", "from_station_id", "to_station_id", "status", "total_amount", "pnr", "created_at"}).
		AddRow(userID.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(), string(status), 450.0, "PNRX234567", at.Add(-time.Hour))
}

func returningRow(userID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "schedule_id", "from_station_id", "to_station_id", "total_amount", "pnr", "created_at"}).
		AddRow(userID.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(), 450.0, "PNRX234567", at.Add(-time.Hour))
}

func TestCreate_InsertsEverythingInOneTransaction(t *testing.T) {
	repo, mock := newBookingRepo(t)

	b := &domain.Booking{
		ID: uuid.New(), UserID: uuid.New(), ScheduleID: uuid.New(),
		FromStationID: uuid.New(), ToStationID: uuid.New(),
		Status: domain.BookingPending, TotalAmount: 625, PNR: "ABCD234567",
		CreatedAt: at, UpdatedAt: at,
	}
	seat := domain.BookedSeat{ID: uuid.New(), BookingID: b.ID, ScheduleID: b.ScheduleID, SeatID: uuid.New()}
	b.Seats = []domain.BookedSeat{seat}
	b.Passengers = []domain.BookedPassenger{{ID: uuid.New(), BookingID: b.ID, Name: "Asha", Age: 31, Gender: "F", SeatID: seat.SeatID}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserID, b.ScheduleID, b.FromStationID, b.ToStationID, domain.BookingPending, 625.0, "ABCD234567", at, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM seats se\s+JOIN coaches c ON c.id = se.coach_id\s+JOIN schedules s ON s.train_id = c.train_id\s+WHERE se.id = \$1 AND s.id = \$2`).
		WithArgs(seat.SeatID, b.ScheduleID).
		WillReturnRows(seatFound())
	mock.ExpectExec("INSERT INTO booked_seats").
		WithArgs(seat.ID, b.ID, b.ScheduleID, seat.SeatID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booked_passengers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), b.UserID, actionPrefix(domain.AuditBookingCreated), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), b, domain.AuditLog{
		ID: uuid.New(), UserID: b.UserID, Action: domain.AuditAction(domain.AuditBookingCreated, "booking %s", b.ID), CreatedAt: at,
	})

	assert.NoError(t, err)
}

func TestCreate_SeatAlreadyBooked_RollsBack(t *testing.T) {
	repo, mock := newBookingRepo(t)

	b := &domain.Booking{ID: uuid.New(), Status: domain.BookingPending, Seats: []domain.BookedSeat{{ID: uuid.New(), SeatID: uuid.New()}}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM seats se").WillReturnRows(seatFound())
	mock.ExpectExec("INSERT INTO booked_seats").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), b, domain.AuditLog{})

	assert.ErrorIs(t, err, domain.ErrSeatTaken)
}

func seatFound() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"?column?"}).AddRow(1)
}

func TestCreate_SeatNotOnScheduleTrain_RollsBack(t *testing.T) {
	repo, mock := newBookingRepo(t)

	schedule, seat := uuid.New(), uuid.New()
	b := &domain.Booking{ID: uuid.New(), ScheduleID: schedule, Status: domain.BookingPending,
		Seats: []domain.BookedSeat{{ID: uuid.New(), ScheduleID: schedule, SeatID: seat}}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM seats se").WithArgs(seat, schedule).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), b, domain.AuditLog{})

	assert.True(t, domain.IsNotFound(err), "got %v", err)
	assert.Contains(t, err.Error(), seat.String())
}

func TestCreate_SeatForeignKeyViolation_IsNotFound(t *testing.T) {
	repo, mock := newBookingRepo(t)

	b := &domain.Booking{ID: uuid.New(), Status: domain.BookingPending, Seats: []domain.BookedSeat{{ID: uuid.New(), SeatID: uuid.New()}}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM seats se").WillReturnRows(seatFound())
	mock.ExpectExec("INSERT INTO booked_seats").WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), b, domain.AuditLog{})

	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestConfirm_UpdatesOnlyPendingBooking(t *testing.T) {
	repo, mock := newBookingRepo(t)

	id, user := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE bookings\s+SET status = \$1, updated_at = \$2\s+WHERE id = \$3 AND status = \$4`).
		WithArgs(domain.BookingConfirmed, at, id, domain.BookingPending).
		WillReturnRows(returningRow(user))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), user, actionPrefix(domain.AuditBookingConfirmed), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Confirm(context.Background(), domain.TransitionCommand{BookingID: id, ActorID: user, At: at})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, user, b.UserID)
	assert.Equal(t, "PNRX234567", b.PNR)
}

func TestConfirm_NoPendingRow_IsConflict(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE bookings").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, err := repo.Confirm(context.Background(), domain.TransitionCommand{BookingID: uuid.New(), At: at})

	assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)
}

func TestCancel_ConfirmedBookingWithPayment(t *testing.T) {
	repo, mock := newBookingRepo(t)

	id, user, payment := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(id).WillReturnRows(lockedRow(domain.BookingConfirmed, user))
	mock.ExpectExec(`UPDATE bookings SET status = \$1`).
		WithArgs(domain.BookingCancelled, at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_seats").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM booked_passengers").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("FROM payments").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).AddRow(payment.String(), 450.0))
	mock.ExpectExec("INSERT INTO refunds").
		WithArgs(sqlmock.AnyArg(), payment, 450.0, domain.RefundRequested, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), user, actionPrefix(domain.AuditBookingCancelled), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, refund, err := repo.Cancel(context.Background(), domain.TransitionCommand{BookingID: id, ActorID: user, Reason: "plans changed", At: at})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	require.NotNil(t, refund)
	assert.Equal(t, payment, refund.PaymentID)
	assert.Equal(t, 450.0, refund.Amount)
	assert.Equal(t, domain.RefundRequested, refund.Status)
}

func TestCancel_PendingWithoutPayment_NoRefund(t *testing.T) {
	repo, mock := newBookingRepo(t)

	id, user := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(lockedRow(domain.BookingPending, user))
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_passengers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM payments").WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}))
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, refund, err := repo.Cancel(context.Background(), domain.TransitionCommand{BookingID: id, ActorID: user, At: at})

	require.NoError(t, err)
	assert.Nil(t, refund)
	assert.Equal(t, domain.BookingCancelled, b.Status)
}

func TestCancel_RefundAlreadyExists_RollsBack(t *testing.T) {
	repo, mock := newBookingRepo(t)

	id, user := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(lockedRow(domain.BookingConfirmed, user))
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_passengers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM payments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).AddRow(uuid.NewString(), 450.0))
	mock.ExpectExec("INSERT INTO refunds").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := repo.Cancel(context.Background(), domain.TransitionCommand{BookingID: id, ActorID: user, At: at})

	assert.ErrorIs(t, err, domain.ErrRefundExists)
}

func TestCancel_AuditFailure_RollsBackEverything(t *testing.T) {
	repo, mock := newBookingRepo(t)

	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(lockedRow(domain.BookingPending, user))
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_passengers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM payments").WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}))
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, _, err := repo.Cancel(context.Background(), domain.TransitionCommand{BookingID: uuid.New(), ActorID: user, At: at})

	assert.ErrorContains(t, err, "disk full")
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(lockedRow(domain.BookingCancelled, uuid.New()))
	mock.ExpectRollback()

	_, _, err := repo.Cancel(context.Background(), domain.TransitionCommand{BookingID: uuid.New(), At: at})

	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
}

func TestCancel_UnknownBooking(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, _, err := repo.Cancel(context.Background(), domain.TransitionCommand{BookingID: uuid.New(), At: at})

	assert.True(t, domain.IsNotFound(err))
}

func TestListExpirable_PassesCutoffAndLimit(t *testing.T) {
	repo, mock := newBookingRepo(t)

	cutoff := at.Add(-10 * time.Minute)
	id, user := uuid.New(), uuid.New()

	mock.ExpectQuery(`WHERE b.status = 'PENDING'\s+AND b.created_at < \$1\s+` + completedPaymentGuard).
		WithArgs(cutoff, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "pnr", "created_at"}).
			AddRow(id.String(), user.String(), "OLD2345678", at.Add(-time.Hour)))

	got, err := repo.ListExpirable(context.Background(), cutoff, 100)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, domain.BookingPending, got[0].Status)
}

func TestExpire_CancelsUnpaidPendingBooking(t *testing.T) {
	repo, mock := newBookingRepo(t)

	id, user := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE bookings b\s+SET status = 'CANCELLED', updated_at = \$1\s+WHERE b.id = \$2\s+AND b.status = 'PENDING'\s+` + completedPaymentGuard).
		WithArgs(at, id).
		WillReturnRows(returningRow(user))
	mock.ExpectExec("DELETE FROM booked_seats").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booked_passengers").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), user, actionPrefix(domain.AuditBookingAutoExpired), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Expire(context.Background(), domain.TransitionCommand{BookingID: id, ActorID: user, Reason: "no completed payment within 10m0s", At: at})

	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, domain.BookingCancelled, b.Status)
}

func TestExpire_PaidBookingIsSkipped(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE bookings b[\s\S]+AND b.status = 'PENDING'\s+` + completedPaymentGuard).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	b, err := repo.Expire(context.Background(), domain.TransitionCommand{BookingID: uuid.New(), At: at})

	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestGetByID_LoadsSeatsAndPassengers(t *testing.T) {
	repo, mock := newBookingRepo(t)

	id, user, seat := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery("FROM bookings").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "schedule_id", "from_station_id", "to_station_id", "status", "total_amount", "pnr", "created_at", "updated_at"}).
			AddRow(id.String(), user.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(), "PENDING", 625.0, "ABCD234567", at, at))
	mock.ExpectQuery("FROM booked_seats").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "schedule_id", "seat_id"}).AddRow(uuid.NewString(), uuid.NewString(), seat.String()))
	mock.ExpectQuery("FROM booked_passengers").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age", "gender", "seat_id"}).AddRow(uuid.NewString(), "Asha", 31, "F", seat.String()))

	b, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	require.Len(t, b.Seats, 1)
	assert.Equal(t, seat, b.Seats[0].SeatID)
	require.Len(t, b.Passengers, 1)
	assert.Equal(t, "Asha", b.Passengers[0].Name)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.True(t, domain.IsNotFound(err))
}
