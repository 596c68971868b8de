package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment is written by the payment collaborator; this core only reads it.
type Payment struct {
	ID        uuid.UUID     `json:"id"`
	BookingID uuid.UUID     `json:"booking_id"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
}

type RefundStatus string

const (
	RefundRequested RefundStatus = "REQUESTED"
	RefundProcessed RefundStatus = "PROCESSED"
)

type Refund struct {
	ID        uuid.UUID    `json:"id"`
	PaymentID uuid.UUID    `json:"payment_id"`
	Amount    float64      `json:"amount"`
	Status    RefundStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// Audit event codes. Entries are stored as "<CODE>: <details>".
const (
	AuditBookingCreated     = "BOOKING_CREATED"
	AuditBookingConfirmed   = "BOOKING_CONFIRMED"
	AuditBookingCancelled   = "BOOKING_CANCELLED"
	AuditBookingAutoExpired = "BOOKING_AUTO_EXPIRED"
)

type AuditLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

func AuditAction(code, format string, args ...any) string {
	return code + ": " + fmt.Sprintf(format, args...)
}

func CancellationAuditAction(b *Booking, refund *Refund, reason string) string {
	details := fmt.Sprintf("booking %s (PNR %s) cancelled by user", b.ID, b.PNR)
	if reason != "" {
		details += ", reason: " + reason
	}
	if refund != nil {
		details += fmt.Sprintf(", refund %.2f requested", refund.Amount)
	}
	return AuditAction(AuditBookingCancelled, "%s", details)
}

func ExpiryAuditAction(b *Booking, reason string) string {
	return AuditAction(AuditBookingAutoExpired, "booking %s (PNR %s) cancelled automatically, %s", b.ID, b.PNR, reason)
}
