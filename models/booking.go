package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the admin-driven lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// ParseBookingStatus accepts the canonical upper-case names only.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return BookingStatus(s), true
	}
	return "", false
}

// PaymentStatus is driven by the payment provider, independently of BookingStatus.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// Customer is captured at booking time and never edited afterwards.
type Customer struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=6,max=32"`
}

// Schedule is the requested session slot. Date is "2006-01-02", Time is "15:04".
type Schedule struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

// ServiceSnapshot freezes a quote line at creation time so later catalog edits
// do not rewrite history.
type ServiceSnapshot struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	ModifierKind ModifierKind    `json:"modifierKind"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Multiplier   int             `json:"multiplier"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

// Booking is the persistent record of a studio session request.
type Booking struct {
	ID                string            `json:"id"`
	Customer          Customer          `json:"customer"`
	Schedule          Schedule          `json:"schedule"`
	Services          []ServiceSnapshot `json:"services"`
	TotalAmount       decimal.Decimal   `json:"totalAmount"`
	DepositAmount     decimal.Decimal   `json:"depositAmount"`
	Notes             string            `json:"notes,omitempty"`
	Status            BookingStatus     `json:"status"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	AdminConfirmed    bool              `json:"adminConfirmed"`
	CheckoutSessionID string            `json:"checkoutSessionId,omitempty"`
	PaidAt            *time.Time        `json:"paidAt,omitempty"`
	Version           int64             `json:"version"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// StatusChange is what a repository applies when a transition is accepted.
type StatusChange struct {
	From           BookingStatus
	To             BookingStatus
	AdminConfirmed bool
	At             time.Time
}

// BookingFilter narrows the admin dashboard listing.
type BookingFilter struct {
	Status        BookingStatus
	PaymentStatus PaymentStatus
	From          string // inclusive schedule date
	To            string // inclusive schedule date
	Limit         int
	Offset        int
}

// BookingReceipt is what the public intake endpoint returns.
type BookingReceipt struct {
	BookingID     string          `json:"bookingId"`
	Status        BookingStatus   `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
	Currency      string          `json:"currency"`
}
