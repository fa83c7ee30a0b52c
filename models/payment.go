package models

import "github.com/shopspring/decimal"

// CheckoutRequest describes a deposit payment to be collected for a booking.
type CheckoutRequest struct {
	BookingID     string
	CustomerEmail string
	Description   string
	Amount        decimal.Decimal
	Currency      string
}

// CheckoutSession is the provider-side session the customer is redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCompleted is a verified "checkout finished" event from the provider.
type CheckoutCompleted struct {
	EventID           string
	CheckoutSessionID string
	BookingID         string
	PaymentStatus     string
}
