package models

import "time"

// RecipientRole says who a notification is addressed to.
type RecipientRole string

const (
	RecipientCustomer RecipientRole = "customer"
	RecipientAdmin    RecipientRole = "admin"
)

// TemplateKind names the message a notification renders.
type TemplateKind string

const (
	TemplateBookingReceived       TemplateKind = "booking_received"
	TemplateBookingSubmitted      TemplateKind = "booking_submitted"
	TemplateBookingConfirmed      TemplateKind = "booking_confirmed"
	TemplateBookingConfirmedAlert TemplateKind = "booking_confirmed_alert"
	TemplateSessionCompleted      TemplateKind = "session_completed"
	TemplateBookingCancelled      TemplateKind = "booking_cancelled"
	TemplateDepositReceived       TemplateKind = "deposit_received"
)

// IntentStatus tracks an outbox row through delivery.
type IntentStatus string

const (
	IntentPending    IntentStatus = "pending"
	IntentDispatched IntentStatus = "dispatched"
	IntentDelivered  IntentStatus = "delivered"
	IntentFailed     IntentStatus = "failed"
)

// NotificationIntent is an outbox entry written with the state change that
// caused it. Delivery is someone else's job.
type NotificationIntent struct {
	ID            string            `bson:"id" json:"id"`
	BookingID     string            `bson:"bookingId" json:"bookingId"`
	RecipientRole RecipientRole     `bson:"recipientRole" json:"recipientRole"`
	TemplateKind  TemplateKind      `bson:"templateKind" json:"templateKind"`
	Payload       map[string]string `bson:"payload" json:"payload"`
	Status        IntentStatus      `bson:"status" json:"status"`
	Error         string            `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// NotificationPayload is the asynq task body.
type NotificationPayload struct {
	IntentID      string            `json:"intentId"`
	BookingID     string            `json:"bookingId"`
	RecipientRole RecipientRole     `json:"recipientRole"`
	TemplateKind  TemplateKind      `json:"templateKind"`
	Data          map[string]string `json:"data"`
}

// Message is a rendered notification ready for a transport.
type Message struct {
	To      string
	Subject string
	Body    string
}
