package booking

import (
	"strings"

	"studiobook/models"
	"studiobook/utils"

	"github.com/google/uuid"
)

// Payload keys shared with the notification templates.
const (
	PayloadTo            = "to"
	PayloadBookingID     = "bookingId"
	PayloadCustomerName  = "customerName"
	PayloadCustomerEmail = "customerEmail"
	PayloadCustomerPhone = "customerPhone"
	PayloadDate          = "date"
	PayloadTime          = "time"
	PayloadServices      = "services"
	PayloadTotal         = "total"
	PayloadDeposit       = "deposit"
	PayloadStatus        = "status"
	PayloadNotes         = "notes"
)

func (s *DefaultBookingService) payloadFor(b *models.Booking, role models.RecipientRole) map[string]string {
	names := make([]string, 0, len(b.Services))
	for _, line := range b.Services {
		names = append(names, line.Name)
	}
	to := b.Customer.Email
	if role == models.RecipientAdmin {
		to = s.settings.AdminEmail
	}
	payload := map[string]string{
		PayloadTo:            to,
		PayloadBookingID:     b.ID,
		PayloadCustomerName:  b.Customer.Name,
		PayloadCustomerEmail: b.Customer.Email,
		PayloadCustomerPhone: b.Customer.Phone,
		PayloadDate:          b.Schedule.Date,
		PayloadTime:          b.Schedule.Time,
		PayloadServices:      strings.Join(names, ", "),
		PayloadTotal:         utils.FormatMoney(b.TotalAmount, s.settings.Currency),
		PayloadDeposit:       utils.FormatMoney(b.DepositAmount, s.settings.Currency),
		PayloadStatus:        string(b.Status),
	}
	if b.Notes != "" {
		payload[PayloadNotes] = b.Notes
	}
	return payload
}

func (s *DefaultBookingService) newIntent(b *models.Booking, role models.RecipientRole, kind models.TemplateKind) models.NotificationIntent {
	now := s.now()
	return models.NotificationIntent{
		ID:            uuid.NewString(),
		BookingID:     b.ID,
		RecipientRole: role,
		TemplateKind:  kind,
		Payload:       s.payloadFor(b, role),
		Status:        models.IntentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *DefaultBookingService) intentsForCreate(b *models.Booking) []models.NotificationIntent {
	return []models.NotificationIntent{
		s.newIntent(b, models.RecipientCustomer, models.TemplateBookingReceived),
		s.newIntent(b, models.RecipientAdmin, models.TemplateBookingSubmitted),
	}
}

// intentsForTransition renders payloads from the post-transition view of b.
func (s *DefaultBookingService) intentsForTransition(current *models.Booking, target models.BookingStatus) []models.NotificationIntent {
	next := *current
	next.Status = target

	switch target {
	case models.BookingStatusConfirmed:
		return []models.NotificationIntent{
			s.newIntent(&next, models.RecipientCustomer, models.TemplateBookingConfirmed),
			s.newIntent(&next, models.RecipientAdmin, models.TemplateBookingConfirmedAlert),
		}
	case models.BookingStatusCompleted:
		return []models.NotificationIntent{
			s.newIntent(&next, models.RecipientCustomer, models.TemplateSessionCompleted),
		}
	case models.BookingStatusCancelled:
		return []models.NotificationIntent{
			s.newIntent(&next, models.RecipientCustomer, models.TemplateBookingCancelled),
		}
	}
	return nil
}

func (s *DefaultBookingService) intentsForPayment(b *models.Booking) []models.NotificationIntent {
	return []models.NotificationIntent{
		s.newIntent(b, models.RecipientCustomer, models.TemplateDepositReceived),
	}
}
