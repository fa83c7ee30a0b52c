package booking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	bookingRepo "studiobook/database/repository/booking"
	"studiobook/models"
	"studiobook/services/quote"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTransitionAttempts = 3
	maxNotesLength        = 2000
)

// DefaultBookingService implements BookingService on a bookingRepo.Store.
type DefaultBookingService struct {
	store    bookingRepo.Store
	builder  *quote.Builder
	gateway  PaymentGateway
	settings Settings
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService wires the service. gateway may be nil when payments are
// not configured; StartCheckout then fails.
func NewBookingService(store bookingRepo.Store, builder *quote.Builder, gateway PaymentGateway, settings Settings, logger *zap.Logger) *DefaultBookingService {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &DefaultBookingService{
		store:    store,
		builder:  builder,
		gateway:  gateway,
		settings: settings,
		validate: v,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source; used by tests.
func (s *DefaultBookingService) WithClock(now func() time.Time) *DefaultBookingService {
	s.now = now
	return s
}

// Create validates the request, freezes the quote into a snapshot and stores a
// PENDING, UNPAID booking together with the intake notifications.
func (s *DefaultBookingService) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	if in.Quote.IsEmpty() {
		return nil, models.NewValidationError("quote has no selected services")
	}
	customer := models.Customer{
		Name:  strings.TrimSpace(in.Customer.Name),
		Email: strings.TrimSpace(in.Customer.Email),
		Phone: strings.TrimSpace(in.Customer.Phone),
	}
	schedule := models.Schedule{
		Date: strings.TrimSpace(in.Schedule.Date),
		Time: strings.TrimSpace(in.Schedule.Time),
	}
	if err := s.validateStruct("customer", customer); err != nil {
		return nil, err
	}
	if err := s.validateStruct("schedule", schedule); err != nil {
		return nil, err
	}
	if err := s.checkNotPast(schedule); err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(in.Notes)
	if len(notes) > maxNotesLength {
		return nil, models.NewValidationError("notes must be at most %d characters", maxNotesLength)
	}

	lines, totals, err := s.builder.Snapshot(in.Quote)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &models.Booking{
		ID:            uuid.NewString(),
		Customer:      customer,
		Schedule:      schedule,
		Services:      lines,
		TotalAmount:   totals.Subtotal,
		DepositAmount: totals.DepositDue,
		Notes:         notes,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	intents := s.intentsForCreate(b)
	if err := s.store.Create(ctx, b, intents); err != nil {
		s.logger.Error("Failed to create booking", zap.String("bookingID", b.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.Info("Booking created",
		zap.String("bookingID", b.ID),
		zap.String("date", b.Schedule.Date),
		zap.String("total", b.TotalAmount.StringFixed(2)),
		zap.Int("services", len(b.Services)),
	)
	return b, nil
}

func (s *DefaultBookingService) validateStruct(section string, v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError("%s: %v", section, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s.%s (%s)", section, fe.Field(), fe.Tag()))
	}
	return models.NewValidationError("invalid fields: %s", strings.Join(fields, ", "))
}

// checkNotPast rejects dates before today in the studio's time zone. Today is
// bookable.
func (s *DefaultBookingService) checkNotPast(schedule models.Schedule) error {
	date, err := time.ParseInLocation("2006-01-02", schedule.Date, s.settings.Location)
	if err != nil {
		return models.NewValidationError("schedule.date must be YYYY-MM-DD")
	}
	now := s.now().In(s.settings.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.settings.Location)
	if date.Before(today) {
		return models.NewValidationError("schedule.date %s is in the past", schedule.Date)
	}
	return nil
}

func (s *DefaultBookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return b, nil
}

func (s *DefaultBookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error) {
	if filter.Status != "" {
		if _, ok := models.ParseBookingStatus(string(filter.Status)); !ok {
			return nil, 0, models.NewValidationError("unknown status %q", filter.Status)
		}
	}
	switch filter.PaymentStatus {
	case "", models.PaymentStatusPaid, models.PaymentStatusUnpaid:
	default:
		return nil, 0, models.NewValidationError("unknown payment status %q", filter.PaymentStatus)
	}
	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, 0, models.NewValidationError("date filter %q must be YYYY-MM-DD", d)
		}
	}
	return s.store.List(ctx, filter)
}

// Notifications returns the outbox history for a booking.
func (s *DefaultBookingService) Notifications(ctx context.Context, id string) ([]models.NotificationIntent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListByBooking(ctx, id)
}

// translateRepoError maps storage sentinels onto domain errors.
func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, bookingRepo.ErrNotFound):
		return models.NewNotFoundError("booking", id)
	case errors.Is(err, bookingRepo.ErrVersionConflict):
		return models.NewConflictError(id)
	}
	return err
}
