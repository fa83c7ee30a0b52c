package bookingRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"studiobook/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(date string) *models.Booking {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Booking{
		ID:       uuid.NewString(),
		Customer: models.Customer{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "07700900123"},
		Schedule: models.Schedule{Date: date, Time: "14:00"},
		Services: []models.ServiceSnapshot{{
			Key:          "recording/studio-hour",
			Name:         "Studio Recording",
			Unit:         "per hour",
			ModifierKind: models.ModifierHours,
			UnitPrice:    decimal.RequireFromString("45.50"),
			Multiplier:   4,
			LineTotal:    decimal.RequireFromString("182"),
		}},
		TotalAmount:   decimal.RequireFromString("182"),
		DepositAmount: decimal.RequireFromString("182"),
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newIntent(bookingID string, kind models.TemplateKind) models.NotificationIntent {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.NotificationIntent{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		RecipientRole: models.RecipientCustomer,
		TemplateKind:  kind,
		Payload:       map[string]string{"customerName": "Ada Lovelace"},
		Status:        models.IntentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// runStoreContract exercises the behaviour both backends must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and get round trip", func(t *testing.T) {
		store := newStore(t)
		b := newBooking("2030-01-10")
		require.NoError(t, store.Create(ctx, b, []models.NotificationIntent{newIntent(b.ID, models.TemplateBookingReceived)}))

		got, err := store.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Customer, got.Customer)
		assert.True(t, got.TotalAmount.Equal(b.TotalAmount))
		require.Len(t, got.Services, 1)
		assert.True(t, got.Services[0].UnitPrice.Equal(decimal.RequireFromString("45.5")))
		assert.Equal(t, models.BookingStatusPending, got.Status)

		intents, err := store.ListByBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, intents, 1)
	})

	t.Run("get unknown booking", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update status is compare and set", func(t *testing.T) {
		store := newStore(t)
		b := newBooking("2030-01-10")
		require.NoError(t, store.Create(ctx, b, nil))

		change := models.StatusChange{
			From:           models.BookingStatusPending,
			To:             models.BookingStatusConfirmed,
			AdminConfirmed: true,
			At:             time.Now().UTC().Truncate(time.Millisecond),
		}
		updated, err := store.UpdateStatus(ctx, b.ID, 0, change,
			[]models.NotificationIntent{newIntent(b.ID, models.TemplateBookingConfirmed)})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
		assert.True(t, updated.AdminConfirmed)
		assert.Equal(t, int64(1), updated.Version)

		_, err = store.UpdateStatus(ctx, b.ID, 0, change, nil)
		assert.ErrorIs(t, err, ErrVersionConflict)

		_, err = store.UpdateStatus(ctx, "missing", 0, change, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent updates have one winner", func(t *testing.T) {
		store := newStore(t)
		b := newBooking("2030-01-10")
		require.NoError(t, store.Create(ctx, b, nil))

		targets := []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusCancelled}
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for _, target := range targets {
			wg.Add(1)
			go func(target models.BookingStatus) {
				defer wg.Done()
				_, err := store.UpdateStatus(ctx, b.ID, 0, models.StatusChange{
					From: models.BookingStatusPending, To: target, At: time.Now().UTC(),
				}, nil)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}(target)
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("mark paid is idempotent per event", func(t *testing.T) {
		store := newStore(t)
		b := newBooking("2030-01-10")
		require.NoError(t, store.Create(ctx, b, nil))
		paidAt := time.Now().UTC().Truncate(time.Millisecond)

		got, applied, err := store.MarkPaid(ctx, b.ID, "evt_1", paidAt,
			[]models.NotificationIntent{newIntent(b.ID, models.TemplateDepositReceived)})
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
		require.NotNil(t, got.PaidAt)

		got, applied, err = store.MarkPaid(ctx, b.ID, "evt_1", paidAt,
			[]models.NotificationIntent{newIntent(b.ID, models.TemplateDepositReceived)})
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)

		// A different event for an already paid booking is recorded but changes nothing.
		_, applied, err = store.MarkPaid(ctx, b.ID, "evt_2", paidAt,
			[]models.NotificationIntent{newIntent(b.ID, models.TemplateDepositReceived)})
		require.NoError(t, err)
		assert.False(t, applied)

		intents, err := store.ListByBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, intents, 1)
	})

	t.Run("mark paid unknown booking", func(t *testing.T) {
		store := newStore(t)
		_, _, err := store.MarkPaid(ctx, "missing", "evt_x", time.Now(), nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("checkout session lookup", func(t *testing.T) {
		store := newStore(t)
		b := newBooking("2030-01-10")
		require.NoError(t, store.Create(ctx, b, nil))
		require.NoError(t, store.SetCheckoutSession(ctx, b.ID, "cs_test_123"))

		got, err := store.GetByCheckoutSessionID(ctx, "cs_test_123")
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)

		_, err = store.GetByCheckoutSessionID(ctx, "cs_other")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.SetCheckoutSession(ctx, "missing", "cs"), ErrNotFound)
	})

	t.Run("list filters and pages", func(t *testing.T) {
		store := newStore(t)
		for i, date := range []string{"2030-01-01", "2030-01-05", "2030-01-09"} {
			b := newBooking(date)
			b.CreatedAt = b.CreatedAt.Add(time.Duration(i) * time.Second)
			require.NoError(t, store.Create(ctx, b, nil))
		}

		all, total, err := store.List(ctx, models.BookingFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, all, 3)
		assert.Equal(t, "2030-01-09", all[0].Schedule.Date)

		ranged, total, err := store.List(ctx, models.BookingFilter{From: "2030-01-02", To: "2030-01-09"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, ranged, 2)

		page, total, err := store.List(ctx, models.BookingFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 1)
		assert.Equal(t, "2030-01-05", page[0].Schedule.Date)

		none, _, err := store.List(ctx, models.BookingFilter{Status: models.BookingStatusCompleted})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("outbox lifecycle", func(t *testing.T) {
		store := newStore(t)
		b := newBooking("2030-01-10")
		first := newIntent(b.ID, models.TemplateBookingReceived)
		second := newIntent(b.ID, models.TemplateBookingSubmitted)
		second.RecipientRole = models.RecipientAdmin
		require.NoError(t, store.Create(ctx, b, []models.NotificationIntent{first, second}))

		pending, err := store.FetchPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)

		require.NoError(t, store.MarkDispatched(ctx, first.ID))
		require.NoError(t, store.MarkDelivered(ctx, first.ID))
		// Dispatch after delivery must not regress the status.
		require.NoError(t, store.MarkDispatched(ctx, first.ID))
		require.NoError(t, store.MarkFailed(ctx, second.ID, "smtp: 550 mailbox unavailable"))

		got, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.IntentDelivered, got.Status)

		got, err = store.Get(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, models.IntentFailed, got.Status)
		assert.Equal(t, "smtp: 550 mailbox unavailable", got.Error)

		pending, err = store.FetchPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)

		_, err = store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrIntentNotFound)
	})
}
