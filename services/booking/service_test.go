package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "studiobook/database/repository/booking"
	"studiobook/models"
	"studiobook/services/catalog"
	"studiobook/services/quote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	london, _ = time.LoadLocation("Europe/London")
	fixedNow  = time.Date(2030, time.March, 10, 9, 30, 0, 0, time.UTC)
)

type fakeGateway struct {
	mu       sync.Mutex
	requests []models.CheckoutRequest
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &models.CheckoutSession{ID: "cs_test_" + req.BookingID, URL: "https://checkout.stripe.test/" + req.BookingID}, nil
}

type fixture struct {
	svc     *DefaultBookingService
	store   *bookingRepo.MemoryStore
	builder *quote.Builder
	gateway *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.New([]models.ServiceCategory{
		{ID: "recording", Name: "Recording", Items: []models.ServiceLineItem{
			{ID: "studio", Name: "Studio Recording", UnitPrice: decimal.NewFromInt(300), Unit: "per hour", ModifierKind: models.ModifierHours},
			{ID: "podcast", Name: "Podcast", UnitPrice: decimal.NewFromInt(60), Unit: "per hour", ModifierKind: models.ModifierHours},
		}},
	})
	require.NoError(t, err)

	store := bookingRepo.NewMemoryStore()
	builder := quote.NewBuilder(cat)
	gateway := &fakeGateway{}
	svc := NewBookingService(store, builder, gateway, Settings{
		Currency:   "gbp",
		Location:   london,
		AdminEmail: "studio@example.com",
	}, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
	return &fixture{svc: svc, store: store, builder: builder, gateway: gateway}
}

func (f *fixture) quote(t *testing.T, key string, multiplier int) models.Quote {
	t.Helper()
	q, err := f.builder.Toggle(models.NewQuote("q"), key)
	require.NoError(t, err)
	q, err = f.builder.SetMultiplier(q, key, multiplier)
	require.NoError(t, err)
	return q
}

func (f *fixture) create(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), validInput(f.quote(t, "recording/studio", 2)))
	require.NoError(t, err)
	return b
}

func validInput(q models.Quote) CreateInput {
	return CreateInput{
		Quote:    q,
		Customer: models.Customer{Name: "Nina Simone", Email: "nina@example.com", Phone: "+44 7700 900123"},
		Schedule: models.Schedule{Date: "2030-03-12", Time: "14:00"},
		Notes:    "Bringing my own guitar.",
	}
}

func kinds(intents []models.NotificationIntent) []models.TemplateKind {
	out := make([]models.TemplateKind, 0, len(intents))
	for _, in := range intents {
		out = append(out, in.TemplateKind)
	}
	return out
}

func TestCreate_SnapshotsQuote(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, b.PaymentStatus)
	assert.False(t, b.AdminConfirmed)
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, b.DepositAmount.Equal(decimal.NewFromInt(300)))
	require.Len(t, b.Services, 1)
	assert.Equal(t, 2, b.Services[0].Multiplier)
	assert.Equal(t, fixedNow, b.CreatedAt)

	intents, err := f.svc.Notifications(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.TemplateKind{models.TemplateBookingReceived, models.TemplateBookingSubmitted}, kinds(intents))
	assert.Equal(t, "nina@example.com", intents[0].Payload[PayloadTo])
	assert.Equal(t, "studio@example.com", intents[1].Payload[PayloadTo])
	assert.Equal(t, "£600.00", intents[0].Payload[PayloadTotal])
}

func TestCreate_RejectsOversizedMultiplier(t *testing.T) {
	f := newFixture(t)
	q := f.quote(t, "recording/studio", 1)
	q.Selections["recording/studio"] = models.SelectedService{Key: "recording/studio", Multiplier: 1229782938247304}

	_, err := f.svc.Create(context.Background(), validInput(q))
	assert.True(t, errors.Is(err, models.ErrValidation))

	bookings, total, err := f.store.List(context.Background(), models.BookingFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, bookings)
	assert.Empty(t, f.gateway.requests)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	q := f.quote(t, "recording/podcast", 1)

	cases := map[string]func(in *CreateInput){
		"empty quote":    func(in *CreateInput) { in.Quote = models.NewQuote("q") },
		"missing name":   func(in *CreateInput) { in.Customer.Name = "  " },
		"bad email":      func(in *CreateInput) { in.Customer.Email = "not-an-email" },
		"missing phone":  func(in *CreateInput) { in.Customer.Phone = "" },
		"malformed date": func(in *CreateInput) { in.Schedule.Date = "12/03/2030" },
		"malformed time": func(in *CreateInput) { in.Schedule.Time = "2pm" },
		"past date":      func(in *CreateInput) { in.Schedule.Date = "2030-03-09" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput(q)
			mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			assert.True(t, errors.Is(err, models.ErrValidation), "got %v", err)
		})
	}

	list, total, err := f.svc.List(context.Background(), models.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestCreate_SameDayIsAllowed(t *testing.T) {
	f := newFixture(t)
	in := validInput(f.quote(t, "recording/podcast", 1))
	in.Schedule.Date = "2030-03-10"

	_, err := f.svc.Create(context.Background(), in)
	assert.NoError(t, err)
}

func TestCreate_UsesStudioTimeZone(t *testing.T) {
	f := newFixture(t)
	// 23:30 UTC on 30 June is already 1 July in London.
	f.svc.WithClock(func() time.Time { return time.Date(2030, time.June, 30, 23, 30, 0, 0, time.UTC) })
	in := validInput(f.quote(t, "recording/podcast", 1))
	in.Schedule.Date = "2030-06-30"

	_, err := f.svc.Create(context.Background(), in)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestStateMachineCompleteness(t *testing.T) {
	statuses := []models.BookingStatus{
		models.BookingStatusPending, models.BookingStatusConfirmed,
		models.BookingStatusCompleted, models.BookingStatusCancelled,
	}
	permitted := map[[2]models.BookingStatus]bool{
		{models.BookingStatusPending, models.BookingStatusConfirmed}:   true,
		{models.BookingStatusPending, models.BookingStatusCancelled}:   true,
		{models.BookingStatusConfirmed, models.BookingStatusCompleted}: true,
		{models.BookingStatusConfirmed, models.BookingStatusCancelled}: true,
	}
	// Paths from PENDING that reach each starting state.
	reach := map[models.BookingStatus][]models.BookingStatus{
		models.BookingStatusPending:   nil,
		models.BookingStatusConfirmed: {models.BookingStatusConfirmed},
		models.BookingStatusCompleted: {models.BookingStatusConfirmed, models.BookingStatusCompleted},
		models.BookingStatusCancelled: {models.BookingStatusCancelled},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				ctx := context.Background()
				f := newFixture(t)
				b := f.create(t)
				for _, step := range reach[from] {
					_, err := f.svc.ApplyStatusTransition(ctx, b.ID, step)
					require.NoError(t, err)
				}

				updated, err := f.svc.ApplyStatusTransition(ctx, b.ID, to)
				if permitted[[2]models.BookingStatus{from, to}] {
					require.NoError(t, err)
					assert.Equal(t, to, updated.Status)
					assert.True(t, CanTransition(from, to))
					assert.Contains(t, AllowedTargets(from), to)
					return
				}
				assert.True(t, errors.Is(err, models.ErrInvalidTransition), "got %v", err)
				assert.False(t, CanTransition(from, to))
				assert.NotContains(t, AllowedTargets(from), to)
				stored, err := f.svc.Get(ctx, b.ID)
				require.NoError(t, err)
				assert.Equal(t, from, stored.Status)
			})
		}
	}
}

func TestAllowedTargets_TerminalStatesAreEmpty(t *testing.T) {
	for _, s := range []models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled} {
		targets := AllowedTargets(s)
		assert.NotNil(t, targets)
		assert.Empty(t, targets)
	}

	targets := AllowedTargets(models.BookingStatusPending)
	targets[0] = models.BookingStatusCompleted
	assert.True(t, CanTransition(models.BookingStatusPending, models.BookingStatusConfirmed))
	assert.Equal(t, models.BookingStatusConfirmed, AllowedTargets(models.BookingStatusPending)[0])
}

func TestApplyStatusTransition_UnknownBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ApplyStatusTransition(context.Background(), "missing", models.BookingStatusConfirmed)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestApplyStatusTransition_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	_, err := f.svc.ApplyStatusTransition(context.Background(), b.ID, "ARCHIVED")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestApplyStatusTransition_AdminConfirmedSticks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	confirmed, err := f.svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, confirmed.AdminConfirmed)

	cancelled, err := f.svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.True(t, cancelled.AdminConfirmed)
	assert.Equal(t, fixedNow, cancelled.UpdatedAt)
}

func TestApplyStatusTransition_ConcurrentAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	targets := []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target models.BookingStatus) {
			defer wg.Done()
			_, errs[i] = f.svc.ApplyStatusTransition(ctx, b.ID, target)
		}(i, target)
	}
	wg.Wait()

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	// Whichever lands first, the other is re-validated against it: CONFIRMED
	// then CANCELLED is legal, CANCELLED then CONFIRMED is not.
	switch stored.Status {
	case models.BookingStatusCancelled:
		for _, e := range errs {
			if e != nil {
				assert.True(t, errors.Is(e, models.ErrInvalidTransition))
			}
		}
	default:
		t.Fatalf("unexpected final status %s", stored.Status)
	}
}

type conflictingStore struct {
	*bookingRepo.MemoryStore
	conflicts int
	calls     int
}

func (s *conflictingStore) UpdateStatus(ctx context.Context, id string, v int64, change models.StatusChange, intents []models.NotificationIntent) (*models.Booking, error) {
	s.calls++
	if s.calls <= s.conflicts {
		return nil, bookingRepo.ErrVersionConflict
	}
	return s.MemoryStore.UpdateStatus(ctx, id, v, change, intents)
}

func TestApplyStatusTransition_RetriesThenConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	store := &conflictingStore{MemoryStore: f.store, conflicts: 2}
	svc := NewBookingService(store, f.builder, nil, Settings{Currency: "gbp"}, zap.NewNop())
	updated, err := svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
	assert.Equal(t, 3, store.calls)

	store = &conflictingStore{MemoryStore: f.store, conflicts: maxTransitionAttempts}
	svc = NewBookingService(store, f.builder, nil, Settings{Currency: "gbp"}, zap.NewNop())
	_, err = svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusCompleted)
	assert.True(t, errors.Is(err, models.ErrConflict))

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
}

func TestMarkPaid_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	first, err := f.svc.MarkPaid(ctx, b.ID, "evt_123")
	require.NoError(t, err)
	second, err := f.svc.MarkPaid(ctx, b.ID, "evt_123")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, first.PaymentStatus)
	assert.Equal(t, first.Version, second.Version)

	intents, err := f.svc.Notifications(ctx, b.ID)
	require.NoError(t, err)
	deposit := 0
	for _, in := range intents {
		if in.TemplateKind == models.TemplateDepositReceived {
			deposit++
		}
	}
	assert.Equal(t, 1, deposit)
}

func TestMarkPaid_Errors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MarkPaid(context.Background(), "missing", "evt_1")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	b := f.create(t)
	_, err = f.svc.MarkPaid(context.Background(), b.ID, " ")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestHandleCheckoutCompleted_ResolvesBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	byRef := f.create(t)
	got, err := f.svc.HandleCheckoutCompleted(ctx, models.CheckoutCompleted{EventID: "evt_a", BookingID: byRef.ID, PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)

	bySession := f.create(t)
	session, err := f.svc.StartCheckout(ctx, bySession.ID)
	require.NoError(t, err)
	got, err = f.svc.HandleCheckoutCompleted(ctx, models.CheckoutCompleted{EventID: "evt_b", CheckoutSessionID: session.ID, PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, bySession.ID, got.ID)

	_, err = f.svc.HandleCheckoutCompleted(ctx, models.CheckoutCompleted{EventID: "evt_c", CheckoutSessionID: "cs_unknown"})
	assert.True(t, errors.Is(err, models.ErrNotFound))

	unpaid := f.create(t)
	got, err = f.svc.HandleCheckoutCompleted(ctx, models.CheckoutCompleted{EventID: "evt_d", BookingID: unpaid.ID, PaymentStatus: "unpaid"})
	require.NoError(t, err)
	assert.Nil(t, got)
	stored, err := f.svc.Get(ctx, unpaid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, stored.PaymentStatus)
}

func TestStartCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	session, err := f.svc.StartCheckout(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_"+b.ID, session.ID)
	require.Len(t, f.gateway.requests, 1)
	assert.True(t, f.gateway.requests[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "nina@example.com", f.gateway.requests[0].CustomerEmail)

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.CheckoutSessionID)

	_, err = f.svc.MarkPaid(ctx, b.ID, "evt_paid")
	require.NoError(t, err)
	_, err = f.svc.StartCheckout(ctx, b.ID)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestStartCheckout_WithoutGateway(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)
	svc := NewBookingService(f.store, f.builder, nil, Settings{Currency: "gbp"}, zap.NewNop())
	_, err := svc.StartCheckout(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b := f.create(t)
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, b.DepositAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, b.PaymentStatus)

	require.NoError(t, f.svc.OnCheckoutCompleted(ctx, b.ID, "evt_e2e"))
	paid, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, models.BookingStatusPending, paid.Status)

	before, err := f.svc.Notifications(ctx, b.ID)
	require.NoError(t, err)

	confirmed, err := f.svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.AdminConfirmed)

	afterConfirm, err := f.svc.Notifications(ctx, b.ID)
	require.NoError(t, err)
	added := afterConfirm[len(before):]
	require.Len(t, added, 2)
	assert.Equal(t, models.RecipientCustomer, added[0].RecipientRole)
	assert.Equal(t, models.RecipientAdmin, added[1].RecipientRole)

	completed, err := f.svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)

	afterComplete, err := f.svc.Notifications(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, afterComplete, len(afterConfirm)+1)
	assert.Equal(t, models.TemplateSessionCompleted, afterComplete[len(afterComplete)-1].TemplateKind)

	_, err = f.svc.ApplyStatusTransition(ctx, b.ID, models.BookingStatusCancelled)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
}

func TestList_RejectsBadFilters(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.List(context.Background(), models.BookingFilter{Status: "LOST"})
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, _, err = f.svc.List(context.Background(), models.BookingFilter{From: "yesterday"})
	assert.True(t, errors.Is(err, models.ErrValidation))
}
