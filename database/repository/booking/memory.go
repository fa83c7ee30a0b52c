package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"studiobook/models"
)

// MemoryStore is a process-local Store for development and tests. A single
// mutex gives every method the atomicity the Mongo transactions provide.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	events   map[string]string // eventID -> bookingID
	intents  []models.NotificationIntent
	index    map[string]int
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]models.Booking),
		events:   make(map[string]string),
		index:    make(map[string]int),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func cloneBooking(b models.Booking) models.Booking {
	b.Services = append([]models.ServiceSnapshot(nil), b.Services...)
	if b.PaidAt != nil {
		paid := *b.PaidAt
		b.PaidAt = &paid
	}
	return b
}

func cloneIntent(in models.NotificationIntent) models.NotificationIntent {
	payload := make(map[string]string, len(in.Payload))
	for k, v := range in.Payload {
		payload[k] = v
	}
	in.Payload = payload
	return in
}

func (s *MemoryStore) appendIntents(intents []models.NotificationIntent) {
	for _, in := range intents {
		s.index[in.ID] = len(s.intents)
		s.intents = append(s.intents, cloneIntent(in))
	}
}

func (s *MemoryStore) Create(_ context.Context, booking *models.Booking, intents []models.NotificationIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[booking.ID]; exists {
		return models.NewValidationError("booking %s already exists", booking.ID)
	}
	s.bookings[booking.ID] = cloneBooking(*booking)
	s.appendIntents(intents)
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryStore) GetByCheckoutSessionID(_ context.Context, sessionID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		return nil, ErrNotFound
	}
	for _, b := range s.bookings {
		if b.CheckoutSessionID == sessionID {
			out := cloneBooking(b)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Booking
	for _, b := range s.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && b.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.From != "" && b.Schedule.Date < filter.From {
			continue
		}
		if filter.To != "" && b.Schedule.Date > filter.To {
			continue
		}
		matched = append(matched, cloneBooking(b))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := min(max(filter.Offset, 0), len(matched))
	end := min(start+normalizeLimit(filter.Limit), len(matched))
	return matched[start:end], total, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, expectedVersion int64, change models.StatusChange, intents []models.NotificationIntent) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Version != expectedVersion || b.Status != change.From {
		return nil, ErrVersionConflict
	}
	b.Status = change.To
	if change.AdminConfirmed {
		b.AdminConfirmed = true
	}
	b.UpdatedAt = change.At
	b.Version++
	s.bookings[id] = b
	s.appendIntents(intents)

	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryStore) SetCheckoutSession(_ context.Context, id, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.CheckoutSessionID = sessionID
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return nil
}

func (s *MemoryStore) MarkPaid(_ context.Context, id, eventID string, paidAt time.Time, intents []models.NotificationIntent) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if _, seen := s.events[eventID]; seen {
		out := cloneBooking(b)
		return &out, false, nil
	}
	s.events[eventID] = id

	if b.PaymentStatus == models.PaymentStatusPaid {
		out := cloneBooking(b)
		return &out, false, nil
	}
	b.PaymentStatus = models.PaymentStatusPaid
	b.PaidAt = &paidAt
	b.UpdatedAt = paidAt
	b.Version++
	s.bookings[id] = b
	s.appendIntents(intents)

	out := cloneBooking(b)
	return &out, true, nil
}

func (s *MemoryStore) FetchPending(_ context.Context, limit int) ([]models.NotificationIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit = normalizeLimit(limit)
	var out []models.NotificationIntent
	for _, in := range s.intents {
		if in.Status == models.IntentPending {
			out = append(out, cloneIntent(in))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.NotificationIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	out := cloneIntent(s.intents[i])
	return &out, nil
}

func (s *MemoryStore) setIntentStatus(id string, from []models.IntentStatus, to models.IntentStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrIntentNotFound
	}
	if len(from) > 0 {
		allowed := false
		for _, st := range from {
			if s.intents[i].Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil
		}
	}
	s.intents[i].Status = to
	s.intents[i].UpdatedAt = s.now()
	if reason != "" {
		s.intents[i].Error = reason
	}
	return nil
}

func (s *MemoryStore) MarkDispatched(_ context.Context, id string) error {
	return s.setIntentStatus(id, []models.IntentStatus{models.IntentPending}, models.IntentDispatched, "")
}

func (s *MemoryStore) MarkDelivered(_ context.Context, id string) error {
	return s.setIntentStatus(id, nil, models.IntentDelivered, "")
}

func (s *MemoryStore) MarkFailed(_ context.Context, id, reason string) error {
	return s.setIntentStatus(id, nil, models.IntentFailed, reason)
}

func (s *MemoryStore) ListByBooking(_ context.Context, bookingID string) ([]models.NotificationIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.NotificationIntent{}
	for _, in := range s.intents {
		if in.BookingID == bookingID {
			out = append(out, cloneIntent(in))
		}
	}
	return out, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoBookingRepo)(nil)
)
