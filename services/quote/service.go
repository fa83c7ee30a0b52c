package quote

import (
	"context"
	"errors"

	"studiobook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Selection is one requested line in a calculator payload.
type Selection struct {
	Key        string `json:"key" binding:"required"`
	Multiplier int    `json:"multiplier"`
}

// Service runs the pricing calculator on top of a quote Store.
type Service struct {
	builder  *Builder
	store    Store
	currency string
	logger   *zap.Logger
}

func NewService(builder *Builder, store Store, currency string, logger *zap.Logger) *Service {
	return &Service{builder: builder, store: store, currency: currency, logger: logger}
}

// Build turns a list of selections into a quote without persisting it.
// Selecting the same key twice keeps the last multiplier.
func (s *Service) Build(id string, selections []Selection) (models.Quote, error) {
	q := models.NewQuote(id)
	for _, sel := range selections {
		var err error
		if _, already := q.Selections[sel.Key]; !already {
			if q, err = s.builder.Toggle(q, sel.Key); err != nil {
				return models.Quote{}, err
			}
		}
		if q, err = s.builder.SetMultiplier(q, sel.Key, sel.Multiplier); err != nil {
			return models.Quote{}, err
		}
	}
	return q, nil
}

// Calculate prices selections statelessly.
func (s *Service) Calculate(selections []Selection) (models.PricedQuote, error) {
	q, err := s.Build("", selections)
	if err != nil {
		return models.PricedQuote{}, err
	}
	return s.builder.Price(q, s.currency)
}

// Start opens a new stored quote, optionally pre-populated.
func (s *Service) Start(ctx context.Context, selections []Selection) (models.PricedQuote, error) {
	q, err := s.Build(uuid.NewString(), selections)
	if err != nil {
		return models.PricedQuote{}, err
	}
	if err := s.store.Save(ctx, q); err != nil {
		s.logger.Error("Failed to save quote", zap.String("quoteID", q.ID), zap.Error(err))
		return models.PricedQuote{}, err
	}
	return s.builder.Price(q, s.currency)
}

func (s *Service) load(ctx context.Context, id string) (models.Quote, error) {
	q, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrQuoteNotFound) {
		return q, models.NewNotFoundError("quote", id)
	}
	return q, err
}

func (s *Service) Get(ctx context.Context, id string) (models.PricedQuote, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return models.PricedQuote{}, err
	}
	return s.builder.Price(q, s.currency)
}

// Quote returns the raw stored quote for booking intake.
func (s *Service) Quote(ctx context.Context, id string) (models.Quote, error) {
	return s.load(ctx, id)
}

func (s *Service) Toggle(ctx context.Context, id, key string) (models.PricedQuote, error) {
	return s.update(ctx, id, func(q models.Quote) (models.Quote, error) {
		return s.builder.Toggle(q, key)
	})
}

func (s *Service) SetMultiplier(ctx context.Context, id, key string, value int) (models.PricedQuote, error) {
	return s.update(ctx, id, func(q models.Quote) (models.Quote, error) {
		return s.builder.SetMultiplier(q, key, value)
	})
}

func (s *Service) Discard(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) update(ctx context.Context, id string, edit func(models.Quote) (models.Quote, error)) (models.PricedQuote, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return models.PricedQuote{}, err
	}
	q, err = edit(q)
	if err != nil {
		return models.PricedQuote{}, err
	}
	if err := s.store.Save(ctx, q); err != nil {
		s.logger.Error("Failed to save quote", zap.String("quoteID", id), zap.Error(err))
		return models.PricedQuote{}, err
	}
	return s.builder.Price(q, s.currency)
}
