package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectedService is a catalog line item chosen in a quote.
type SelectedService struct {
	Key        string `json:"key"`
	Multiplier int    `json:"multiplier"`
}

// Quote is the ephemeral pricing-calculator state. Selections is keyed by the
// service key; Order only drives display.
type Quote struct {
	ID         string                     `json:"id"`
	Selections map[string]SelectedService `json:"selections"`
	Order      []string                   `json:"order"`
	CreatedAt  time.Time                  `json:"createdAt"`
}

// NewQuote returns an empty quote.
func NewQuote(id string) Quote {
	return Quote{
		ID:         id,
		Selections: make(map[string]SelectedService),
		CreatedAt:  time.Now(),
	}
}

// IsEmpty reports whether nothing is selected.
func (q Quote) IsEmpty() bool {
	return len(q.Selections) == 0
}

// Clone returns a deep copy so builders never mutate their input.
func (q Quote) Clone() Quote {
	out := Quote{
		ID:         q.ID,
		Selections: make(map[string]SelectedService, len(q.Selections)),
		Order:      append([]string(nil), q.Order...),
		CreatedAt:  q.CreatedAt,
	}
	for k, v := range q.Selections {
		out.Selections[k] = v
	}
	return out
}

// Totals are derived from a quote and the catalog.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	DepositDue decimal.Decimal `json:"depositDue"`
}

// PricedQuote is the response shape for the calculator endpoints.
type PricedQuote struct {
	ID       string            `json:"id,omitempty"`
	Lines    []ServiceSnapshot `json:"lines"`
	Totals   Totals            `json:"totals"`
	Currency string            `json:"currency"`
}
