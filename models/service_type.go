// models/service_type.go
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ModifierKind decides whether a line item accepts a user multiplier.
type ModifierKind string

const (
	ModifierNone     ModifierKind = "NONE"
	ModifierQuantity ModifierKind = "QUANTITY"
	ModifierHours    ModifierKind = "HOURS"
)

func (m ModifierKind) Valid() bool {
	switch m {
	case ModifierNone, ModifierQuantity, ModifierHours:
		return true
	}
	return false
}

// ServiceLineItem is a single priced offering from the studio catalog.
type ServiceLineItem struct {
	Category     string          `json:"category"`
	ID           string          `json:"id"`   // unique within Category
	Name         string          `json:"name"` // e.g. "Full Mix"
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unitPrice"` // pounds, not pence
	Unit         string          `json:"unit"`      // e.g. "per hour", "per song"
	ModifierKind ModifierKind    `json:"modifierKind"`
}

// Key is the catalog-wide selection key, "category/id".
func (s ServiceLineItem) Key() string {
	return ServiceKey(s.Category, s.ID)
}

func ServiceKey(category, id string) string {
	return fmt.Sprintf("%s/%s", category, id)
}

// ServiceCategory groups line items for display.
type ServiceCategory struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Items []ServiceLineItem `json:"items"`
}
