package quote

import (
	"slices"

	"studiobook/models"
	"studiobook/services/catalog"

	"github.com/shopspring/decimal"
)

var (
	// DepositThreshold is the subtotal from which only a partial deposit is due.
	DepositThreshold = decimal.NewFromInt(200)
	depositRate      = decimal.RequireFromString("0.5")
)

// MaxMultiplier caps hours or quantity on a single line.
const MaxMultiplier = 200

// Builder applies selection edits to quotes and prices them. It never mutates
// the quote it is given.
type Builder struct {
	catalog catalog.Catalog
}

func NewBuilder(c catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

// Toggle adds key with multiplier 1, or removes it when already selected.
func (b *Builder) Toggle(q models.Quote, key string) (models.Quote, error) {
	if _, err := b.catalog.Lookup(key); err != nil {
		return q, err
	}
	out := q.Clone()
	if _, selected := out.Selections[key]; selected {
		delete(out.Selections, key)
		out.Order = slices.DeleteFunc(out.Order, func(k string) bool { return k == key })
		return out, nil
	}
	out.Selections[key] = models.SelectedService{Key: key, Multiplier: 1}
	out.Order = append(out.Order, key)
	return out, nil
}

// SetMultiplier clamps value to at least 1. Items priced without a modifier
// always stay at 1. Values above MaxMultiplier are rejected.
func (b *Builder) SetMultiplier(q models.Quote, key string, value int) (models.Quote, error) {
	item, err := b.catalog.Lookup(key)
	if err != nil {
		return q, err
	}
	if _, selected := q.Selections[key]; !selected {
		return q, models.NewValidationError("service %q is not part of the quote", key)
	}
	if err := checkMultiplier(key, value); err != nil {
		return q, err
	}
	out := q.Clone()
	out.Selections[key] = models.SelectedService{Key: key, Multiplier: clampMultiplier(item.ModifierKind, value)}
	return out, nil
}

func clampMultiplier(kind models.ModifierKind, value int) int {
	if kind == models.ModifierNone || value < 1 {
		return 1
	}
	return value
}

func checkMultiplier(key string, value int) error {
	if value > MaxMultiplier {
		return models.NewValidationError("multiplier for %q must be at most %d", key, MaxMultiplier)
	}
	return nil
}

// DepositFor applies the studio deposit rule: half of the subtotal from the
// threshold upwards, the full amount below it. The result is exact; rounding
// to pence happens only when charging.
func DepositFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(DepositThreshold) {
		return subtotal.Mul(depositRate)
	}
	return subtotal
}

// Snapshot prices every selection against the catalog in display order.
func (b *Builder) Snapshot(q models.Quote) ([]models.ServiceSnapshot, models.Totals, error) {
	lines := make([]models.ServiceSnapshot, 0, len(q.Selections))
	subtotal := decimal.Zero

	for _, key := range displayOrder(q) {
		sel := q.Selections[key]
		item, err := b.catalog.Lookup(key)
		if err != nil {
			return nil, models.Totals{}, err
		}
		if err := checkMultiplier(key, sel.Multiplier); err != nil {
			return nil, models.Totals{}, err
		}
		multiplier := clampMultiplier(item.ModifierKind, sel.Multiplier)
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(multiplier)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, models.ServiceSnapshot{
			Key:          key,
			Name:         item.Name,
			Unit:         item.Unit,
			ModifierKind: item.ModifierKind,
			UnitPrice:    item.UnitPrice,
			Multiplier:   multiplier,
			LineTotal:    lineTotal,
		})
	}
	return lines, models.Totals{Subtotal: subtotal, DepositDue: DepositFor(subtotal)}, nil
}

// ComputeTotals returns the subtotal and the deposit due. An empty quote is 0/0.
func (b *Builder) ComputeTotals(q models.Quote) (models.Totals, error) {
	_, totals, err := b.Snapshot(q)
	return totals, err
}

// Price is Snapshot shaped for the API.
func (b *Builder) Price(q models.Quote, currency string) (models.PricedQuote, error) {
	lines, totals, err := b.Snapshot(q)
	if err != nil {
		return models.PricedQuote{}, err
	}
	return models.PricedQuote{ID: q.ID, Lines: lines, Totals: totals, Currency: currency}, nil
}

// displayOrder is Order filtered to live selections, followed by any
// selections Order does not mention, sorted for determinism.
func displayOrder(q models.Quote) []string {
	seen := make(map[string]bool, len(q.Selections))
	keys := make([]string, 0, len(q.Selections))
	for _, k := range q.Order {
		if _, ok := q.Selections[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range q.Selections {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}
