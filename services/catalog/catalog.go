package catalog

import (
	"fmt"
	"sort"

	"studiobook/models"
)

// Catalog is the read-only price list the quote builder and bookings price against.
type Catalog interface {
	Lookup(key string) (models.ServiceLineItem, error)
	Categories() []models.ServiceCategory
}

// StaticCatalog is an immutable, validated in-memory catalog.
type StaticCatalog struct {
	categories []models.ServiceCategory
	items      map[string]models.ServiceLineItem
}

// New validates the categories and indexes their items by selection key.
func New(categories []models.ServiceCategory) (*StaticCatalog, error) {
	c := &StaticCatalog{items: make(map[string]models.ServiceLineItem)}
	seenCategory := make(map[string]bool)

	for _, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("catalog: category with empty id")
		}
		if seenCategory[cat.ID] {
			return nil, fmt.Errorf("catalog: duplicate category %q", cat.ID)
		}
		seenCategory[cat.ID] = true

		copied := models.ServiceCategory{ID: cat.ID, Name: cat.Name}
		for _, item := range cat.Items {
			item.Category = cat.ID
			if item.ID == "" {
				return nil, fmt.Errorf("catalog: item with empty id in %q", cat.ID)
			}
			if item.UnitPrice.IsNegative() {
				return nil, fmt.Errorf("catalog: %s has negative price", item.Key())
			}
			if !item.ModifierKind.Valid() {
				return nil, fmt.Errorf("catalog: %s has unknown modifier %q", item.Key(), item.ModifierKind)
			}
			if _, dup := c.items[item.Key()]; dup {
				return nil, fmt.Errorf("catalog: duplicate item %s", item.Key())
			}
			c.items[item.Key()] = item
			copied.Items = append(copied.Items, item)
		}
		c.categories = append(c.categories, copied)
	}
	return c, nil
}

// MustNew panics on an invalid catalog; for compiled-in data only.
func MustNew(categories []models.ServiceCategory) *StaticCatalog {
	c, err := New(categories)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the line item for a "category/id" key.
func (c *StaticCatalog) Lookup(key string) (models.ServiceLineItem, error) {
	item, ok := c.items[key]
	if !ok {
		return models.ServiceLineItem{}, models.NewUnknownServiceError(key)
	}
	return item, nil
}

// Categories returns a copy of the catalog in display order.
func (c *StaticCatalog) Categories() []models.ServiceCategory {
	out := make([]models.ServiceCategory, len(c.categories))
	for i, cat := range c.categories {
		out[i] = models.ServiceCategory{
			ID:    cat.ID,
			Name:  cat.Name,
			Items: append([]models.ServiceLineItem(nil), cat.Items...),
		}
	}
	return out
}

// Keys lists every selection key, sorted.
func (c *StaticCatalog) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
