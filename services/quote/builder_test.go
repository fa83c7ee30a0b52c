package quote

import (
	"errors"
	"testing"

	"studiobook/models"
	"studiobook/services/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.StaticCatalog {
	t.Helper()
	c, err := catalog.New([]models.ServiceCategory{
		{ID: "recording", Name: "Recording", Items: []models.ServiceLineItem{
			{ID: "studio", Name: "Studio", UnitPrice: decimal.NewFromInt(300), Unit: "per hour", ModifierKind: models.ModifierHours},
			{ID: "lockout", Name: "Lockout", UnitPrice: decimal.NewFromInt(180), Unit: "per day", ModifierKind: models.ModifierNone},
		}},
		{ID: "mixing", Name: "Mixing", Items: []models.ServiceLineItem{
			{ID: "standard", Name: "Mix", UnitPrice: decimal.RequireFromString("450.50"), Unit: "per song", ModifierKind: models.ModifierQuantity},
			{ID: "tuning", Name: "Tuning", UnitPrice: decimal.NewFromInt(20), Unit: "per song", ModifierKind: models.ModifierQuantity},
		}},
		{ID: "mastering", Name: "Mastering", Items: []models.ServiceLineItem{
			{ID: "standard", Name: "Master", UnitPrice: decimal.NewFromInt(200), Unit: "per song", ModifierKind: models.ModifierQuantity},
		}},
	})
	require.NoError(t, err)
	return c
}

func mustToggle(t *testing.T, b *Builder, q models.Quote, key string) models.Quote {
	t.Helper()
	out, err := b.Toggle(q, key)
	require.NoError(t, err)
	return out
}

func TestDepositFor(t *testing.T) {
	cases := []struct {
		subtotal string
		deposit  string
	}{
		{"0", "0"},
		{"180", "180"},
		{"199.99", "199.99"},
		{"200", "100"},
		{"200.01", "100.005"},
		{"450.50", "225.25"},
		{"600", "300"},
	}
	for _, tc := range cases {
		t.Run(tc.subtotal, func(t *testing.T) {
			got := DepositFor(decimal.RequireFromString(tc.subtotal))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.deposit)), "got %s", got)
		})
	}
}

func TestComputeTotals_Examples(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	q := mustToggle(t, b, models.NewQuote("q"), "recording/lockout")
	totals, err := b.ComputeTotals(q)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(180)))
	assert.True(t, totals.DepositDue.Equal(decimal.NewFromInt(180)))

	q = mustToggle(t, b, models.NewQuote("q"), "mixing/standard")
	totals, err = b.ComputeTotals(q)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("450.50")))
	assert.True(t, totals.DepositDue.Equal(decimal.RequireFromString("225.25")))

	q = mustToggle(t, b, models.NewQuote("q"), "recording/studio")
	q, err = b.SetMultiplier(q, "recording/studio", 2)
	require.NoError(t, err)
	totals, err = b.ComputeTotals(q)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, totals.DepositDue.Equal(decimal.NewFromInt(300)))
}

func TestComputeTotals_EmptyQuote(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	totals, err := b.ComputeTotals(models.NewQuote("q"))
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.DepositDue.IsZero())
}

func TestToggle_PairingRestoresSelection(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := mustToggle(t, b, models.NewQuote("q"), "mixing/standard")
	q, err := b.SetMultiplier(q, "mixing/standard", 3)
	require.NoError(t, err)

	before := q.Clone()
	q = mustToggle(t, b, q, "mastering/standard")
	q = mustToggle(t, b, q, "mastering/standard")

	assert.Equal(t, before.Selections, q.Selections)
	assert.Equal(t, []string{"mixing/standard"}, q.Order)
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := models.NewQuote("q")
	_ = mustToggle(t, b, q, "mixing/standard")
	assert.True(t, q.IsEmpty())
}

func TestToggle_SameIDAcrossCategories(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := mustToggle(t, b, models.NewQuote("q"), "mixing/standard")
	q = mustToggle(t, b, q, "mastering/standard")
	assert.Len(t, q.Selections, 2)

	lines, totals, err := b.Snapshot(q)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "mixing/standard", lines[0].Key)
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("650.50")))
}

func TestToggle_UnknownService(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	_, err := b.Toggle(models.NewQuote("q"), "mixing/deluxe")
	assert.True(t, errors.Is(err, models.ErrUnknownService))
}

func TestSetMultiplier_Clamps(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := mustToggle(t, b, models.NewQuote("q"), "mixing/tuning")

	for _, v := range []int{0, -5} {
		out, err := b.SetMultiplier(q, "mixing/tuning", v)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Selections["mixing/tuning"].Multiplier)
	}

	out, err := b.SetMultiplier(q, "mixing/tuning", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Selections["mixing/tuning"].Multiplier)
}

func TestSetMultiplier_RejectsHugeValues(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := mustToggle(t, b, models.NewQuote("q"), "recording/studio")

	out, err := b.SetMultiplier(q, "recording/studio", MaxMultiplier)
	require.NoError(t, err)
	assert.Equal(t, MaxMultiplier, out.Selections["recording/studio"].Multiplier)

	for _, v := range []int{MaxMultiplier + 1, 1229782938247304} {
		_, err := b.SetMultiplier(q, "recording/studio", v)
		assert.True(t, errors.Is(err, models.ErrValidation), "multiplier %d", v)
	}
}

func TestSnapshot_RejectsOversizedStoredMultiplier(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := mustToggle(t, b, models.NewQuote("q"), "recording/studio")
	q.Selections["recording/studio"] = models.SelectedService{Key: "recording/studio", Multiplier: 1229782938247304}

	_, err := b.ComputeTotals(q)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestSetMultiplier_NoneModifierStaysAtOne(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	q := mustToggle(t, b, models.NewQuote("q"), "recording/lockout")

	out, err := b.SetMultiplier(q, "recording/lockout", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Selections["recording/lockout"].Multiplier)
}

func TestSetMultiplier_NotSelected(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	_, err := b.SetMultiplier(models.NewQuote("q"), "mixing/tuning", 2)
	assert.True(t, errors.Is(err, models.ErrValidation))
}
