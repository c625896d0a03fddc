package pricing_test

import (
	"testing"

	"fabrication-service/internal/models"
	"fabrication-service/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func item(status models.FileStatus, mass *float64, qty int) models.CartItem {
	return models.CartItem{
		Quantity: qty,
		File:     models.UploadedFile{Status: status, MassGrams: mass},
	}
}

func TestBasePriceCents(t *testing.T) {
	tests := []struct {
		mass *float64
		want int64
	}{
		{nil, 0},
		{ptr(0.0), 0},
		{ptr(-3.0), 0},
		{ptr(100.0), 600},
		{ptr(200.0), 1100},
		{ptr(1.0), 105},
		{ptr(12.345), 162}, // 0.61725 + 1.00 rounds to 1.62
		{ptr(0.1), 101},    // 0.005 + 1.00 rounds half away from zero
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pricing.BasePriceCents(tt.mass), "mass=%v", tt.mass)
	}
}

func TestSubtotal_OnlyEligibleItems(t *testing.T) {
	items := []models.CartItem{
		item(models.FileStatusSuccess, ptr(100.0), 2),
		item(models.FileStatusPending, ptr(500.0), 10),
		item(models.FileStatusProcessing, nil, 3),
		item(models.FileStatusError, nil, 4),
	}
	assert.Equal(t, int64(1200), pricing.SubtotalCents(items))
}

// 100g and 200g at quantity 1 are 6.00 and 11.00.
func TestSubtotal_TwoSuccessItems(t *testing.T) {
	items := []models.CartItem{
		item(models.FileStatusSuccess, ptr(100.0), 1),
		item(models.FileStatusSuccess, ptr(200.0), 1),
	}
	assert.Equal(t, int64(600), pricing.BasePriceCents(ptr(100.0)))
	assert.Equal(t, int64(1100), pricing.BasePriceCents(ptr(200.0)))
	assert.Equal(t, int64(1700), pricing.SubtotalCents(items))
}

func TestTotal_AddonsOnTopOfSubtotal(t *testing.T) {
	items := []models.CartItem{
		item(models.FileStatusSuccess, ptr(100.0), 1),
		item(models.FileStatusSuccess, ptr(200.0), 1),
	}
	opts := models.OrderOptions{Multicolor: true, Priority: true}

	assert.Equal(t, int64(1700), pricing.AddonCents(opts))
	assert.Equal(t, int64(3400), pricing.TotalCents(items, opts))
	assert.Equal(t, "34.00", pricing.FormatCents(pricing.TotalCents(items, opts)))
}

func TestAddonCents(t *testing.T) {
	assert.Equal(t, int64(0), pricing.AddonCents(models.OrderOptions{}))
	assert.Equal(t, int64(200), pricing.AddonCents(models.OrderOptions{Multicolor: true}))
	assert.Equal(t, int64(1500), pricing.AddonCents(models.OrderOptions{Priority: true}))
	assert.Equal(t, int64(0), pricing.AddonCents(models.OrderOptions{Assistance: true, Comments: "hi"}))
}

func TestCheckoutReady(t *testing.T) {
	ok := item(models.FileStatusSuccess, ptr(1.0), 1)

	assert.False(t, pricing.CheckoutReady(nil))
	assert.True(t, pricing.CheckoutReady([]models.CartItem{ok}))
	for _, st := range []models.FileStatus{models.FileStatusPending, models.FileStatusProcessing, models.FileStatusError} {
		assert.False(t, pricing.CheckoutReady([]models.CartItem{ok, item(st, nil, 1)}), "status %s", st)
	}
}

func TestUnitPriceCents_Override(t *testing.T) {
	it := item(models.FileStatusSuccess, ptr(100.0), 1)
	assert.Equal(t, int64(600), pricing.UnitPriceCents(it))

	it.UnitPriceCents = ptr(int64(999))
	assert.Equal(t, int64(999), pricing.UnitPriceCents(it))
}

func TestEstimateProduction(t *testing.T) {
	normal := pricing.EstimateProduction(models.OrderOptions{})
	assert.Equal(t, 20, normal.Days)
	assert.True(t, normal.OfferPriority)
	assert.Equal(t, 5, normal.PrioritySavings)

	fast := pricing.EstimateProduction(models.OrderOptions{Priority: true})
	assert.Equal(t, 15, fast.Days)
	assert.False(t, fast.OfferPriority)
}

func TestSummarize(t *testing.T) {
	items := []models.CartItem{
		item(models.FileStatusSuccess, ptr(100.0), 1),
		item(models.FileStatusPending, nil, 1),
	}
	s := pricing.Summarize(items, models.OrderOptions{Multicolor: true})

	assert.Equal(t, int64(600), s.SubtotalCents)
	assert.Equal(t, int64(200), s.AddonCents)
	assert.Equal(t, int64(800), s.TotalCents)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, 1, s.EligibleCount)
	assert.True(t, s.HasInFlight)
	assert.False(t, s.Ready)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", pricing.FormatCents(0))
	assert.Equal(t, "6.05", pricing.FormatCents(605))
	assert.Equal(t, "-1.50", pricing.FormatCents(-150))
}
