// Package pricing holds the storefront price rules. All amounts are integer
// cents; nothing here performs I/O.
package pricing

import (
	"fmt"
	"math"

	"fabrication-service/internal/models"
)

const (
	// Base price is 0.05 per gram plus a 1.00 handling fee.
	centsPerGram    = 5
	handlingCents   = 100
	MulticolorCents = 200
	PriorityCents   = 1500

	BaseProductionDays = 20
	PrioritySpeedup    = 5
	// The priority upsell is offered when the normal queue exceeds this.
	upsellThresholdDays = 14
)

// BasePriceCents prices a model by mass. A missing or non-positive mass is
// free, which keeps unprocessed files out of any sum.
func BasePriceCents(massGrams *float64) int64 {
	if massGrams == nil || *massGrams <= 0 {
		return 0
	}
	return int64(math.Round(*massGrams*centsPerGram + handlingCents))
}

func ItemEligible(it models.CartItem) bool {
	return it.File.Status == models.FileStatusSuccess
}

// UnitPriceCents is the price a line is sold at: the manual override when set,
// otherwise the mass-based price.
func UnitPriceCents(it models.CartItem) int64 {
	if it.UnitPriceCents != nil {
		return *it.UnitPriceCents
	}
	return BasePriceCents(it.File.MassGrams)
}

// SubtotalCents sums base price times quantity over eligible items. Items that
// are still processing or failed contribute nothing.
func SubtotalCents(items []models.CartItem) int64 {
	var sum int64
	for _, it := range items {
		if !ItemEligible(it) {
			continue
		}
		sum += BasePriceCents(it.File.MassGrams) * int64(it.Quantity)
	}
	return sum
}

func AddonCents(opts models.OrderOptions) int64 {
	var sum int64
	if opts.Multicolor {
		sum += MulticolorCents
	}
	if opts.Priority {
		sum += PriorityCents
	}
	return sum
}

// TotalCents excludes shipping, which the order service adds at checkout.
func TotalCents(items []models.CartItem, opts models.OrderOptions) int64 {
	return SubtotalCents(items) + AddonCents(opts)
}

// HasInFlight reports whether any item still waits on the worker.
func HasInFlight(items []models.CartItem) bool {
	for _, it := range items {
		if it.File.Status.InFlight() {
			return true
		}
	}
	return false
}

func HasErrored(items []models.CartItem) bool {
	for _, it := range items {
		if it.File.Status == models.FileStatusError {
			return true
		}
	}
	return false
}

func CheckoutReady(items []models.CartItem) bool {
	return len(items) > 0 && !HasInFlight(items) && !HasErrored(items)
}

type ProductionEstimate struct {
	Days int
	// OfferPriority is set when adding priority would shorten a long queue.
	OfferPriority   bool
	PrioritySavings int
}

func EstimateProduction(opts models.OrderOptions) ProductionEstimate {
	if opts.Priority {
		return ProductionEstimate{Days: BaseProductionDays - PrioritySpeedup}
	}
	return ProductionEstimate{
		Days:            BaseProductionDays,
		OfferPriority:   BaseProductionDays > upsellThresholdDays,
		PrioritySavings: PrioritySpeedup,
	}
}

type Summary struct {
	SubtotalCents int64
	AddonCents    int64
	TotalCents    int64
	ItemCount     int
	EligibleCount int
	HasInFlight   bool
	HasErrored    bool
	Ready         bool
	Estimate      ProductionEstimate
}

func Summarize(items []models.CartItem, opts models.OrderOptions) Summary {
	s := Summary{
		SubtotalCents: SubtotalCents(items),
		AddonCents:    AddonCents(opts),
		ItemCount:     len(items),
		HasInFlight:   HasInFlight(items),
		HasErrored:    HasErrored(items),
		Ready:         CheckoutReady(items),
		Estimate:      EstimateProduction(opts),
	}
	s.TotalCents = s.SubtotalCents + s.AddonCents
	for _, it := range items {
		if ItemEligible(it) {
			s.EligibleCount++
		}
	}
	return s
}

// FormatCents renders cents as a decimal string, e.g. 1700 -> "17.00".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
