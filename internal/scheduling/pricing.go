package scheduling

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPricing = errors.New("invalid pricing configuration")

// DiscountTier takes Percent off the base total once a rental reaches MinNights.
type DiscountTier struct {
	MinNights int     `json:"min_nights"`
	Percent   float64 `json:"percent"`
}

type PriceQuote struct {
	Nights          int     `json:"nights"`
	NightlyPrice    float64 `json:"nightly_price"`
	BaseTotal       float64 `json:"base_total"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	Total           float64 `json:"total"`
}

// BillableNights is the number of nights charged for r. A same-day rental
// (start == end) is billed as one night.
func BillableNights(r DateRange) int {
	if n := r.Nights(); n > 0 {
		return n
	}
	return 1
}

// ValidateDiscounts checks every tier has a positive threshold and a percentage in (0, 100).
func ValidateDiscounts(schedule []DiscountTier) error {
	for _, t := range schedule {
		if t.MinNights < 1 {
			return fmt.Errorf("%w: discount threshold %d must be at least 1 night", ErrInvalidPricing, t.MinNights)
		}
		if t.Percent <= 0 || t.Percent >= 100 {
			return fmt.Errorf("%w: discount %.2f%% must be between 0 and 100", ErrInvalidPricing, t.Percent)
		}
	}
	return nil
}

// ApplicableDiscount picks the tier with the highest threshold met; tiers never stack.
func ApplicableDiscount(schedule []DiscountTier, nights int) (DiscountTier, bool) {
	var (
		best  DiscountTier
		found bool
	)
	for _, t := range schedule {
		if nights < t.MinNights {
			continue
		}
		if !found || t.MinNights > best.MinNights ||
			(t.MinNights == best.MinNights && t.Percent > best.Percent) {
			best, found = t, true
		}
	}
	return best, found
}

// Quote prices a rental of r at the nightly rate with the discount schedule applied.
func Quote(nightly float64, schedule []DiscountTier, r DateRange) (PriceQuote, error) {
	if !r.Valid() {
		return PriceQuote{}, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	if nightly < 0 || math.IsNaN(nightly) || math.IsInf(nightly, 0) {
		return PriceQuote{}, fmt.Errorf("%w: nightly price %v", ErrInvalidPricing, nightly)
	}
	if err := ValidateDiscounts(schedule); err != nil {
		return PriceQuote{}, err
	}

	nights := BillableNights(r)
	base := roundCents(nightly * float64(nights))
	quote := PriceQuote{
		Nights:       nights,
		NightlyPrice: nightly,
		BaseTotal:    base,
		Total:        base,
	}

	tier, ok := ApplicableDiscount(schedule, nights)
	if !ok {
		return quote, nil
	}

	// A longer rental never costs less than a shorter one: the discounted total is
	// floored at the most expensive shorter duration, which is either the night
	// before this one or the night before a discount threshold kicks in.
	total := discountedTotal(nightly, schedule, nights)
	if nights > 1 {
		total = math.Max(total, discountedTotal(nightly, schedule, nights-1))
	}
	for _, t := range schedule {
		if k := t.MinNights - 1; k >= 1 && k < nights {
			total = math.Max(total, discountedTotal(nightly, schedule, k))
		}
	}

	quote.DiscountPercent = tier.Percent
	quote.Total = total
	quote.DiscountAmount = roundCents(base - total)
	return quote, nil
}

func discountedTotal(nightly float64, schedule []DiscountTier, nights int) float64 {
	base := nightly * float64(nights)
	if tier, ok := ApplicableDiscount(schedule, nights); ok {
		return roundCents(base * (100 - tier.Percent) / 100)
	}
	return roundCents(base)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
