// Package calc holds the pure financial and scheduling calculations.
// All monetary amounts are integer cents.
package calc

import "fmt"

// AssetInput is the subset of an asset needed for depreciation math.
type AssetInput struct {
	PurchasePriceCents int64
	DepreciationMonths int
}

// MonthlyDepreciation returns the straight-line monthly depreciation,
// rounded to the nearest cent. Months must be positive.
func MonthlyDepreciation(purchasePriceCents int64, months int) (int64, error) {
	if months <= 0 {
		return 0, fmt.Errorf("depreciation months must be positive, got %d", months)
	}
	return divRound(purchasePriceCents, int64(months)), nil
}

// AccumulatedDepreciation returns total depreciation after elapsedMonths.
func AccumulatedDepreciation(monthlyCents int64, elapsedMonths int) (int64, error) {
	if elapsedMonths < 0 {
		return 0, fmt.Errorf("elapsed months cannot be negative, got %d", elapsedMonths)
	}
	return monthlyCents * int64(elapsedMonths), nil
}

// BookValue returns the remaining value, floored at zero for
// over-depreciated assets.
func BookValue(purchasePriceCents, accumulatedCents int64) int64 {
	v := purchasePriceCents - accumulatedCents
	if v < 0 {
		return 0
	}
	return v
}

// TotalMonthlyDepreciation sums monthly depreciation across assets.
// Rows with non-positive depreciation months are skipped rather than
// aborting the whole aggregate.
func TotalMonthlyDepreciation(assets []AssetInput) int64 {
	var total int64
	for _, a := range assets {
		monthly, err := MonthlyDepreciation(a.PurchasePriceCents, a.DepreciationMonths)
		if err != nil {
			continue
		}
		total += monthly
	}
	return total
}

// divRound divides a by b rounding half away from zero.
func divRound(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := float64(a) / float64(b)
	if q >= 0 {
		return int64(q + 0.5)
	}
	return int64(q - 0.5)
}
