package engine

import "math"

// Money is float64 at the API boundary (two-decimal currencies) but
// all engine arithmetic happens in integer cents, scale factor 100.
// That keeps the conservation invariants exact instead of "within
// floating tolerance".
const centScale = 100

// Epsilon is the zero tolerance for float64 balance comparisons at the
// API boundary. Anything smaller than half a cent is treated as zero.
const Epsilon = 0.005

func toCents(v float64) int64 {
	return int64(math.Round(v * centScale))
}

func fromCents(c int64) float64 {
	return float64(c) / centScale
}

// allocateCents splits totalCents across the positive-weight entries of
// shares, proportionally to weight. Entries with weight <= 0 are
// excluded from the denominator and receive nothing; if no entry has a
// positive weight the result is empty (a defined edge case, not an
// error). Each share is rounded to the nearest cent and the rounding
// remainder is added wholesale to the key with the largest weight,
// ties broken by the lowest key, so the allocation always sums to
// totalCents exactly and is deterministic.
func allocateCents(totalCents int64, shares map[int64]float64) map[int64]int64 {
	var weightSum float64
	for _, w := range shares {
		if w > 0 {
			weightSum += w
		}
	}

	result := make(map[int64]int64, len(shares))
	if weightSum == 0 {
		return result
	}

	var allocated int64
	largestKey := int64(0)
	largestWeight := math.Inf(-1)
	for key, w := range shares {
		if w <= 0 {
			continue
		}
		c := int64(math.Round(float64(totalCents) * w / weightSum))
		result[key] = c
		allocated += c
		if w > largestWeight || (w == largestWeight && key < largestKey) {
			largestWeight = w
			largestKey = key
		}
	}

	if remainder := totalCents - allocated; remainder != 0 {
		result[largestKey] += remainder
	}

	return result
}

// Allocate splits total across the weighted keys of shares, rounded to
// two decimals. See allocateCents for the exclusion and rounding
// rules; keys that receive nothing are absent from the result.
func Allocate(total float64, shares map[int64]float64) map[int64]float64 {
	cents := allocateCents(toCents(total), shares)
	result := make(map[int64]float64, len(cents))
	for key, c := range cents {
		result[key] = fromCents(c)
	}
	return result
}

// validateWeights rejects negative weights in a stored share map.
// Allocation itself just skips non-positive weights, but a negative
// weight in caller data is an inconsistency that must surface.
func validateWeights(shares map[int64]float64) error {
	for key, w := range shares {
		if w < 0 {
			return wrapAccountErr(key, ErrNegativeWeight)
		}
	}
	return nil
}
