// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import (
	"math"
	"sort"
)

// PearsonCorrelation computes the Pearson correlation coefficient
// between two sparse rating vectors, restricted to the items both have
// rated.
//
// The boolean result is false when the intersection holds fewer than
// minCommon items; such pairs carry too little evidence and must be
// excluded from neighbor selection rather than treated as zero
// correlation. A zero-variance denominator yields correlation 0, never
// a fault.
//
// The function is pure, deterministic and symmetric: the common items
// are summed in sorted order so PearsonCorrelation(a, b) and
// PearsonCorrelation(b, a) are bit-identical.
func PearsonCorrelation(a, b RatingVector, minCommon int) (float64, bool) {
	common := make([]string, 0, len(a))
	for id := range a {
		if _, ok := b[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) < minCommon {
		return 0, false
	}
	sort.Strings(common)

	var sumA, sumB, sumASq, sumBSq, sumAB float64
	for _, id := range common {
		ra, rb := a[id], b[id]
		sumA += ra
		sumB += rb
		sumASq += ra * ra
		sumBSq += rb * rb
		sumAB += ra * rb
	}

	n := float64(len(common))
	numerator := sumAB - sumA*sumB/n
	denominator := math.Sqrt((sumASq - sumA*sumA/n) * (sumBSq - sumB*sumB/n))
	if denominator == 0 {
		return 0, true
	}
	return numerator / denominator, true
}
