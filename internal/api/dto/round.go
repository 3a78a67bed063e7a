package dto

import "math"

// Round2 rounds a mean to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
