package utils

import (
	"math"

	"zuperbill-backend/models"
)

// Subtotal sums quantity * unit price over the line items. Values pass
// through as given; negative quantities or prices are not rejected.
func Subtotal(items []models.LineItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += float64(item.Quantity) * item.UnitPrice
	}
	return subtotal
}

// FinalTotal applies the discount and tax percentage to a subtotal and rounds
// to two decimals, half to even.
func FinalTotal(subtotal, discount, taxPercent float64) float64 {
	return Round2((subtotal - discount) * (1 + taxPercent/100))
}

// Round2 rounds to two decimal places, ties to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
