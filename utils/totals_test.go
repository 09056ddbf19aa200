package utils

import (
	"testing"

	"zuperbill-backend/models"
	"github.com/stretchr/testify/assert"
)

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.LineItem
		expected float64
	}{
		{
			name: "two items",
			items: []models.LineItem{
				{Description: "Faucet repair", Quantity: 2, UnitPrice: 10},
				{Description: "Washer", Quantity: 1, UnitPrice: 5},
			},
			expected: 25,
		},
		{
			name:     "no items",
			items:    nil,
			expected: 0,
		},
		{
			name: "negative values pass through",
			items: []models.LineItem{
				{Description: "Credit", Quantity: -1, UnitPrice: 30},
			},
			expected: -30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Subtotal(tt.items), 1e-9)
		})
	}
}

func TestFinalTotal(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		discount float64
		tax      float64
		expected float64
	}{
		{"no discount no tax", 100, 0, 0, 100},
		{"ten percent tax", 25, 0, 10, 27.50},
		{"discount then tax", 100, 20, 10, 88},
		{"rounds to two decimals", 10, 0, 7.77, 10.78},
		{"discount exceeds subtotal", 10, 20, 0, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, FinalTotal(tt.subtotal, tt.discount, tt.tax), 1e-9)
		})
	}
}

func TestRound2HalfEven(t *testing.T) {
	assert.InDelta(t, 0.12, Round2(0.125), 1e-9)
	assert.InDelta(t, 0.14, Round2(0.135), 1e-9)
	assert.InDelta(t, 1.0, Round2(1.0001), 1e-9)
}
