package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name      string
		itemTotal string
		paidSum   string
		paidBonus string
		want      string
	}{
		{"plain discount", "100.00", "85.00", "0", "15.00"},
		{"bonus covers the gap", "100.00", "90.00", "10.00", "0.00"},
		{"partial bonus", "120.00", "100.00", "5.00", "15.00"},
		{"no line items", "0", "0", "0", "0"},
		{"fully paid", "50.00", "50.00", "0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeDiscount(d(tt.itemTotal), d(tt.paidSum), d(tt.paidBonus))
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestComputeDiscountClampsNegative(t *testing.T) {
	// overpayment never produces a negative discount
	got := computeDiscount(d("50.00"), d("60.00"), d("5.00"))
	assert.True(t, got.IsZero())
}
