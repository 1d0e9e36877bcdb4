package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAmountFor_Percentage(t *testing.T) {
	dc := &DiscountCode{Code: "SAVE10", Kind: KindPercentage, Value: 10}

	assert.Equal(t, int64(500), dc.AmountFor(5000))
	assert.Equal(t, int64(99), dc.AmountFor(999))
	assert.Equal(t, int64(0), dc.AmountFor(0))
}

func TestAmountFor_Fixed(t *testing.T) {
	dc := &DiscountCode{Code: "FIVER", Kind: KindFixed, Value: 500}

	assert.Equal(t, int64(500), dc.AmountFor(5000))
	// never exceeds the subtotal
	assert.Equal(t, int64(300), dc.AmountFor(300))
}

func TestIsValidAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		code  DiscountCode
		valid bool
	}{
		{"active no window", DiscountCode{IsActive: true}, true},
		{"inactive", DiscountCode{IsActive: false}, false},
		{"not started", DiscountCode{IsActive: true, StartsAt: &future}, false},
		{"expired", DiscountCode{IsActive: true, ExpiresAt: &past}, false},
		{"inside window", DiscountCode{IsActive: true, StartsAt: &past, ExpiresAt: &future}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.code.IsValidAt(now))
		})
	}
}

func TestIsExhausted(t *testing.T) {
	assert.False(t, (&DiscountCode{MaxUses: 0, UsedCount: 1000}).IsExhausted())
	assert.False(t, (&DiscountCode{MaxUses: 5, UsedCount: 4}).IsExhausted())
	assert.True(t, (&DiscountCode{MaxUses: 5, UsedCount: 5}).IsExhausted())
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
}
