package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want Tier
	}{
		{0, TierBronze},
		{499, TierBronze},
		{500, TierSilver},
		{1499, TierSilver},
		{1500, TierGold},
		{4999, TierGold},
		{5000, TierPlatinum},
		{100000, TierPlatinum},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierForXP(tt.xp), "xp=%d", tt.xp)
	}
}
