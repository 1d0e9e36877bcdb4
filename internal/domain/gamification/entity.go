// internal/domain/gamification/entity.go
package gamification

import (
	"time"
)

// Tier represents a loyalty tier
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// XP event kinds
const (
	EventPurchase = "purchase"
	EventReferral = "referral"
	EventVote     = "gallery_vote"
)

// Badge codes granted automatically
const (
	BadgeFirstOrder = "first_order"
	BadgeSilver     = "tier_silver"
	BadgeGold       = "tier_gold"
	BadgePlatinum   = "tier_platinum"
)

// XPEvent is one row of the append-only XP ledger
type XPEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Kind      string    `gorm:"not null;size:30" json:"kind"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Reference string    `gorm:"size:100" json:"reference"` // order id, referred user, etc.
	CreatedAt time.Time `json:"created_at"`
}

// Badge is a grantable achievement
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBadge links a user to a granted badge
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_user_badge,unique" json:"user_id"`
	BadgeID   uint      `gorm:"not null;index:idx_user_badge,unique" json:"badge_id"`
	CreatedAt time.Time `json:"created_at"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge"`
}

// TableName overrides
func (XPEvent) TableName() string   { return "xp_events" }
func (Badge) TableName() string     { return "badges" }
func (UserBadge) TableName() string { return "user_badges" }

// tierThresholds maps lifetime XP to tiers, highest first
var tierThresholds = []struct {
	Tier Tier
	XP   int64
}{
	{TierPlatinum, 5000},
	{TierGold, 1500},
	{TierSilver, 500},
	{TierBronze, 0},
}

// TierForXP maps lifetime XP to the loyalty tier
func TierForXP(xp int64) Tier {
	for _, t := range tierThresholds {
		if xp >= t.XP {
			return t.Tier
		}
	}
	return TierBronze
}
