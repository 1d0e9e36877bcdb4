// internal/domain/gamification/service.go
package gamification

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
)

// referralBonusXP is granted to the referrer when a referred user first orders
const referralBonusXP = 100

// Service maintains the XP ledger, user tiers and badges
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new gamification service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// Profile is a user's gamification summary
type Profile struct {
	UserID uint        `json:"user_id"`
	XP     int64       `json:"xp"`
	Tier   Tier        `json:"tier"`
	Badges []UserBadge `json:"badges"`
}

// AwardPurchase credits purchase XP: one point per full currency unit spent.
// The user's tier is recalculated from lifetime XP afterwards.
func (s *Service) AwardPurchase(userID uint, orderID string, totalCents int64) error {
	xp := totalCents / 100
	if xp <= 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		event := XPEvent{
			UserID:    userID,
			Kind:      EventPurchase,
			Amount:    xp,
			Reference: orderID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record XP event: %w", err)
		}

		var purchases int64
		if err := tx.Model(&XPEvent{}).
			Where("user_id = ? AND kind = ?", userID, EventPurchase).
			Count(&purchases).Error; err != nil {
			return fmt.Errorf("failed to count purchases: %w", err)
		}
		if purchases == 1 {
			if err := s.grantBadge(tx, userID, BadgeFirstOrder); err != nil {
				return err
			}
		}

		return s.recalculate(tx, userID)
	})
}

// AwardReferralForFirstOrder credits the referral bonus to whoever referred
// the given user, the first time that user finalizes an order. Later orders
// by the same user are no-ops: the ledger holds at most one referral event
// per referred user.
func (s *Service) AwardReferralForFirstOrder(referredID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var row struct {
			ReferredBy *uint
		}
		err := tx.Table("users").Where("id = ?", referredID).
			Select("referred_by").Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to look up referrer: %w", err)
		}
		if row.ReferredBy == nil {
			return nil
		}
		referrerID := row.ReferredBy

		reference := fmt.Sprintf("user:%d", referredID)
		var existing int64
		if err := tx.Model(&XPEvent{}).
			Where("kind = ? AND reference = ?", EventReferral, reference).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check referral ledger: %w", err)
		}
		if existing > 0 {
			return nil
		}

		event := XPEvent{
			UserID:    *referrerID,
			Kind:      EventReferral,
			Amount:    referralBonusXP,
			Reference: reference,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record referral XP: %w", err)
		}
		return s.recalculate(tx, *referrerID)
	})
}

// GetProfile returns a user's XP, tier and badges
func (s *Service) GetProfile(userID uint) (*Profile, error) {
	xp, err := s.lifetimeXP(s.db, userID)
	if err != nil {
		return nil, err
	}

	var badges []UserBadge
	if err := s.db.Preload("Badge").Where("user_id = ?", userID).Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}

	return &Profile{
		UserID: userID,
		XP:     xp,
		Tier:   TierForXP(xp),
		Badges: badges,
	}, nil
}

// lifetimeXP sums the user's ledger
func (s *Service) lifetimeXP(tx *gorm.DB, userID uint) (int64, error) {
	var total int64
	err := tx.Model(&XPEvent{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum XP: %w", err)
	}
	return total, nil
}

// recalculate refreshes the denormalized XP and tier on the user row and
// grants tier badges on promotion
func (s *Service) recalculate(tx *gorm.DB, userID uint) error {
	xp, err := s.lifetimeXP(tx, userID)
	if err != nil {
		return err
	}
	tier := TierForXP(xp)

	err = tx.Table("users").Where("id = ?", userID).
		Updates(map[string]interface{}{"xp": xp, "tier": tier}).Error
	if err != nil {
		return fmt.Errorf("failed to update user tier: %w", err)
	}

	badgeCode := ""
	switch tier {
	case TierSilver:
		badgeCode = BadgeSilver
	case TierGold:
		badgeCode = BadgeGold
	case TierPlatinum:
		badgeCode = BadgePlatinum
	}
	if badgeCode != "" {
		return s.grantBadge(tx, userID, badgeCode)
	}
	return nil
}

// grantBadge grants a badge once; granting an already-held badge is a no-op
func (s *Service) grantBadge(tx *gorm.DB, userID uint, code string) error {
	var badge Badge
	if err := tx.Where("code = ?", code).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// badge catalog not seeded, nothing to grant
			return nil
		}
		return fmt.Errorf("failed to load badge: %w", err)
	}

	var count int64
	if err := tx.Model(&UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badge.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check badge: %w", err)
	}
	if count > 0 {
		return nil
	}

	grant := UserBadge{UserID: userID, BadgeID: badge.ID}
	if err := tx.Create(&grant).Error; err != nil {
		return fmt.Errorf("failed to grant badge: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"badge":   code,
	}).Info("Badge granted")
	return nil
}

// SeedBadges inserts the built-in badge catalog if missing
func (s *Service) SeedBadges() error {
	defaults := []Badge{
		{Code: BadgeFirstOrder, Name: "First Order", Description: "Placed a first order"},
		{Code: BadgeSilver, Name: "Silver Tier", Description: "Reached silver tier"},
		{Code: BadgeGold, Name: "Gold Tier", Description: "Reached gold tier"},
		{Code: BadgePlatinum, Name: "Platinum Tier", Description: "Reached platinum tier"},
	}
	for _, b := range defaults {
		var count int64
		if err := s.db.Model(&Badge{}).Where("code = ?", b.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check badge catalog: %w", err)
		}
		if count == 0 {
			if err := s.db.Create(&b).Error; err != nil {
				return fmt.Errorf("failed to seed badge %s: %w", b.Code, err)
			}
		}
	}
	return nil
}
