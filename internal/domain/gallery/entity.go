// internal/domain/gallery/entity.go
package gallery

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GalleryItem is a community artwork entry open for voting
type GalleryItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null;size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"not null;size:500" json:"image_url"`
	UserID      *uint          `gorm:"index" json:"user_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	VoteCount int64 `gorm:"-" json:"vote_count"`
}

// GalleryVote records one vote. The voter key identifies either an account
// or an anonymous browser fingerprint; the composite index backs the
// trailing-window dedup query.
type GalleryVote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GalleryItemID uint      `gorm:"not null;index:idx_item_voter_time" json:"gallery_item_id"`
	VoterKey      string    `gorm:"not null;size:150;index:idx_item_voter_time" json:"voter_key"`
	CreatedAt     time.Time `gorm:"index:idx_item_voter_time" json:"created_at"`
}

// TableName overrides
func (GalleryItem) TableName() string { return "gallery_items" }
func (GalleryVote) TableName() string { return "gallery_votes" }

// UserVoterKey builds the voter key for an authenticated user
func UserVoterKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// FingerprintVoterKey builds the voter key for an anonymous fingerprint
func FingerprintVoterKey(fingerprint string) string {
	return fmt.Sprintf("fp:%s", fingerprint)
}
