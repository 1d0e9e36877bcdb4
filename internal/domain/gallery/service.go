// internal/domain/gallery/service.go
package gallery

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
)

// voteWindow is the dedup window for repeat votes by the same voter
const voteWindow = 24 * time.Hour

// Gallery errors
var (
	ErrItemNotFound = errors.New("gallery item not found")
	ErrAlreadyVoted = errors.New("already voted for this item")
	ErrInvalidVoter = errors.New("vote requires a user or a fingerprint")
)

// voteStore is the persistence surface of the voting flow
type voteStore interface {
	ItemByID(id uint) (*GalleryItem, error)
	CountVotesSince(itemID uint, voterKey string, since time.Time) (int64, error)
	CreateVote(vote *GalleryVote) error
}

// Service handles gallery items and voting
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	store  voteStore
	now    func() time.Time
}

// NewService creates a new gallery service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		store:  &gormVoteStore{db: db},
		now:    time.Now,
	}
}

// Vote records a vote for an item. The same voter key may vote for the same
// item again only after the dedup window has passed. The check-then-insert
// pair is not atomic: two simultaneous votes can both pass the check. The
// composite index keeps the check cheap; strict dedup would need a
// day-bucketed unique constraint.
func (s *Service) Vote(itemID uint, voterKey string) error {
	if voterKey == "" {
		return ErrInvalidVoter
	}

	item, err := s.store.ItemByID(itemID)
	if err != nil {
		return err
	}
	if item == nil || !item.IsActive {
		return ErrItemNotFound
	}

	since := s.now().Add(-voteWindow)
	count, err := s.store.CountVotesSince(itemID, voterKey, since)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyVoted
	}

	vote := &GalleryVote{
		GalleryItemID: itemID,
		VoterKey:      voterKey,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateVote(vote); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"item_id":   itemID,
		"voter_key": voterKey,
	}).Debug("Gallery vote recorded")
	return nil
}

// ListItems returns active gallery items with their vote totals
func (s *Service) ListItems() ([]GalleryItem, error) {
	var items []GalleryItem
	err := s.db.Model(&GalleryItem{}).
		Select("gallery_items.*, COUNT(gallery_votes.id) AS vote_count").
		Joins("LEFT JOIN gallery_votes ON gallery_votes.gallery_item_id = gallery_items.id").
		Where("gallery_items.is_active = ?", true).
		Group("gallery_items.id").
		Order("vote_count DESC, gallery_items.created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery items: %w", err)
	}
	return items, nil
}

// GetItem returns one item with its vote total
func (s *Service) GetItem(id uint) (*GalleryItem, error) {
	item, err := s.store.ItemByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	var count int64
	if err := s.db.Model(&GalleryVote{}).
		Where("gallery_item_id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	item.VoteCount = count
	return item, nil
}

// CreateItem adds a gallery item
func (s *Service) CreateItem(item *GalleryItem) error {
	if item.Title == "" || item.ImageURL == "" {
		return errors.New("title and image URL are required")
	}
	item.IsActive = true
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create gallery item: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes a gallery item
func (s *Service) DeleteItem(id uint) error {
	result := s.db.Delete(&GalleryItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete gallery item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// gormVoteStore is the database-backed voteStore
type gormVoteStore struct {
	db *gorm.DB
}

func (s *gormVoteStore) ItemByID(id uint) (*GalleryItem, error) {
	var item GalleryItem
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load gallery item: %w", err)
	}
	return &item, nil
}

func (s *gormVoteStore) CountVotesSince(itemID uint, voterKey string, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&GalleryVote{}).
		Where("gallery_item_id = ? AND voter_key = ? AND created_at > ?", itemID, voterKey, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent votes: %w", err)
	}
	return count, nil
}

func (s *gormVoteStore) CreateVote(vote *GalleryVote) error {
	if err := s.db.Create(vote).Error; err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}
