package gallery

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

type memoryVoteStore struct {
	items map[uint]*GalleryItem
	votes []GalleryVote
}

func (m *memoryVoteStore) ItemByID(id uint) (*GalleryItem, error) {
	return m.items[id], nil
}

func (m *memoryVoteStore) CountVotesSince(itemID uint, voterKey string, since time.Time) (int64, error) {
	var count int64
	for _, v := range m.votes {
		if v.GalleryItemID == itemID && v.VoterKey == voterKey && v.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *memoryVoteStore) CreateVote(vote *GalleryVote) error {
	m.votes = append(m.votes, *vote)
	return nil
}

func newVotingService(store voteStore, now func() time.Time) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &Service{
		config: &config.Config{},
		logger: logger,
		store:  store,
		now:    now,
	}
}

func TestVote_DuplicateWithinWindowRejected(t *testing.T) {
	store := &memoryVoteStore{items: map[uint]*GalleryItem{
		1: {ID: 1, Title: "Aurora", IsActive: true},
	}}
	clock := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newVotingService(store, func() time.Time { return clock })

	require.NoError(t, svc.Vote(1, FingerprintVoterKey("abc123")))

	err := svc.Vote(1, FingerprintVoterKey("abc123"))
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Len(t, store.votes, 1)
}

func TestVote_AllowedAgainAfterWindow(t *testing.T) {
	store := &memoryVoteStore{items: map[uint]*GalleryItem{
		1: {ID: 1, Title: "Aurora", IsActive: true},
	}}
	clock := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newVotingService(store, func() time.Time { return clock })

	require.NoError(t, svc.Vote(1, FingerprintVoterKey("abc123")))

	// advance the simulated clock past the window
	clock = clock.Add(24*time.Hour + time.Minute)
	svc.now = func() time.Time { return clock }

	require.NoError(t, svc.Vote(1, FingerprintVoterKey("abc123")))
	assert.Len(t, store.votes, 2)
}

func TestVote_DistinctVotersIndependent(t *testing.T) {
	store := &memoryVoteStore{items: map[uint]*GalleryItem{
		1: {ID: 1, Title: "Aurora", IsActive: true},
	}}
	clock := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newVotingService(store, func() time.Time { return clock })

	require.NoError(t, svc.Vote(1, FingerprintVoterKey("abc123")))
	require.NoError(t, svc.Vote(1, UserVoterKey(42)))
	assert.Len(t, store.votes, 2)
}

func TestVote_UnknownOrInactiveItem(t *testing.T) {
	store := &memoryVoteStore{items: map[uint]*GalleryItem{
		2: {ID: 2, Title: "Retired", IsActive: false},
	}}
	svc := newVotingService(store, time.Now)

	assert.ErrorIs(t, svc.Vote(99, UserVoterKey(1)), ErrItemNotFound)
	assert.ErrorIs(t, svc.Vote(2, UserVoterKey(1)), ErrItemNotFound)
}

func TestVote_RequiresVoterKey(t *testing.T) {
	svc := newVotingService(&memoryVoteStore{items: map[uint]*GalleryItem{}}, time.Now)
	assert.ErrorIs(t, svc.Vote(1, ""), ErrInvalidVoter)
}

func TestVoterKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserVoterKey(42))
	assert.Equal(t, "fp:abc123", FingerprintVoterKey("abc123"))
}
