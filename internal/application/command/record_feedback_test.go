package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// fakeFeedbackCache records preview invalidations.
type fakeFeedbackCache struct {
	invalidated []string
}

func (c *fakeFeedbackCache) GetPreview(_ context.Context, _ shared.UserID, _ shared.SportType) ([]matchmaking.RankedCandidate, error) {
	return nil, nil
}

func (c *fakeFeedbackCache) SetPreview(_ context.Context, _ shared.UserID, _ shared.SportType, _ []matchmaking.RankedCandidate, _ time.Duration) error {
	return nil
}

func (c *fakeFeedbackCache) InvalidatePreview(_ context.Context, userID shared.UserID, sport shared.SportType) error {
	c.invalidated = append(c.invalidated, fmt.Sprintf("%d:%s", userID.Int64(), sport))
	return nil
}

func seedMatch(t *testing.T, repo *fakeMatchRepo, id string, userID, matchedUserID shared.UserID) *matchmaking.SkillMatch {
	t.Helper()
	m, err := matchmaking.NewSkillMatch(matchmaking.NewSkillMatchParams{
		ID:                   id,
		UserID:               userID,
		MatchedUserID:        matchedUserID,
		Sport:                shared.SportTennis,
		CompatibilityScore:   80,
		SkillLevelDifference: 1,
		MatchReason:          matchmaking.ReasonSimilarSkill,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func TestMarkViewed(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	err := h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "match-1", UserID: 1})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), "match-1")
	require.NoError(t, err)
	assert.True(t, stored.IsViewed)
}

func TestMarkViewed_RepeatIsNoOp(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	require.NoError(t, h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "match-1", UserID: 1}))
	assert.NoError(t, h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "match-1", UserID: 1}))
}

func TestMarkViewed_OwnershipEnforced(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	// User 2 is the matched side, not the owner of this record.
	err := h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "match-1", UserID: 2})
	assert.ErrorIs(t, err, shared.ErrMatchNotFound, "foreign match looks like a missing one")
}

func TestMarkViewed_Validation(t *testing.T) {
	h := NewMatchFeedbackHandler(newFakeMatchRepo(), nil, nil)

	assert.Error(t, h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "", UserID: 1}))
	assert.Error(t, h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "m", UserID: 0}))
}

func TestLike_NoReverseRecord(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	res, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-1", UserID: 1})
	require.NoError(t, err)
	assert.False(t, res.IsMutual, "no symmetric record means no mutual match yet")

	stored, err := repo.GetByID(context.Background(), "match-1")
	require.NoError(t, err)
	assert.True(t, stored.IsLiked)
	assert.False(t, stored.IsMutualMatch)
}

func TestLike_PromotesToMutual(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	reverse := seedMatch(t, repo, "match-2", 2, 1)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	// The matched user likes their own record first.
	_, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: reverse.ID, UserID: 2})
	require.NoError(t, err)

	res, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-1", UserID: 1})
	require.NoError(t, err)
	assert.True(t, res.IsMutual)

	// Both sides carry the mutual flag afterwards.
	own, err := repo.GetByID(context.Background(), "match-1")
	require.NoError(t, err)
	assert.True(t, own.IsMutualMatch)

	other, err := repo.GetByID(context.Background(), "match-2")
	require.NoError(t, err)
	assert.True(t, other.IsMutualMatch)
}

func TestLike_RepeatReturnsCurrentState(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	first, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-1", UserID: 1})
	require.NoError(t, err)

	repeat, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-1", UserID: 1})
	require.NoError(t, err, "repeat like is not an error")
	assert.Equal(t, first.MatchID, repeat.MatchID)
	assert.Equal(t, first.IsMutual, repeat.IsMutual)
}

func TestLike_MatchNotFound(t *testing.T) {
	h := NewMatchFeedbackHandler(newFakeMatchRepo(), nil, nil)

	_, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "ghost", UserID: 1})
	assert.ErrorIs(t, err, shared.ErrMatchNotFound)
}

func TestLike_RepairsReverseAfterFailedPromotion(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-ab", 1, 2)
	seedMatch(t, repo, "match-ba", 2, 1)
	h := NewMatchFeedbackHandler(repo, nil, nil)

	_, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-ba", UserID: 2})
	require.NoError(t, err)

	// The reverse promotion fails once; the like itself still succeeds.
	repo.failUpdates = 1
	res, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-ab", UserID: 1})
	require.NoError(t, err)
	assert.True(t, res.IsMutual)

	reverse, err := repo.GetByID(context.Background(), "match-ba")
	require.NoError(t, err)
	require.False(t, reverse.IsMutualMatch, "reverse record was left behind by the failed update")

	// A repeat like re-checks mutuality and heals the reverse record.
	res, err = h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-ab", UserID: 1})
	require.NoError(t, err)
	assert.True(t, res.IsMutual)

	reverse, err = repo.GetByID(context.Background(), "match-ba")
	require.NoError(t, err)
	assert.True(t, reverse.IsMutualMatch)
}

func TestLike_InvalidatesBothPreviews(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	cache := &fakeFeedbackCache{}
	h := NewMatchFeedbackHandler(repo, cache, nil)

	_, err := h.HandleLike(context.Background(), LikeMatchCommand{MatchID: "match-1", UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"1:tennis", "2:tennis"}, cache.invalidated)
}

func TestMarkViewed_InvalidatesOwnPreview(t *testing.T) {
	repo := newFakeMatchRepo()
	seedMatch(t, repo, "match-1", 1, 2)
	cache := &fakeFeedbackCache{}
	h := NewMatchFeedbackHandler(repo, cache, nil)

	require.NoError(t, h.HandleMarkViewed(context.Background(), MarkMatchViewedCommand{MatchID: "match-1", UserID: 1}))

	assert.Equal(t, []string{"1:tennis"}, cache.invalidated)
}
