package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakePrefRepo struct {
	pref       *matchmaking.SportPreference
	cfg        *matchmaking.MatcherConfiguration
	candidates []matchmaking.CandidateUser

	candidatesErr error
}

func (r *fakePrefRepo) GetSportPreference(_ context.Context, _ shared.UserID, _ shared.SportType) (*matchmaking.SportPreference, error) {
	if r.pref == nil {
		return nil, shared.ErrPreferenceNotFound
	}
	return r.pref, nil
}

func (r *fakePrefRepo) GetMatcherConfiguration(_ context.Context, _ shared.UserID, _ shared.SportType) (*matchmaking.MatcherConfiguration, error) {
	if r.cfg == nil {
		return nil, shared.ErrConfigurationNotFound
	}
	return r.cfg, nil
}

func (r *fakePrefRepo) ListVisibleCandidates(_ context.Context, _ shared.SportType, _ shared.UserID) ([]matchmaking.CandidateUser, error) {
	if r.candidatesErr != nil {
		return nil, r.candidatesErr
	}
	return r.candidates, nil
}

type fakePreviewCache struct {
	stored map[string][]matchmaking.RankedCandidate

	getErr error
	setErr error

	gets int
	sets int
}

func newFakePreviewCache() *fakePreviewCache {
	return &fakePreviewCache{stored: make(map[string][]matchmaking.RankedCandidate)}
}

func cacheKey(userID shared.UserID, sport shared.SportType) string {
	return fmt.Sprintf("%d:%s", userID.Int64(), sport)
}

func (c *fakePreviewCache) GetPreview(_ context.Context, userID shared.UserID, sport shared.SportType) ([]matchmaking.RankedCandidate, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.stored[cacheKey(userID, sport)], nil
}

func (c *fakePreviewCache) SetPreview(_ context.Context, userID shared.UserID, sport shared.SportType, ranked []matchmaking.RankedCandidate, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.stored[cacheKey(userID, sport)] = ranked
	return nil
}

func (c *fakePreviewCache) InvalidatePreview(_ context.Context, userID shared.UserID, sport shared.SportType) error {
	delete(c.stored, cacheKey(userID, sport))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURES
// ══════════════════════════════════════════════════════════════════════════════

func previewRepo(t *testing.T) *fakePrefRepo {
	t.Helper()
	pref, err := matchmaking.NewSportPreference(matchmaking.NewSportPreferenceParams{
		UserID:          1,
		Sport:           shared.SportTennis,
		SkillLevel:      matchmaking.SkillIntermediate,
		YearsExperience: 3,
		IsVisible:       true,
	})
	require.NoError(t, err)
	cfg, err := matchmaking.NewMatcherConfiguration(matchmaking.NewMatcherConfigurationParams{
		UserID:         1,
		Sport:          shared.SportTennis,
		SkillMatchMode: matchmaking.ModeSimilar,
		IsActive:       true,
	})
	require.NoError(t, err)
	return &fakePrefRepo{
		pref: pref,
		cfg:  cfg,
		candidates: []matchmaking.CandidateUser{
			{ID: 2, DisplayName: "Aigerim", SkillLevel: matchmaking.SkillAdvanced, YearsExperience: 20},
			{ID: 3, DisplayName: "Daniyar", SkillLevel: matchmaking.SkillIntermediate, YearsExperience: 4},
			{ID: 4, DisplayName: "Sanzhar", SkillLevel: matchmaking.SkillExpert, YearsExperience: 15},
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestFindCompatiblePlayers(t *testing.T) {
	repo := previewRepo(t)
	h := NewFindCompatiblePlayersHandler(repo, repo, nil, nil)

	res, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 3, res.TotalCandidates)
	require.Len(t, res.Players, 2, "expert is outside the similar window")

	// Order and scores match generation: same evaluator and ranker.
	assert.Equal(t, int64(3), res.Players[0].UserID)
	assert.Equal(t, 100, res.Players[0].CompatibilityScore)
	assert.Equal(t, int64(2), res.Players[1].UserID)
	assert.Equal(t, 80, res.Players[1].CompatibilityScore)
}

func TestFindCompatiblePlayers_Validation(t *testing.T) {
	repo := previewRepo(t)
	h := NewFindCompatiblePlayersHandler(repo, repo, nil, nil)

	_, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 0, Sport: "tennis"})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: ""})
	assert.Error(t, err)
}

func TestFindCompatiblePlayers_MissingPreference(t *testing.T) {
	repo := previewRepo(t)
	repo.pref = nil
	h := NewFindCompatiblePlayersHandler(repo, repo, nil, nil)

	res, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err, "absent preference yields an empty result, not an error")
	assert.Empty(t, res.Players)
}

func TestFindCompatiblePlayers_ReadFailure(t *testing.T) {
	repo := previewRepo(t)
	repo.candidatesErr = errors.New("storage down")
	h := NewFindCompatiblePlayersHandler(repo, repo, nil, nil)

	res, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err)
	assert.Empty(t, res.Players)
}

func TestFindCompatiblePlayers_CacheRoundTrip(t *testing.T) {
	repo := previewRepo(t)
	cache := newFakePreviewCache()
	h := NewFindCompatiblePlayersHandler(repo, repo, cache, nil)

	first, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, cache.sets)

	second, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, cache.sets, "repeat request does not recompute")
	assert.Equal(t, first.Players, second.Players)
}

func TestFindCompatiblePlayers_BypassCache(t *testing.T) {
	repo := previewRepo(t)
	cache := newFakePreviewCache()
	h := NewFindCompatiblePlayersHandler(repo, repo, cache, nil)

	_, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis", BypassCache: true})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 1, cache.gets, "cache is not read on bypass")
	assert.Equal(t, 2, cache.sets, "recomputed result is cached again")
}

func TestFindCompatiblePlayers_CacheFailuresAreSoft(t *testing.T) {
	repo := previewRepo(t)
	cache := newFakePreviewCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	h := NewFindCompatiblePlayersHandler(repo, repo, cache, nil)

	res, err := h.Handle(context.Background(), FindCompatiblePlayersQuery{RequesterID: 1, Sport: "tennis"})
	require.NoError(t, err, "unavailable cache does not break the preview")
	assert.Len(t, res.Players, 2)
	assert.False(t, res.FromCache)
}
