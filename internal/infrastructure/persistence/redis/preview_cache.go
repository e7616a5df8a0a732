package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREVIEW CACHE
// Implements matchmaking.PreviewCache. A preview is a ranked candidate list
// that was computed without persisting matches; caching it keeps repeated
// preview requests from re-scoring the whole candidate pool.
// ══════════════════════════════════════════════════════════════════════════════

// PreviewCache caches ranked match previews in Redis.
type PreviewCache struct {
	cache *Cache
}

// NewPreviewCache creates a new PreviewCache.
func NewPreviewCache(cache *Cache) *PreviewCache {
	return &PreviewCache{cache: cache}
}

// cachedCandidate is the storage shape for one ranked candidate.
type cachedCandidate struct {
	UserID          int64  `json:"user_id"`
	DisplayName     string `json:"display_name"`
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
	SkillLevel      string `json:"skill_level"`
	YearsExperience int    `json:"years_experience"`
	IsCompatible    bool   `json:"is_compatible"`
	Score           int    `json:"score"`
	SkillDifference int    `json:"skill_difference"`
	Reason          string `json:"reason"`
}

func previewKey(userID shared.UserID, sport shared.SportType) string {
	return fmt.Sprintf("%s%d:%s", PrefixMatchPreview, userID.Int64(), sport.String())
}

// GetPreview returns the cached preview for a user and sport.
// Returns nil when the cache has no entry.
func (p *PreviewCache) GetPreview(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
) ([]matchmaking.RankedCandidate, error) {
	var cached []cachedCandidate
	err := p.cache.Get(ctx, previewKey(userID, sport), &cached)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}

	ranked := make([]matchmaking.RankedCandidate, 0, len(cached))
	for _, c := range cached {
		ranked = append(ranked, matchmaking.RankedCandidate{
			Candidate: matchmaking.CandidateUser{
				ID:              shared.UserID(c.UserID),
				DisplayName:     c.DisplayName,
				Bio:             c.Bio,
				Location:        c.Location,
				SkillLevel:      matchmaking.SkillLevel(c.SkillLevel),
				YearsExperience: shared.YearsExperience(c.YearsExperience),
			},
			Evaluation: matchmaking.Evaluation{
				IsCompatible:    c.IsCompatible,
				Score:           c.Score,
				SkillDifference: c.SkillDifference,
				Reason:          c.Reason,
			},
		})
	}
	return ranked, nil
}

// SetPreview stores a preview with the given TTL.
func (p *PreviewCache) SetPreview(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
	ranked []matchmaking.RankedCandidate,
	ttl time.Duration,
) error {
	if ttl <= 0 {
		ttl = TTLMatchPreview
	}

	cached := make([]cachedCandidate, 0, len(ranked))
	for _, rc := range ranked {
		cached = append(cached, cachedCandidate{
			UserID:          rc.Candidate.ID.Int64(),
			DisplayName:     rc.Candidate.DisplayName,
			Bio:             rc.Candidate.Bio,
			Location:        rc.Candidate.Location,
			SkillLevel:      rc.Candidate.SkillLevel.String(),
			YearsExperience: rc.Candidate.YearsExperience.Int(),
			IsCompatible:    rc.Evaluation.IsCompatible,
			Score:           rc.Evaluation.Score,
			SkillDifference: rc.Evaluation.SkillDifference,
			Reason:          rc.Evaluation.Reason,
		})
	}

	return p.cache.Set(ctx, previewKey(userID, sport), cached, ttl)
}

// InvalidatePreview drops the cached preview for a user and sport.
func (p *PreviewCache) InvalidatePreview(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
) error {
	return p.cache.Delete(ctx, previewKey(userID, sport))
}
