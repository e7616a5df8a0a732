package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH FEEDBACK COMMANDS
// A user reacts to a generated match: marks it viewed or likes it.
// A like becomes mutual when the matched user has already liked the
// symmetric record for the same sport.
// ══════════════════════════════════════════════════════════════════════════════

// MarkMatchViewedCommand marks a match as seen by its owner.
type MarkMatchViewedCommand struct {
	// MatchID is the match record identifier.
	MatchID string

	// UserID is the acting user; must own the match.
	UserID int64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c MarkMatchViewedCommand) Validate() error {
	if c.MatchID == "" {
		return errors.New("mark_match_viewed: match_id is required")
	}
	if c.UserID <= 0 {
		return errors.New("mark_match_viewed: user_id is required")
	}
	return nil
}

// LikeMatchCommand records that the owner likes a match.
type LikeMatchCommand struct {
	MatchID       string
	UserID        int64
	CorrelationID string
}

// Validate validates the command.
func (c LikeMatchCommand) Validate() error {
	if c.MatchID == "" {
		return errors.New("like_match: match_id is required")
	}
	if c.UserID <= 0 {
		return errors.New("like_match: user_id is required")
	}
	return nil
}

// LikeMatchResult contains the outcome of a like.
type LikeMatchResult struct {
	MatchID string

	// IsMutual is true when both sides have now liked each other.
	IsMutual bool

	LikedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// MatchFeedbackHandler handles viewed and liked reactions on matches.
type MatchFeedbackHandler struct {
	matchRepo matchmaking.MatchRepository
	cache     matchmaking.PreviewCache // optional
	logger    *slog.Logger
}

// NewMatchFeedbackHandler creates a new MatchFeedbackHandler.
// The preview cache is optional; pass nil when previews are not cached.
func NewMatchFeedbackHandler(
	matchRepo matchmaking.MatchRepository,
	cache matchmaking.PreviewCache,
	logger *slog.Logger,
) *MatchFeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchFeedbackHandler{
		matchRepo: matchRepo,
		cache:     cache,
		logger:    logger.With("handler", "match_feedback"),
	}
}

// HandleMarkViewed executes the mark viewed command.
// Marking an already viewed match again is a no-op, not an error.
func (h *MatchFeedbackHandler) HandleMarkViewed(
	ctx context.Context,
	cmd MarkMatchViewedCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("mark_match_viewed: validation failed: %w", err)
	}

	match, err := h.loadOwnedMatch(ctx, cmd.MatchID, cmd.UserID)
	if err != nil {
		return fmt.Errorf("mark_match_viewed: %w", err)
	}
	if match.IsViewed {
		return nil
	}

	match.MarkViewed()
	if err := h.matchRepo.Update(ctx, match); err != nil {
		return fmt.Errorf("mark_match_viewed: failed to save: %w", err)
	}

	h.invalidatePreviews(ctx, match, false)
	return nil
}

// HandleLike executes the like command. When the matched user has already
// liked the symmetric record, both records are promoted to mutual.
func (h *MatchFeedbackHandler) HandleLike(
	ctx context.Context,
	cmd LikeMatchCommand,
) (*LikeMatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("like_match: validation failed: %w", err)
	}

	match, err := h.loadOwnedMatch(ctx, cmd.MatchID, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("like_match: %w", err)
	}

	// A repeat like records nothing new, but mutuality may still need
	// repair after an earlier partial promotion, so the reverse check
	// below runs on every like.
	dirty := true
	if err := match.Like(); err != nil {
		if !errors.Is(err, shared.ErrAlreadyProcessed) {
			return nil, fmt.Errorf("like_match: %w", err)
		}
		dirty = false
	}
	changed := dirty

	// Check the symmetric record: the matched user's own match pointing back.
	reverse, err := h.matchRepo.GetByPair(ctx, match.MatchedUserID, match.UserID, match.Sport)
	switch {
	case err == nil && reverse.IsLiked:
		if !match.IsMutualMatch {
			match.MarkMutual()
			dirty = true
			changed = true
		}
		if !reverse.IsMutualMatch {
			reverse.MarkMutual()
			if err := h.matchRepo.Update(ctx, reverse); err != nil {
				h.logger.Error("failed to promote reverse match to mutual",
					"match_id", reverse.ID, "error", err)
			} else {
				changed = true
			}
		}
	case err != nil && !shared.IsNotFound(err):
		h.logger.Error("failed to check reverse match",
			"match_id", match.ID, "error", err)
	}

	if dirty {
		if err := h.matchRepo.Update(ctx, match); err != nil {
			return nil, fmt.Errorf("like_match: failed to save: %w", err)
		}
	}
	if changed {
		h.invalidatePreviews(ctx, match, true)
	}

	return &LikeMatchResult{
		MatchID:  match.ID,
		IsMutual: match.IsMutualMatch,
		LikedAt:  match.UpdatedAt,
	}, nil
}

// invalidatePreviews drops the cached previews touched by a feedback change.
// A nil cache means previews are always recomputed, nothing to drop.
func (h *MatchFeedbackHandler) invalidatePreviews(
	ctx context.Context,
	match *matchmaking.SkillMatch,
	includeMatched bool,
) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidatePreview(ctx, match.UserID, match.Sport); err != nil {
		h.logger.Warn("failed to invalidate preview cache",
			"user_id", match.UserID.Int64(), "error", err)
	}
	if !includeMatched {
		return
	}
	if err := h.cache.InvalidatePreview(ctx, match.MatchedUserID, match.Sport); err != nil {
		h.logger.Warn("failed to invalidate preview cache",
			"user_id", match.MatchedUserID.Int64(), "error", err)
	}
}

// loadOwnedMatch loads a match and verifies ownership.
func (h *MatchFeedbackHandler) loadOwnedMatch(
	ctx context.Context,
	matchID string,
	userID int64,
) (*matchmaking.SkillMatch, error) {
	match, err := h.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.UserID.Int64() != userID {
		return nil, shared.ErrMatchNotFound
	}
	return match, nil
}
