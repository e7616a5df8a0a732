// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE MATCHES COMMAND
// The engine entry point: loads the requester's sport preference and matcher
// configuration, evaluates every visible candidate, ranks the compatible ones
// and persists a match record per new pair.
//
// Missing preference or configuration is not an error: the caller gets an
// empty result. Read failures in the loading steps are also reported as an
// empty result, preserving the existing caller contract.
// ══════════════════════════════════════════════════════════════════════════════

// GenerateMatchesCommand contains the data to generate matches.
type GenerateMatchesCommand struct {
	// UserID is the requesting user.
	UserID int64

	// Sport is the sport identifier to match in.
	Sport string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c GenerateMatchesCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("generate_matches: user_id is required")
	}
	if c.Sport == "" {
		return errors.New("generate_matches: sport is required")
	}
	return nil
}

// GeneratedMatch is one ranked match enriched with the candidate's
// public profile fields.
type GeneratedMatch struct {
	MatchedUserID        int64
	DisplayName          string
	Bio                  string
	Location             string
	SkillLevel           string
	YearsExperience      int
	CompatibilityScore   int
	SkillLevelDifference int
	DistanceKM           *float64
	MatchReason          string

	// AlreadyRecorded is true when a match record for this pair existed
	// before this run. Such pairs are reported but not re-persisted.
	AlreadyRecorded bool
}

// GenerateMatchesResult contains the result of a generation run.
type GenerateMatchesResult struct {
	UserID          int64
	Sport           string
	Matches         []GeneratedMatch
	CreatedCount    int
	SkippedExisting int
	GeneratedAt     time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GenerateMatchesHandler handles the GenerateMatchesCommand.
type GenerateMatchesHandler struct {
	prefRepo      matchmaking.PreferenceRepository
	candidateRepo matchmaking.CandidateRepository
	matchRepo     matchmaking.MatchRepository
	logger        *slog.Logger
}

// NewGenerateMatchesHandler creates a new GenerateMatchesHandler.
func NewGenerateMatchesHandler(
	prefRepo matchmaking.PreferenceRepository,
	candidateRepo matchmaking.CandidateRepository,
	matchRepo matchmaking.MatchRepository,
	logger *slog.Logger,
) *GenerateMatchesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateMatchesHandler{
		prefRepo:      prefRepo,
		candidateRepo: candidateRepo,
		matchRepo:     matchRepo,
		logger:        logger.With("handler", "generate_matches"),
	}
}

// Handle executes the generate matches command.
//
// The run is linear and single-pass: preferences, candidates, evaluation,
// ranking, persistence. Persistence failures for one candidate are logged
// and do not abort the remaining candidates — partial success is expected,
// and the unique index in storage is the source of truth for deduplication.
func (h *GenerateMatchesHandler) Handle(
	ctx context.Context,
	cmd GenerateMatchesCommand,
) (*GenerateMatchesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("generate_matches: validation failed: %w", err)
	}

	result := &GenerateMatchesResult{
		UserID:      cmd.UserID,
		Sport:       cmd.Sport,
		Matches:     []GeneratedMatch{},
		GeneratedAt: time.Now().UTC(),
	}

	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("generate_matches: %w", err)
	}
	sport, err := shared.NewSportType(cmd.Sport)
	if err != nil {
		return nil, fmt.Errorf("generate_matches: %w", err)
	}

	// Steps 1-3: load preference, configuration and candidate pool.
	// Absent data and read failures both surface as an empty result.
	pref, cfg, candidates, ok := h.loadInputs(ctx, userID, sport)
	if !ok {
		return result, nil
	}

	ranked := evaluateAndRank(h.logger, pref, cfg, candidates)

	// Step 6: persist in rank order. Existing pairs stay in the output
	// but are not re-created and never re-scored.
	for _, rc := range ranked {
		gm := enrichMatch(rc)

		exist, err := h.matchRepo.Exists(ctx, userID, rc.Candidate.ID, sport)
		if err != nil {
			h.logger.Error("existence check failed, skipping persistence",
				"user_id", userID.Int64(),
				"matched_user_id", rc.Candidate.ID.Int64(),
				"error", err)
			result.Matches = append(result.Matches, gm)
			continue
		}
		if exist {
			gm.AlreadyRecorded = true
			result.SkippedExisting++
			result.Matches = append(result.Matches, gm)
			continue
		}

		match, err := matchmaking.NewSkillMatch(matchmaking.NewSkillMatchParams{
			ID:                   uuid.NewString(),
			UserID:               userID,
			MatchedUserID:        rc.Candidate.ID,
			Sport:                sport,
			CompatibilityScore:   rc.Evaluation.Score,
			SkillLevelDifference: rc.Evaluation.SkillDifference,
			DistanceKM:           nil, // real distance is not computed yet
			MatchReason:          rc.Evaluation.Reason,
		})
		if err != nil {
			h.logger.Error("failed to build match record",
				"matched_user_id", rc.Candidate.ID.Int64(),
				"error", err)
			result.Matches = append(result.Matches, gm)
			continue
		}

		if err := h.matchRepo.Create(ctx, match); err != nil {
			if errors.Is(err, shared.ErrDuplicateMatch) {
				// Lost the race with a concurrent run for the same pair.
				h.logger.Warn("duplicate match, skipping",
					"matched_user_id", rc.Candidate.ID.Int64())
				gm.AlreadyRecorded = true
				result.SkippedExisting++
			} else {
				h.logger.Error("failed to persist match",
					"matched_user_id", rc.Candidate.ID.Int64(),
					"error", err)
			}
			result.Matches = append(result.Matches, gm)
			continue
		}

		result.CreatedCount++
		result.Matches = append(result.Matches, gm)
	}

	h.logger.Info("matches generated",
		"user_id", userID.Int64(),
		"sport", sport.String(),
		"returned", len(result.Matches),
		"created", result.CreatedCount,
		"skipped_existing", result.SkippedExisting)

	return result, nil
}

// loadInputs performs the read-only loading steps. The boolean reports
// whether matching can proceed.
func (h *GenerateMatchesHandler) loadInputs(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
) (*matchmaking.SportPreference, *matchmaking.MatcherConfiguration, []matchmaking.CandidateUser, bool) {
	pref, err := h.prefRepo.GetSportPreference(ctx, userID, sport)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Debug("no sport preference, nothing to match",
				"user_id", userID.Int64(), "sport", sport.String())
		} else {
			h.logger.Error("failed to load sport preference",
				"user_id", userID.Int64(), "error", err)
		}
		return nil, nil, nil, false
	}

	cfg, err := h.prefRepo.GetMatcherConfiguration(ctx, userID, sport)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Debug("no matcher configuration, nothing to match",
				"user_id", userID.Int64(), "sport", sport.String())
		} else {
			h.logger.Error("failed to load matcher configuration",
				"user_id", userID.Int64(), "error", err)
		}
		return nil, nil, nil, false
	}

	candidates, err := h.candidateRepo.ListVisibleCandidates(ctx, sport, userID)
	if err != nil {
		h.logger.Error("failed to load candidates",
			"sport", sport.String(), "error", err)
		return nil, nil, nil, false
	}

	return pref, cfg, candidates, true
}

// evaluateAndRank scores every candidate and returns the ranked compatible
// subset. A candidate with corrupt skill data is excluded and logged loudly,
// never silently scored as zero.
func evaluateAndRank(
	log *slog.Logger,
	pref *matchmaking.SportPreference,
	cfg *matchmaking.MatcherConfiguration,
	candidates []matchmaking.CandidateUser,
) []matchmaking.RankedCandidate {
	evaluated := make([]matchmaking.RankedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		ev, err := matchmaking.Evaluate(pref.SkillLevel, pref.YearsExperience, cand, cfg)
		if err != nil {
			log.Error("excluding candidate with invalid skill data",
				"candidate_id", cand.ID.Int64(),
				"skill_level", cand.SkillLevel.String(),
				"error", err)
			continue
		}
		evaluated = append(evaluated, matchmaking.RankedCandidate{
			Candidate:  cand,
			Evaluation: ev,
		})
	}
	return matchmaking.Rank(evaluated)
}

// enrichMatch flattens a ranked candidate into the API-facing match shape.
func enrichMatch(rc matchmaking.RankedCandidate) GeneratedMatch {
	return GeneratedMatch{
		MatchedUserID:        rc.Candidate.ID.Int64(),
		DisplayName:          rc.Candidate.DisplayName,
		Bio:                  rc.Candidate.Bio,
		Location:             rc.Candidate.Location,
		SkillLevel:           rc.Candidate.SkillLevel.String(),
		YearsExperience:      rc.Candidate.YearsExperience.Int(),
		CompatibilityScore:   rc.Evaluation.Score,
		SkillLevelDifference: rc.Evaluation.SkillDifference,
		DistanceKM:           nil,
		MatchReason:          rc.Evaluation.Reason,
	}
}
