// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND COMPATIBLE PLAYERS QUERY
// Предпросмотр подбора: те же шаги загрузки, оценки и ранжирования,
// что и при генерации, но без записи в хранилище. Предпросмотр и генерация
// используют один и тот же оценщик и ранжер, поэтому порядок и оценки
// в обоих режимах совпадают.
// ══════════════════════════════════════════════════════════════════════════════

// previewTTL - время жизни закешированного предпросмотра.
const previewTTL = 5 * time.Minute

// FindCompatiblePlayersQuery содержит параметры предпросмотра.
type FindCompatiblePlayersQuery struct {
	// RequesterID - ID пользователя, который ищет напарников.
	RequesterID int64

	// Sport - вид спорта.
	Sport string

	// BypassCache - пересчитать, игнорируя кеш.
	BypassCache bool
}

// Validate проверяет корректность параметров.
func (q FindCompatiblePlayersQuery) Validate() error {
	if q.RequesterID <= 0 {
		return errors.New("requester_id is required")
	}
	if q.Sport == "" {
		return errors.New("sport is required")
	}
	return nil
}

// CompatiblePlayerDTO - DTO одного совместимого игрока.
type CompatiblePlayerDTO struct {
	// UserID - ID игрока.
	UserID int64 `json:"user_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Bio - о себе.
	Bio string `json:"bio,omitempty"`

	// Location - город/район.
	Location string `json:"location,omitempty"`

	// SkillLevel - уровень игры.
	SkillLevel string `json:"skill_level"`

	// YearsExperience - лет опыта.
	YearsExperience int `json:"years_experience"`

	// CompatibilityScore - оценка совместимости.
	CompatibilityScore int `json:"compatibility_score"`

	// SkillLevelDifference - разница уровней на шкале.
	SkillLevelDifference int `json:"skill_level_difference"`

	// DistanceKM - расстояние (пока всегда null).
	DistanceKM *float64 `json:"distance_km,omitempty"`

	// MatchReason - объяснение совместимости.
	MatchReason string `json:"match_reason"`
}

// FindCompatiblePlayersResult содержит результат предпросмотра.
type FindCompatiblePlayersResult struct {
	// Players - совместимые игроки по убыванию оценки.
	Players []CompatiblePlayerDTO `json:"players"`

	// TotalCandidates - сколько кандидатов было в пуле до оценки.
	TotalCandidates int `json:"total_candidates"`

	// FromCache - результат взят из кеша.
	FromCache bool `json:"from_cache"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// FindCompatiblePlayersHandler обрабатывает запрос предпросмотра.
type FindCompatiblePlayersHandler struct {
	prefRepo      matchmaking.PreferenceRepository
	candidateRepo matchmaking.CandidateRepository
	cache         matchmaking.PreviewCache // Опциональный кеш
	logger        *slog.Logger
}

// NewFindCompatiblePlayersHandler создаёт новый обработчик.
func NewFindCompatiblePlayersHandler(
	prefRepo matchmaking.PreferenceRepository,
	candidateRepo matchmaking.CandidateRepository,
	cache matchmaking.PreviewCache,
	logger *slog.Logger,
) *FindCompatiblePlayersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FindCompatiblePlayersHandler{
		prefRepo:      prefRepo,
		candidateRepo: candidateRepo,
		cache:         cache,
		logger:        logger.With("handler", "find_compatible_players"),
	}
}

// Handle выполняет предпросмотр подбора.
// Отсутствие профиля или настроек — пустой результат, не ошибка.
func (h *FindCompatiblePlayersHandler) Handle(
	ctx context.Context,
	q FindCompatiblePlayersQuery,
) (*FindCompatiblePlayersResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &FindCompatiblePlayersResult{Players: []CompatiblePlayerDTO{}}

	userID, err := shared.NewUserID(q.RequesterID)
	if err != nil {
		return nil, err
	}
	sport, err := shared.NewSportType(q.Sport)
	if err != nil {
		return nil, err
	}

	if !q.BypassCache && h.cache != nil {
		cached, err := h.cache.GetPreview(ctx, userID, sport)
		if err != nil {
			h.logger.Warn("preview cache read failed",
				"user_id", userID.Int64(), "error", err)
		} else if cached != nil {
			result.Players = toPlayerDTOs(cached)
			result.FromCache = true
			return result, nil
		}
	}

	pref, err := h.prefRepo.GetSportPreference(ctx, userID, sport)
	if err != nil {
		h.logReadFailure("sport preference", userID, err)
		return result, nil
	}
	cfg, err := h.prefRepo.GetMatcherConfiguration(ctx, userID, sport)
	if err != nil {
		h.logReadFailure("matcher configuration", userID, err)
		return result, nil
	}
	candidates, err := h.candidateRepo.ListVisibleCandidates(ctx, sport, userID)
	if err != nil {
		h.logReadFailure("candidates", userID, err)
		return result, nil
	}
	result.TotalCandidates = len(candidates)

	evaluated := make([]matchmaking.RankedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		ev, err := matchmaking.Evaluate(pref.SkillLevel, pref.YearsExperience, cand, cfg)
		if err != nil {
			h.logger.Error("excluding candidate with invalid skill data",
				"candidate_id", cand.ID.Int64(), "error", err)
			continue
		}
		evaluated = append(evaluated, matchmaking.RankedCandidate{
			Candidate:  cand,
			Evaluation: ev,
		})
	}
	ranked := matchmaking.Rank(evaluated)

	if h.cache != nil {
		if err := h.cache.SetPreview(ctx, userID, sport, ranked, previewTTL); err != nil {
			h.logger.Warn("preview cache write failed",
				"user_id", userID.Int64(), "error", err)
		}
	}

	result.Players = toPlayerDTOs(ranked)
	return result, nil
}

func (h *FindCompatiblePlayersHandler) logReadFailure(what string, userID shared.UserID, err error) {
	if shared.IsNotFound(err) {
		h.logger.Debug("no "+what+", nothing to preview", "user_id", userID.Int64())
		return
	}
	h.logger.Error("failed to load "+what, "user_id", userID.Int64(), "error", err)
}

func toPlayerDTOs(ranked []matchmaking.RankedCandidate) []CompatiblePlayerDTO {
	players := make([]CompatiblePlayerDTO, 0, len(ranked))
	for _, rc := range ranked {
		players = append(players, CompatiblePlayerDTO{
			UserID:               rc.Candidate.ID.Int64(),
			DisplayName:          rc.Candidate.DisplayName,
			Bio:                  rc.Candidate.Bio,
			Location:             rc.Candidate.Location,
			SkillLevel:           rc.Candidate.SkillLevel.String(),
			YearsExperience:      rc.Candidate.YearsExperience.Int(),
			CompatibilityScore:   rc.Evaluation.Score,
			SkillLevelDifference: rc.Evaluation.SkillDifference,
			MatchReason:          rc.Evaluation.Reason,
		})
	}
	return players
}
