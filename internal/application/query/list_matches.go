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
// LIST MATCHES QUERY
// Список сохранённых подборов пользователя с количеством непросмотренных.
// Подборы видны только в направлении создания.
// ══════════════════════════════════════════════════════════════════════════════

// ListMatchesQuery содержит параметры выборки подборов.
type ListMatchesQuery struct {
	// UserID - владелец подборов.
	UserID int64

	// Sport - вид спорта.
	Sport string

	// OnlyMutual - вернуть только взаимные подборы.
	OnlyMutual bool

	// Limit - максимум записей (по умолчанию 20, максимум 100).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров.
func (q *ListMatchesQuery) Validate() error {
	if q.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if q.Sport == "" {
		return errors.New("sport is required")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// MatchDTO - DTO одного сохранённого подбора.
type MatchDTO struct {
	// ID - идентификатор подбора.
	ID string `json:"id"`

	// MatchedUserID - подобранный игрок.
	MatchedUserID int64 `json:"matched_user_id"`

	// Sport - вид спорта.
	Sport string `json:"sport"`

	// CompatibilityScore - оценка совместимости (0-100).
	CompatibilityScore int `json:"compatibility_score"`

	// SkillLevelDifference - разница уровней.
	SkillLevelDifference int `json:"skill_level_difference"`

	// DistanceKM - расстояние (пока всегда null).
	DistanceKM *float64 `json:"distance_km,omitempty"`

	// MatchReason - объяснение совместимости.
	MatchReason string `json:"match_reason"`

	// IsViewed - просмотрен ли подбор.
	IsViewed bool `json:"is_viewed"`

	// IsLiked - понравился ли подбор.
	IsLiked bool `json:"is_liked"`

	// IsMutualMatch - взаимный ли интерес.
	IsMutualMatch bool `json:"is_mutual_match"`

	// CreatedAt - когда создан.
	CreatedAt time.Time `json:"created_at"`
}

// ListMatchesResult содержит результат выборки.
type ListMatchesResult struct {
	// Matches - подборы по убыванию оценки совместимости.
	Matches []MatchDTO `json:"matches"`

	// UnviewedCount - сколько подборов ещё не просмотрено.
	UnviewedCount int `json:"unviewed_count"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListMatchesHandler обрабатывает запрос списка подборов.
type ListMatchesHandler struct {
	matchRepo matchmaking.MatchRepository
	logger    *slog.Logger
}

// NewListMatchesHandler создаёт новый обработчик.
func NewListMatchesHandler(
	matchRepo matchmaking.MatchRepository,
	logger *slog.Logger,
) *ListMatchesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListMatchesHandler{
		matchRepo: matchRepo,
		logger:    logger.With("handler", "list_matches"),
	}
}

// Handle выполняет выборку подборов пользователя.
func (h *ListMatchesHandler) Handle(
	ctx context.Context,
	q ListMatchesQuery,
) (*ListMatchesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	userID, err := shared.NewUserID(q.UserID)
	if err != nil {
		return nil, err
	}
	sport, err := shared.NewSportType(q.Sport)
	if err != nil {
		return nil, err
	}

	matches, err := h.matchRepo.ListByUserAndSport(ctx, userID, sport, matchmaking.MatchListOptions{
		OnlyMutual: q.OnlyMutual,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}

	unviewed, err := h.matchRepo.CountUnviewed(ctx, userID, sport)
	if err != nil {
		// Счётчик не критичен для выдачи списка.
		h.logger.Warn("failed to count unviewed matches",
			"user_id", userID.Int64(), "error", err)
		unviewed = 0
	}

	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, MatchDTO{
			ID:                   m.ID,
			MatchedUserID:        m.MatchedUserID.Int64(),
			Sport:                m.Sport.String(),
			CompatibilityScore:   m.CompatibilityScore,
			SkillLevelDifference: m.SkillLevelDifference,
			DistanceKM:           m.DistanceKM,
			MatchReason:          m.MatchReason,
			IsViewed:             m.IsViewed,
			IsLiked:              m.IsLiked,
			IsMutualMatch:        m.IsMutualMatch,
			CreatedAt:            m.CreatedAt,
		})
	}

	return &ListMatchesResult{
		Matches:       dtos,
		UnviewedCount: unviewed,
	}, nil
}
