package matchmaking

import (
	"context"
	"time"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
//
// Принципы:
// - Dependency Inversion: Domain определяет интерфейсы, Infrastructure реализует
// - Разделение по агрегатам: каждый агрегат имеет свой репозиторий
// - Движок подбора читает профили и настройки, а пишет только подборы
// ══════════════════════════════════════════════════════════════════════════════

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCE REPOSITORY
// Спортивные профили и настройки подбора. Только чтение для движка.
// ══════════════════════════════════════════════════════════════════════════════

// PreferenceRepository определяет операции чтения профилей и настроек.
type PreferenceRepository interface {
	// GetSportPreference возвращает спортивный профиль пользователя.
	// Возвращает ErrPreferenceNotFound, если профиль не найден.
	GetSportPreference(ctx context.Context, userID shared.UserID, sport shared.SportType) (*SportPreference, error)

	// GetMatcherConfiguration возвращает настройки подбора пользователя.
	// Возвращает ErrConfigurationNotFound, если настройки не найдены.
	GetMatcherConfiguration(ctx context.Context, userID shared.UserID, sport shared.SportType) (*MatcherConfiguration, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CANDIDATE REPOSITORY
// Пул потенциальных напарников.
// ══════════════════════════════════════════════════════════════════════════════

// CandidateRepository определяет операции поиска кандидатов.
type CandidateRepository interface {
	// ListVisibleCandidates возвращает всех пользователей с видимым профилем
	// в данном виде спорта, кроме самого запрашивающего.
	// Порядок выдачи не гарантируется: упорядочивание — задача ранжера.
	ListVisibleCandidates(ctx context.Context, sport shared.SportType, excludeUserID shared.UserID) ([]CandidateUser, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH REPOSITORY
// Сохранённые подборы.
// ══════════════════════════════════════════════════════════════════════════════

// MatchListOptions - параметры выборки подборов.
type MatchListOptions struct {
	// OnlyMutual - вернуть только взаимные подборы.
	OnlyMutual bool

	// Limit - максимум записей (0 = без ограничения).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// MatchRepository определяет операции для работы с подборами.
type MatchRepository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт новую запись подбора.
	// Возвращает ErrDuplicateMatch при нарушении уникальности
	// (userId, matchedUserId, sport). Уникальный индекс в хранилище —
	// источник истины, предварительная проверка Exists лишь оптимизация.
	Create(ctx context.Context, match *SkillMatch) error

	// GetByID возвращает подбор по ID.
	// Возвращает ErrMatchNotFound, если подбор не найден.
	GetByID(ctx context.Context, id string) (*SkillMatch, error)

	// GetByPair возвращает подбор для направленной пары и вида спорта.
	// Возвращает ErrMatchNotFound, если подбор не найден.
	GetByPair(ctx context.Context, userID, matchedUserID shared.UserID, sport shared.SportType) (*SkillMatch, error)

	// Update сохраняет изменённые флаги подбора (просмотрен, лайк, взаимность).
	// Возвращает ErrMatchNotFound, если подбор не найден.
	Update(ctx context.Context, match *SkillMatch) error

	// ─────────────────────────────────────────────────────────────────────────
	// Query Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Exists проверяет существование подбора для направленной пары.
	Exists(ctx context.Context, userID, matchedUserID shared.UserID, sport shared.SportType) (bool, error)

	// ListByUserAndSport возвращает подборы пользователя в данном виде спорта,
	// отсортированные по убыванию оценки совместимости.
	ListByUserAndSport(ctx context.Context, userID shared.UserID, sport shared.SportType, opts MatchListOptions) ([]*SkillMatch, error)

	// CountUnviewed возвращает число непросмотренных подборов пользователя.
	CountUnviewed(ctx context.Context, userID shared.UserID, sport shared.SportType) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// PREVIEW CACHE
// Кэш предпросмотра подбора. Опциональная зависимость: nil-кэш означает
// "всегда считать заново".
// ══════════════════════════════════════════════════════════════════════════════

// PreviewCache кэширует результат предпросмотра без записи в хранилище.
type PreviewCache interface {
	// GetPreview возвращает закешированный предпросмотр.
	// Возвращает nil, если кеш пуст или устарел.
	GetPreview(ctx context.Context, userID shared.UserID, sport shared.SportType) ([]RankedCandidate, error)

	// SetPreview сохраняет предпросмотр в кеш с TTL.
	SetPreview(ctx context.Context, userID shared.UserID, sport shared.SportType, ranked []RankedCandidate, ttl time.Duration) error

	// InvalidatePreview инвалидирует предпросмотр пользователя.
	InvalidatePreview(ctx context.Context, userID shared.UserID, sport shared.SportType) error
}
