package matchmaking

import (
	"strings"
	"time"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCE ENUMS
// Настройки подбора, не влияющие на скоринг напрямую (дистанция, возраст,
// пол, расписание). Хранятся и возвращаются как есть.
// ══════════════════════════════════════════════════════════════════════════════

// DistancePreference - насколько далеко пользователь готов ехать на игру.
type DistancePreference string

const (
	DistanceNearby   DistancePreference = "nearby"
	DistanceCity     DistancePreference = "city"
	DistanceRegion   DistancePreference = "region"
	DistanceAnywhere DistancePreference = "anywhere"
)

// DefaultDistancePreference - дистанция по умолчанию.
const DefaultDistancePreference = DistanceCity

// IsValid проверяет корректность предпочтения по дистанции.
func (d DistancePreference) IsValid() bool {
	switch d {
	case DistanceNearby, DistanceCity, DistanceRegion, DistanceAnywhere:
		return true
	default:
		return false
	}
}

// GenderPreference - предпочтение по полу напарника. Пустое значение
// означает "не важно".
type GenderPreference string

const (
	GenderAny    GenderPreference = ""
	GenderMale   GenderPreference = "male"
	GenderFemale GenderPreference = "female"
)

// IsValid проверяет корректность предпочтения по полу.
func (g GenderPreference) IsValid() bool {
	switch g {
	case GenderAny, GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

// Weekday - день недели в расписании доступности.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var knownWeekdays = map[Weekday]struct{}{
	Monday: {}, Tuesday: {}, Wednesday: {}, Thursday: {},
	Friday: {}, Saturday: {}, Sunday: {},
}

// IsValid проверяет корректность дня недели.
func (w Weekday) IsValid() bool {
	_, ok := knownWeekdays[w]
	return ok
}

// TimeBucket - время суток в расписании доступности.
type TimeBucket string

const (
	MorningBucket   TimeBucket = "morning"
	AfternoonBucket TimeBucket = "afternoon"
	EveningBucket   TimeBucket = "evening"
)

// IsValid проверяет корректность времени суток.
func (t TimeBucket) IsValid() bool {
	switch t {
	case MorningBucket, AfternoonBucket, EveningBucket:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SPORT PREFERENCE
// Заявленный пользователем уровень игры в конкретном виде спорта.
// Одна запись на пару (пользователь, спорт).
// ══════════════════════════════════════════════════════════════════════════════

// SportPreference - спортивный профиль пользователя.
type SportPreference struct {
	UserID          shared.UserID
	Sport           shared.SportType
	SkillLevel      SkillLevel
	YearsExperience shared.YearsExperience
	IsVisible       bool
	UpdatedAt       time.Time
}

// NewSportPreferenceParams - параметры создания спортивного профиля.
type NewSportPreferenceParams struct {
	UserID          shared.UserID
	Sport           shared.SportType
	SkillLevel      SkillLevel
	YearsExperience shared.YearsExperience
	IsVisible       bool
}

// NewSportPreference создаёт валидный спортивный профиль.
func NewSportPreference(p NewSportPreferenceParams) (*SportPreference, error) {
	if !p.UserID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	if !p.Sport.IsValid() {
		return nil, shared.ErrInvalidSportType
	}
	if !p.SkillLevel.IsValid() {
		return nil, shared.ErrInvalidSkillLevel
	}
	if !p.YearsExperience.IsValid() {
		return nil, shared.ErrNegativeExperience
	}
	return &SportPreference{
		UserID:          p.UserID,
		Sport:           p.Sport,
		SkillLevel:      p.SkillLevel,
		YearsExperience: p.YearsExperience,
		IsVisible:       p.IsVisible,
		UpdatedAt:       time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCHER CONFIGURATION
// Политика подбора пользователя: режим сравнения уровней плюс
// информационные фильтры. Одна запись на пару (пользователь, спорт).
// ══════════════════════════════════════════════════════════════════════════════

// MatcherConfiguration - настройки подбора напарников.
type MatcherConfiguration struct {
	UserID               shared.UserID
	Sport                shared.SportType
	SkillMatchMode       SkillMatchMode
	PreferredSkillLevels SkillLevelSet
	MaxDistanceKM        float64
	DistancePreference   DistancePreference
	AgeRangeMin          int
	AgeRangeMax          int
	GenderPreference     GenderPreference
	AvailabilityDays     []Weekday
	AvailabilityTimes    []TimeBucket
	IsActive             bool
	UpdatedAt            time.Time
}

// NewMatcherConfigurationParams - параметры создания настроек подбора.
// Нулевые значения заменяются разумными дефолтами.
type NewMatcherConfigurationParams struct {
	UserID               shared.UserID
	Sport                shared.SportType
	SkillMatchMode       SkillMatchMode
	PreferredSkillLevels []SkillLevel
	MaxDistanceKM        float64
	DistancePreference   DistancePreference
	AgeRangeMin          int
	AgeRangeMax          int
	GenderPreference     GenderPreference
	AvailabilityDays     []Weekday
	AvailabilityTimes    []TimeBucket
	IsActive             bool
}

// NewMatcherConfiguration создаёт валидные настройки подбора.
func NewMatcherConfiguration(p NewMatcherConfigurationParams) (*MatcherConfiguration, error) {
	if !p.UserID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	if !p.Sport.IsValid() {
		return nil, shared.ErrInvalidSportType
	}
	mode := p.SkillMatchMode
	if mode == "" {
		mode = DefaultSkillMatchMode
	}
	if !mode.IsValid() {
		return nil, shared.ErrInvalidMatchMode
	}
	levels, err := NewSkillLevelSet(p.PreferredSkillLevels...)
	if err != nil {
		return nil, err
	}
	if mode == ModeRange && levels.IsEmpty() {
		return nil, shared.NewDomainError("matchmaking", "NewMatcherConfiguration",
			shared.ErrValidation, "range mode requires at least one preferred skill level")
	}
	dist := p.DistancePreference
	if dist == "" {
		dist = DefaultDistancePreference
	}
	if !dist.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	if !p.GenderPreference.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	if p.AgeRangeMin < 0 || p.AgeRangeMax < 0 || (p.AgeRangeMax > 0 && p.AgeRangeMax < p.AgeRangeMin) {
		return nil, shared.ErrValueOutOfRange
	}
	for _, d := range p.AvailabilityDays {
		if !d.IsValid() {
			return nil, shared.ErrInvalidInput
		}
	}
	for _, t := range p.AvailabilityTimes {
		if !t.IsValid() {
			return nil, shared.ErrInvalidInput
		}
	}
	return &MatcherConfiguration{
		UserID:               p.UserID,
		Sport:                p.Sport,
		SkillMatchMode:       mode,
		PreferredSkillLevels: levels,
		MaxDistanceKM:        p.MaxDistanceKM,
		DistancePreference:   dist,
		AgeRangeMin:          p.AgeRangeMin,
		AgeRangeMax:          p.AgeRangeMax,
		GenderPreference:     p.GenderPreference,
		AvailabilityDays:     p.AvailabilityDays,
		AvailabilityTimes:    p.AvailabilityTimes,
		IsActive:             p.IsActive,
		UpdatedAt:            time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CANDIDATE USER
// Публичная проекция другого пользователя вместе с его спортивным профилем.
// Только чтение: кандидаты приходят из хранилища и не изменяются движком.
// ══════════════════════════════════════════════════════════════════════════════

// CandidateUser - потенциальный напарник для подбора.
type CandidateUser struct {
	ID              shared.UserID
	DisplayName     string
	Bio             string
	Location        string
	SkillLevel      SkillLevel
	YearsExperience shared.YearsExperience
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILL MATCH
// Сохранённый результат подбора. Уникален по (userId, matchedUserId, sport);
// запись видна только в направлении создания, симметричная запись
// не создаётся автоматически.
// ══════════════════════════════════════════════════════════════════════════════

// SkillMatch - подобранная пара игроков.
type SkillMatch struct {
	ID                   string
	UserID               shared.UserID
	MatchedUserID        shared.UserID
	Sport                shared.SportType
	CompatibilityScore   int
	SkillLevelDifference int
	DistanceKM           *float64
	MatchReason          string
	IsViewed             bool
	IsLiked              bool
	IsMutualMatch        bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewSkillMatchParams - параметры создания записи подбора.
type NewSkillMatchParams struct {
	ID                   string
	UserID               shared.UserID
	MatchedUserID        shared.UserID
	Sport                shared.SportType
	CompatibilityScore   int
	SkillLevelDifference int
	DistanceKM           *float64
	MatchReason          string
}

// NewSkillMatch создаёт валидную запись подбора.
// Оценка приводится к диапазону [0, 100]: отрицательные значения режима "any"
// сохраняются как слабейшее совпадение.
func NewSkillMatch(p NewSkillMatchParams) (*SkillMatch, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, shared.ErrInvalidID
	}
	if !p.UserID.IsValid() || !p.MatchedUserID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	if p.UserID == p.MatchedUserID {
		return nil, shared.ErrSelfMatch
	}
	if !p.Sport.IsValid() {
		return nil, shared.ErrInvalidSportType
	}
	if p.SkillLevelDifference < 0 {
		return nil, shared.ErrNegativeValue
	}
	score := p.CompatibilityScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	now := time.Now().UTC()
	return &SkillMatch{
		ID:                   p.ID,
		UserID:               p.UserID,
		MatchedUserID:        p.MatchedUserID,
		Sport:                p.Sport,
		CompatibilityScore:   score,
		SkillLevelDifference: p.SkillLevelDifference,
		DistanceKM:           p.DistanceKM,
		MatchReason:          p.MatchReason,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// MarkViewed отмечает, что пользователь просмотрел подбор.
// Повторный просмотр не считается ошибкой.
func (m *SkillMatch) MarkViewed() {
	if m.IsViewed {
		return
	}
	m.IsViewed = true
	m.UpdatedAt = time.Now().UTC()
}

// Like отмечает, что подбор понравился пользователю.
// Возвращает ErrAlreadyProcessed при повторном лайке.
func (m *SkillMatch) Like() error {
	if m.IsLiked {
		return shared.ErrAlreadyProcessed
	}
	m.IsLiked = true
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkMutual отмечает взаимный интерес обеих сторон.
func (m *SkillMatch) MarkMutual() {
	m.IsMutualMatch = true
	m.UpdatedAt = time.Now().UTC()
}
