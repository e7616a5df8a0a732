package matchmaking

import (
	"sort"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPATIBILITY EVALUATOR
//
// Оценка одной пары (запрашивающий, кандидат): решение о совместимости,
// оценка 0-100 и текстовое объяснение для пользователя.
//
// Порядок расчёта фиксирован: сначала базовая оценка по режиму,
// затем бонус за близкий опыт, в конце верхняя граница 100.
// Нижняя граница НЕ применяется: режим "any" может дать отрицательную
// оценку, и потребители обязаны трактовать её как слабейшее совпадение.
// ══════════════════════════════════════════════════════════════════════════════

// Тексты причин совместимости. Показываются пользователю как есть.
const (
	ReasonExactMatch      = "Exact skill level match"
	ReasonSimilarSkill    = "Similar skill level"
	ReasonWithinRange     = "Within preferred skill range"
	ReasonOpenToAll       = "Open to all skill levels"
	ReasonExperienceBonus = " + Similar experience"
)

const (
	// MaxCompatibilityScore - верхняя граница оценки.
	MaxCompatibilityScore = 100

	// experienceBonus - прибавка за близкий опыт.
	experienceBonus = 10

	// experienceBonusMaxDiff - максимальная разница в годах опыта для бонуса.
	experienceBonusMaxDiff = 2
)

// Evaluation - результат оценки одной пары.
type Evaluation struct {
	// IsCompatible - подходит ли кандидат при данном режиме.
	IsCompatible bool

	// Score - оценка совместимости. Для совместимых кандидатов в режиме
	// "any" может быть меньше нуля до сохранения.
	Score int

	// SkillDifference - абсолютное расстояние уровней на шкале.
	SkillDifference int

	// Reason - объяснение для пользователя. Пустое для несовместимых.
	Reason string
}

// Evaluate оценивает совместимость кандидата с запрашивающим пользователем.
// Неизвестный уровень любой из сторон — ошибка: такой кандидат исключается
// из подбора целиком, а не получает нулевую оценку.
func Evaluate(
	requesterSkill SkillLevel,
	requesterExp shared.YearsExperience,
	candidate CandidateUser,
	cfg *MatcherConfiguration,
) (Evaluation, error) {
	if cfg == nil {
		return Evaluation{}, shared.ErrConfigurationNotFound
	}

	diff, err := SkillDistance(requesterSkill, candidate.SkillLevel)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{SkillDifference: diff}

	switch cfg.SkillMatchMode {
	case ModeExact:
		if diff == 0 {
			ev.IsCompatible = true
			ev.Score = 100
			ev.Reason = ReasonExactMatch
		}

	case ModeSimilar:
		if diff <= 1 {
			ev.IsCompatible = true
			ev.Score = 100 - diff*20
			ev.Reason = ReasonSimilarSkill
		}

	case ModeRange:
		if cfg.PreferredSkillLevels.Contains(candidate.SkillLevel) {
			ev.IsCompatible = true
			ev.Score = 90
			ev.Reason = ReasonWithinRange
		}

	case ModeAny:
		ev.IsCompatible = true
		ev.Score = 80 - diff*10
		ev.Reason = ReasonOpenToAll

	default:
		return Evaluation{}, shared.ErrInvalidMatchMode
	}

	if !ev.IsCompatible {
		return ev, nil
	}

	// Бонус за близкий опыт начисляется после базовой оценки,
	// чтобы текст причины собирался в предсказуемом порядке.
	if requesterExp.DiffAbs(candidate.YearsExperience) <= experienceBonusMaxDiff {
		ev.Score += experienceBonus
		ev.Reason += ReasonExperienceBonus
	}

	if ev.Score > MaxCompatibilityScore {
		ev.Score = MaxCompatibilityScore
	}

	return ev, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH RANKER
// Упорядочивание оценённых кандидатов и ограничение размера выдачи.
// ══════════════════════════════════════════════════════════════════════════════

// MaxMatchesPerRun - максимум подборов за один запуск.
const MaxMatchesPerRun = 10

// RankedCandidate - кандидат вместе с результатом его оценки.
type RankedCandidate struct {
	Candidate  CandidateUser
	Evaluation Evaluation
}

// Rank оставляет только совместимых кандидатов, сортирует их по убыванию
// оценки и обрезает до MaxMatchesPerRun. Сортировка стабильная: при равной
// оценке сохраняется порядок, в котором кандидаты пришли из хранилища.
func Rank(evaluated []RankedCandidate) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(evaluated))
	for _, rc := range evaluated {
		if rc.Evaluation.IsCompatible {
			ranked = append(ranked, rc)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Evaluation.Score > ranked[j].Evaluation.Score
	})

	if len(ranked) > MaxMatchesPerRun {
		ranked = ranked[:MaxMatchesPerRun]
	}
	return ranked
}
