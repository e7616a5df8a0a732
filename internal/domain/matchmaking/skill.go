package matchmaking

import (
	"strings"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SKILL SCALE
//
// Фиксированная упорядоченная шкала уровней игры. Все расчёты совместимости
// опираются на порядковый номер уровня, а не на строковое сравнение.
//
// Философия подбора: "Спорт интереснее вместе" — мы ищем напарника
// подходящего уровня, а не самого сильного игрока.
// ══════════════════════════════════════════════════════════════════════════════

// SkillLevel представляет уровень игры пользователя в конкретном виде спорта.
type SkillLevel string

const (
	// SkillBeginner - новичок.
	SkillBeginner SkillLevel = "beginner"

	// SkillIntermediate - любитель.
	SkillIntermediate SkillLevel = "intermediate"

	// SkillAdvanced - продвинутый игрок.
	SkillAdvanced SkillLevel = "advanced"

	// SkillExpert - эксперт.
	SkillExpert SkillLevel = "expert"
)

// skillOrdinals задаёт порядок уровней на шкале.
// Неизвестный уровень — ошибка данных, а не "нулевой" уровень.
var skillOrdinals = map[SkillLevel]int{
	SkillBeginner:     0,
	SkillIntermediate: 1,
	SkillAdvanced:     2,
	SkillExpert:       3,
}

// IsValid проверяет, известен ли уровень шкале.
func (l SkillLevel) IsValid() bool {
	_, ok := skillOrdinals[l]
	return ok
}

// String возвращает строковое представление уровня.
func (l SkillLevel) String() string {
	return string(l)
}

// Ordinal возвращает порядковый номер уровня на шкале (beginner=0 ... expert=3).
// Неизвестный уровень возвращает ошибку: молчаливый дефолт испортил бы скоринг.
func (l SkillLevel) Ordinal() (int, error) {
	ord, ok := skillOrdinals[l]
	if !ok {
		return 0, shared.WrapError("matchmaking", "Ordinal", shared.ErrValueOutOfRange,
			"unknown skill level "+string(l), shared.ErrInvalidSkillLevel)
	}
	return ord, nil
}

// SkillDistance возвращает абсолютное расстояние между двумя уровнями.
func SkillDistance(a, b SkillLevel) (int, error) {
	ordA, err := a.Ordinal()
	if err != nil {
		return 0, err
	}
	ordB, err := b.Ordinal()
	if err != nil {
		return 0, err
	}
	d := ordA - ordB
	if d < 0 {
		d = -d
	}
	return d, nil
}

// ParseSkillLevel разбирает строку в SkillLevel с нормализацией.
func ParseSkillLevel(raw string) (SkillLevel, error) {
	l := SkillLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !l.IsValid() {
		return "", shared.ErrInvalidSkillLevel
	}
	return l, nil
}

// AllSkillLevels возвращает уровни в порядке возрастания.
func AllSkillLevels() []SkillLevel {
	return []SkillLevel{SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert}
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILL MATCH MODE
// Политика допустимой разницы уровней при подборе.
// ══════════════════════════════════════════════════════════════════════════════

// SkillMatchMode определяет, какие уровни игры считаются подходящими.
type SkillMatchMode string

const (
	// ModeExact - только точное совпадение уровня.
	ModeExact SkillMatchMode = "exact"

	// ModeSimilar - уровень в пределах одной ступени (режим по умолчанию).
	ModeSimilar SkillMatchMode = "similar"

	// ModeRange - уровень из явно выбранного набора.
	ModeRange SkillMatchMode = "range"

	// ModeAny - любой уровень; разница лишь снижает оценку.
	ModeAny SkillMatchMode = "any"
)

// DefaultSkillMatchMode - режим, если пользователь ничего не выбрал.
const DefaultSkillMatchMode = ModeSimilar

// IsValid проверяет корректность режима.
func (m SkillMatchMode) IsValid() bool {
	switch m {
	case ModeExact, ModeSimilar, ModeRange, ModeAny:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление режима.
func (m SkillMatchMode) String() string {
	return string(m)
}

// ParseSkillMatchMode разбирает строку в SkillMatchMode.
// Пустая строка трактуется как режим по умолчанию.
func ParseSkillMatchMode(raw string) (SkillMatchMode, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultSkillMatchMode, nil
	}
	m := SkillMatchMode(s)
	if !m.IsValid() {
		return "", shared.ErrInvalidMatchMode
	}
	return m, nil
}

// SkillLevelSet - набор уровней для режима ModeRange.
type SkillLevelSet map[SkillLevel]struct{}

// NewSkillLevelSet создаёт набор из списка уровней, отбрасывая дубликаты.
// Неизвестный уровень — ошибка.
func NewSkillLevelSet(levels ...SkillLevel) (SkillLevelSet, error) {
	set := make(SkillLevelSet, len(levels))
	for _, l := range levels {
		if !l.IsValid() {
			return nil, shared.ErrInvalidSkillLevel
		}
		set[l] = struct{}{}
	}
	return set, nil
}

// Contains проверяет, входит ли уровень в набор.
func (s SkillLevelSet) Contains(l SkillLevel) bool {
	_, ok := s[l]
	return ok
}

// Levels возвращает уровни набора в порядке шкалы.
func (s SkillLevelSet) Levels() []SkillLevel {
	levels := make([]SkillLevel, 0, len(s))
	for _, l := range AllSkillLevels() {
		if s.Contains(l) {
			levels = append(levels, l)
		}
	}
	return levels
}

// IsEmpty проверяет, пуст ли набор.
func (s SkillLevelSet) IsEmpty() bool {
	return len(s) == 0
}
