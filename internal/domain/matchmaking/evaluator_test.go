package matchmaking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

func testConfig(t *testing.T, mode SkillMatchMode, levels ...SkillLevel) *MatcherConfiguration {
	t.Helper()
	cfg, err := NewMatcherConfiguration(NewMatcherConfigurationParams{
		UserID:               1,
		Sport:                shared.SportTennis,
		SkillMatchMode:       mode,
		PreferredSkillLevels: levels,
		IsActive:             true,
	})
	require.NoError(t, err)
	return cfg
}

func candidate(id int64, skill SkillLevel, years int) CandidateUser {
	return CandidateUser{
		ID:              shared.UserID(id),
		DisplayName:     fmt.Sprintf("player-%d", id),
		SkillLevel:      skill,
		YearsExperience: shared.YearsExperience(years),
	}
}

// Кандидаты с опытом, далёким от опыта запрашивающего, чтобы бонус
// за близкий опыт не искажал базовую оценку режима.
const farExperience = 20

func TestEvaluate_ModeExact(t *testing.T) {
	cfg := testConfig(t, ModeExact)

	ev, err := Evaluate(SkillAdvanced, 0, candidate(2, SkillAdvanced, farExperience), cfg)
	require.NoError(t, err)
	assert.True(t, ev.IsCompatible)
	assert.Equal(t, 100, ev.Score)
	assert.Equal(t, 0, ev.SkillDifference)
	assert.Equal(t, ReasonExactMatch, ev.Reason)

	ev, err = Evaluate(SkillAdvanced, 0, candidate(3, SkillIntermediate, farExperience), cfg)
	require.NoError(t, err)
	assert.False(t, ev.IsCompatible, "one step apart is not an exact match")
	assert.Empty(t, ev.Reason)
}

func TestEvaluate_ModeSimilar(t *testing.T) {
	cfg := testConfig(t, ModeSimilar)

	ev, err := Evaluate(SkillIntermediate, 0, candidate(2, SkillIntermediate, farExperience), cfg)
	require.NoError(t, err)
	assert.True(t, ev.IsCompatible)
	assert.Equal(t, 100, ev.Score)

	ev, err = Evaluate(SkillIntermediate, 0, candidate(3, SkillAdvanced, farExperience), cfg)
	require.NoError(t, err)
	assert.True(t, ev.IsCompatible)
	assert.Equal(t, 80, ev.Score, "one step away scores 100 - 20")
	assert.Equal(t, ReasonSimilarSkill, ev.Reason)

	ev, err = Evaluate(SkillIntermediate, 0, candidate(4, SkillExpert, farExperience), cfg)
	require.NoError(t, err)
	assert.False(t, ev.IsCompatible, "two steps away is out of the similar window")
}

func TestEvaluate_ModeRange(t *testing.T) {
	cfg := testConfig(t, ModeRange, SkillBeginner, SkillExpert)

	ev, err := Evaluate(SkillIntermediate, 0, candidate(2, SkillExpert, farExperience), cfg)
	require.NoError(t, err)
	assert.True(t, ev.IsCompatible)
	assert.Equal(t, 90, ev.Score, "range membership scores a flat 90")
	assert.Equal(t, 2, ev.SkillDifference, "difference is reported even when it does not affect the score")
	assert.Equal(t, ReasonWithinRange, ev.Reason)

	ev, err = Evaluate(SkillIntermediate, 0, candidate(3, SkillAdvanced, farExperience), cfg)
	require.NoError(t, err)
	assert.False(t, ev.IsCompatible, "level outside the chosen set")
}

func TestEvaluate_ModeAny(t *testing.T) {
	cfg := testConfig(t, ModeAny)

	ev, err := Evaluate(SkillBeginner, 0, candidate(2, SkillBeginner, farExperience), cfg)
	require.NoError(t, err)
	assert.True(t, ev.IsCompatible)
	assert.Equal(t, 80, ev.Score)
	assert.Equal(t, ReasonOpenToAll, ev.Reason)

	ev, err = Evaluate(SkillBeginner, 0, candidate(3, SkillExpert, farExperience), cfg)
	require.NoError(t, err)
	assert.True(t, ev.IsCompatible, "any mode never rejects a candidate")
	assert.Equal(t, 50, ev.Score)
}

func TestEvaluate_ExperienceBonus(t *testing.T) {
	cfg := testConfig(t, ModeSimilar)

	// Разница в опыте ровно на границе бонуса.
	ev, err := Evaluate(SkillIntermediate, 5, candidate(2, SkillAdvanced, 7), cfg)
	require.NoError(t, err)
	assert.Equal(t, 90, ev.Score, "base 80 plus the 10 point bonus")
	assert.Equal(t, ReasonSimilarSkill+ReasonExperienceBonus, ev.Reason)

	// На один год за границей — бонуса нет.
	ev, err = Evaluate(SkillIntermediate, 5, candidate(3, SkillAdvanced, 8), cfg)
	require.NoError(t, err)
	assert.Equal(t, 80, ev.Score)
	assert.Equal(t, ReasonSimilarSkill, ev.Reason)
}

func TestEvaluate_BonusCappedAtMax(t *testing.T) {
	cfg := testConfig(t, ModeExact)

	ev, err := Evaluate(SkillExpert, 10, candidate(2, SkillExpert, 10), cfg)
	require.NoError(t, err)
	assert.Equal(t, MaxCompatibilityScore, ev.Score, "bonus never pushes the score past 100")
	assert.Equal(t, ReasonExactMatch+ReasonExperienceBonus, ev.Reason)
}

func TestEvaluate_NoLowerBound(t *testing.T) {
	cfg := testConfig(t, ModeAny)

	// Максимальная разница на шкале равна 3, значит минимум базовой оценки
	// 80 - 30 = 50. Формула не зажимает результат снизу.
	ev, err := Evaluate(SkillBeginner, 0, candidate(2, SkillExpert, farExperience), cfg)
	require.NoError(t, err)
	assert.Equal(t, 50, ev.Score)
	assert.Equal(t, 80-ev.SkillDifference*10, ev.Score, "score follows the formula with no floor applied")
}

func TestEvaluate_NilConfiguration(t *testing.T) {
	_, err := Evaluate(SkillBeginner, 0, candidate(2, SkillBeginner, 0), nil)
	assert.ErrorIs(t, err, shared.ErrConfigurationNotFound)
}

func TestEvaluate_UnknownCandidateSkill(t *testing.T) {
	cfg := testConfig(t, ModeSimilar)

	_, err := Evaluate(SkillBeginner, 0, candidate(2, "legend", 0), cfg)
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)
}

func TestEvaluate_UnknownMode(t *testing.T) {
	cfg := testConfig(t, ModeSimilar)
	cfg.SkillMatchMode = "telepathic"

	_, err := Evaluate(SkillBeginner, 0, candidate(2, SkillBeginner, 0), cfg)
	assert.ErrorIs(t, err, shared.ErrInvalidMatchMode)
}

func TestRank_FiltersAndSorts(t *testing.T) {
	evaluated := []RankedCandidate{
		{Candidate: candidate(2, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: true, Score: 60}},
		{Candidate: candidate(3, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: false}},
		{Candidate: candidate(4, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: true, Score: 90}},
		{Candidate: candidate(5, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: true, Score: 75}},
	}

	ranked := Rank(evaluated)
	require.Len(t, ranked, 3)
	assert.Equal(t, shared.UserID(4), ranked[0].Candidate.ID)
	assert.Equal(t, shared.UserID(5), ranked[1].Candidate.ID)
	assert.Equal(t, shared.UserID(2), ranked[2].Candidate.ID)
}

func TestRank_StableOnEqualScores(t *testing.T) {
	evaluated := []RankedCandidate{
		{Candidate: candidate(7, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: true, Score: 80}},
		{Candidate: candidate(3, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: true, Score: 80}},
		{Candidate: candidate(9, SkillBeginner, 0), Evaluation: Evaluation{IsCompatible: true, Score: 80}},
	}

	ranked := Rank(evaluated)
	require.Len(t, ranked, 3)
	assert.Equal(t, shared.UserID(7), ranked[0].Candidate.ID, "storage order survives equal scores")
	assert.Equal(t, shared.UserID(3), ranked[1].Candidate.ID)
	assert.Equal(t, shared.UserID(9), ranked[2].Candidate.ID)
}

func TestRank_CapsAtMaxMatchesPerRun(t *testing.T) {
	evaluated := make([]RankedCandidate, 0, 25)
	for i := 0; i < 25; i++ {
		evaluated = append(evaluated, RankedCandidate{
			Candidate:  candidate(int64(i+2), SkillBeginner, 0),
			Evaluation: Evaluation{IsCompatible: true, Score: 100 - i},
		})
	}

	ranked := Rank(evaluated)
	assert.Len(t, ranked, MaxMatchesPerRun)
	assert.Equal(t, 100, ranked[0].Evaluation.Score)
	assert.Equal(t, 100-MaxMatchesPerRun+1, ranked[len(ranked)-1].Evaluation.Score)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]RankedCandidate{}))
}
