package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

func TestSkillLevel_Ordinal(t *testing.T) {
	cases := map[SkillLevel]int{
		SkillBeginner:     0,
		SkillIntermediate: 1,
		SkillAdvanced:     2,
		SkillExpert:       3,
	}

	for level, want := range cases {
		got, err := level.Ordinal()
		require.NoError(t, err)
		assert.Equal(t, want, got, "ordinal of %s", level)
	}
}

func TestSkillLevel_Ordinal_Unknown(t *testing.T) {
	_, err := SkillLevel("semi-pro").Ordinal()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)
}

func TestSkillDistance(t *testing.T) {
	d, err := SkillDistance(SkillBeginner, SkillExpert)
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	d, err = SkillDistance(SkillExpert, SkillBeginner)
	require.NoError(t, err)
	assert.Equal(t, 3, d, "distance is symmetric")

	d, err = SkillDistance(SkillAdvanced, SkillAdvanced)
	require.NoError(t, err)
	assert.Equal(t, 0, d)
}

func TestSkillDistance_UnknownLevel(t *testing.T) {
	_, err := SkillDistance(SkillBeginner, "guru")
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)

	_, err = SkillDistance("guru", SkillBeginner)
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)
}

func TestParseSkillLevel(t *testing.T) {
	level, err := ParseSkillLevel("  Intermediate ")
	require.NoError(t, err)
	assert.Equal(t, SkillIntermediate, level)

	_, err = ParseSkillLevel("pro")
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)

	_, err = ParseSkillLevel("")
	assert.Error(t, err)
}

func TestAllSkillLevels_Ordered(t *testing.T) {
	levels := AllSkillLevels()
	require.Len(t, levels, 4)

	prev := -1
	for _, l := range levels {
		ord, err := l.Ordinal()
		require.NoError(t, err)
		assert.Greater(t, ord, prev)
		prev = ord
	}
}

func TestParseSkillMatchMode(t *testing.T) {
	mode, err := ParseSkillMatchMode("EXACT")
	require.NoError(t, err)
	assert.Equal(t, ModeExact, mode)

	mode, err = ParseSkillMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSkillMatchMode, mode, "empty input falls back to the default mode")

	_, err = ParseSkillMatchMode("fuzzy")
	assert.ErrorIs(t, err, shared.ErrInvalidMatchMode)
}

func TestSkillLevelSet(t *testing.T) {
	set, err := NewSkillLevelSet(SkillExpert, SkillBeginner, SkillBeginner)
	require.NoError(t, err)

	assert.True(t, set.Contains(SkillBeginner))
	assert.True(t, set.Contains(SkillExpert))
	assert.False(t, set.Contains(SkillAdvanced))

	// Duplicates collapse, order follows the scale.
	assert.Equal(t, []SkillLevel{SkillBeginner, SkillExpert}, set.Levels())
}

func TestSkillLevelSet_InvalidLevel(t *testing.T) {
	_, err := NewSkillLevelSet(SkillBeginner, "ninja")
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)
}

func TestSkillLevelSet_Empty(t *testing.T) {
	set, err := NewSkillLevelSet()
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.Empty(t, set.Levels())
}
