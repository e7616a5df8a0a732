package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureMatchGeneration, nil))
	assert.True(t, ff.IsEnabled(FeatureMatchPreview, nil))
	assert.True(t, ff.IsEnabled(FeatureFeedbackLikes, nil))
	assert.False(t, ff.IsEnabled(FeatureExperimentalDistance, nil))
	assert.False(t, ff.IsEnabled("unknown.feature", nil))
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_MATCHMAKING_PREVIEW_CACHE", "false")
	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureMatchPreviewCache, nil))
}

func TestFeatureFlags_EnvRolloutPercent(t *testing.T) {
	t.Setenv("FEATURE_FEEDBACK_MUTUAL", "100")
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureFeedbackMutual, &FeatureContext{UserID: 42}))
}

func TestFeatureFlags_UserOverride(t *testing.T) {
	ff := LoadFeatureFlags()
	ctx := &FeatureContext{UserID: 7}

	ff.SetUserOverride(7, FeatureExperimentalDistance, true)
	assert.True(t, ff.IsEnabled(FeatureExperimentalDistance, ctx))

	ff.ClearUserOverrides(7)
	assert.False(t, ff.IsEnabled(FeatureExperimentalDistance, ctx))
}

func TestFeatureFlags_AdminGetsEverything(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureExperimentalDistance, &FeatureContext{UserID: 1, IsAdmin: true}))
}

func TestFeatureFlags_RolloutIsConsistent(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureFeedbackMutual, 50))

	ctx := &FeatureContext{UserID: 123}
	first := ff.IsEnabled(FeatureFeedbackMutual, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureFeedbackMutual, ctx), "user stays in the same bucket")
	}
}

func TestFeatureFlags_SetRolloutPercent_Validation(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.Error(t, ff.SetRolloutPercent(FeatureFeedbackMutual, 101))
	assert.Error(t, ff.SetRolloutPercent("unknown.feature", 10))
}

func TestFeatureFlags_EnableDisable(t *testing.T) {
	ff := LoadFeatureFlags()

	require.NoError(t, ff.DisableFeature(FeatureMatchGeneration))
	assert.False(t, ff.IsEnabled(FeatureMatchGeneration, nil))

	require.NoError(t, ff.EnableFeature(FeatureMatchGeneration))
	assert.True(t, ff.IsEnabled(FeatureMatchGeneration, nil))
}
