package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
//
// Philosophy alignment: features should support "Спорт интереснее вместе"
// - Matching quality over match quantity
// - Feedback loops (likes, mutual matches) prioritized
// - Previews cheap, persistence deliberate
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[int64]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  int64
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Matchmaking Features (core to project philosophy) ===
	FeatureMatchGeneration   = "matchmaking.generation"    // Persisting generated matches
	FeatureMatchPreview      = "matchmaking.preview"       // Read-only compatible player lookup
	FeatureMatchPreviewCache = "matchmaking.preview_cache" // Redis-backed preview caching

	// === Feedback Features ===
	FeatureFeedbackLikes    = "feedback.likes"    // Like a match
	FeatureFeedbackMutual   = "feedback.mutual"   // Promote reciprocal likes to mutual
	FeatureFeedbackUnviewed = "feedback.unviewed" // Unviewed match counter

	// === Experimental Features ===
	FeatureExperimentalDistance = "experimental.distance_scoring" // Real geo distance in scoring
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Matchmaking features - CORE to project, enabled by default
	ff.features[FeatureMatchGeneration] = &Feature{
		Name:           FeatureMatchGeneration,
		Description:    "Generate and persist skill matches",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMatchPreview] = &Feature{
		Name:           FeatureMatchPreview,
		Description:    "Preview compatible players without persisting",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMatchPreviewCache] = &Feature{
		Name:           FeatureMatchPreviewCache,
		Description:    "Cache previews in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Feedback features
	ff.features[FeatureFeedbackLikes] = &Feature{
		Name:           FeatureFeedbackLikes,
		Description:    "Like generated matches",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureFeedbackMutual] = &Feature{
		Name:           FeatureFeedbackMutual,
		Description:    "Mutual match promotion on reciprocal likes",
		Enabled:        true,
		RolloutPercent: 50, // Gradual rollout
	}

	ff.features[FeatureFeedbackUnviewed] = &Feature{
		Name:           FeatureFeedbackUnviewed,
		Description:    "Unviewed match counter in listings",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalDistance] = &Feature{
		Name:           FeatureExperimentalDistance,
		Description:    "Include real geographic distance in scoring",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_MATCHMAKING_PREVIEW_CACHE=false
// Example: FEATURE_FEEDBACK_MUTUAL=75 (75% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "matchmaking.preview_cache" -> "FEATURE_MATCHMAKING_PREVIEW_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != 0 {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != 0 {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID int64, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	hash := h.Sum32()

	bucket := int(hash % 100)
	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// MatchmakingEnabled checks if the core matching features are enabled.
func (ff *FeatureFlags) MatchmakingEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureMatchGeneration, ctx) ||
		ff.IsEnabled(FeatureMatchPreview, ctx)
}

// FeedbackEnabled checks if any feedback features are enabled.
func (ff *FeatureFlags) FeedbackEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureFeedbackLikes, ctx) ||
		ff.IsEnabled(FeatureFeedbackMutual, ctx) ||
		ff.IsEnabled(FeatureFeedbackUnviewed, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
