package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCE REPOSITORY IMPLEMENTATION
// Read side of the matchmaking engine: sport preferences, matcher
// configurations and the visible candidate pool.
// ══════════════════════════════════════════════════════════════════════════════

// PreferenceRepository implements matchmaking.PreferenceRepository and
// matchmaking.CandidateRepository for PostgreSQL.
type PreferenceRepository struct {
	conn *Connection
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(conn *Connection) *PreferenceRepository {
	return &PreferenceRepository{conn: conn}
}

// GetSportPreference returns a user's sport preference.
func (r *PreferenceRepository) GetSportPreference(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
) (*matchmaking.SportPreference, error) {
	query := `
		SELECT user_id, sport_type, skill_level, years_experience, is_visible, updated_at
		FROM sport_preferences
		WHERE user_id = $1 AND sport_type = $2
	`

	var (
		uid       int64
		sportType string
		skill     string
		years     int
		visible   bool
		updatedAt time.Time
	)
	err := r.conn.QueryRow(ctx, query, userID.Int64(), sport.String()).
		Scan(&uid, &sportType, &skill, &years, &visible, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("failed to get sport preference: %w", err)
	}

	return &matchmaking.SportPreference{
		UserID:          shared.UserID(uid),
		Sport:           shared.SportType(sportType),
		SkillLevel:      matchmaking.SkillLevel(skill),
		YearsExperience: shared.YearsExperience(years),
		IsVisible:       visible,
		UpdatedAt:       updatedAt,
	}, nil
}

// GetMatcherConfiguration returns a user's matcher configuration.
func (r *PreferenceRepository) GetMatcherConfiguration(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
) (*matchmaking.MatcherConfiguration, error) {
	query := `
		SELECT user_id, sport_type, skill_match_mode, preferred_skill_levels,
			   max_distance_km, distance_preference, age_range_min, age_range_max,
			   gender_preference, availability_days, availability_times,
			   is_active, updated_at
		FROM matcher_configurations
		WHERE user_id = $1 AND sport_type = $2
	`

	var (
		uid       int64
		sportType string
		mode      string
		levels    []string
		maxDist   float64
		distPref  string
		ageMin    int
		ageMax    int
		gender    string
		days      []string
		times     []string
		active    bool
		updatedAt time.Time
	)
	err := r.conn.QueryRow(ctx, query, userID.Int64(), sport.String()).
		Scan(&uid, &sportType, &mode, &levels, &maxDist, &distPref,
			&ageMin, &ageMax, &gender, &days, &times, &active, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("failed to get matcher configuration: %w", err)
	}

	levelSet, err := matchmaking.NewSkillLevelSet(toSkillLevels(levels)...)
	if err != nil {
		return nil, fmt.Errorf("corrupt preferred skill levels for user %d: %w", uid, err)
	}

	return &matchmaking.MatcherConfiguration{
		UserID:               shared.UserID(uid),
		Sport:                shared.SportType(sportType),
		SkillMatchMode:       matchmaking.SkillMatchMode(mode),
		PreferredSkillLevels: levelSet,
		MaxDistanceKM:        maxDist,
		DistancePreference:   matchmaking.DistancePreference(distPref),
		AgeRangeMin:          ageMin,
		AgeRangeMax:          ageMax,
		GenderPreference:     matchmaking.GenderPreference(gender),
		AvailabilityDays:     toWeekdays(days),
		AvailabilityTimes:    toTimeBuckets(times),
		IsActive:             active,
		UpdatedAt:            updatedAt,
	}, nil
}

// ListVisibleCandidates returns every user with a visible preference for the
// sport, excluding the requester. No ordering is guaranteed here; ranking
// happens in the domain.
func (r *PreferenceRepository) ListVisibleCandidates(
	ctx context.Context,
	sport shared.SportType,
	excludeUserID shared.UserID,
) ([]matchmaking.CandidateUser, error) {
	query := `
		SELECT u.id, u.display_name, u.bio, u.location,
			   sp.skill_level, sp.years_experience
		FROM sport_preferences sp
		JOIN users u ON u.id = sp.user_id
		WHERE sp.sport_type = $1
		  AND sp.is_visible = TRUE
		  AND sp.user_id <> $2
	`

	rows, err := r.conn.Query(ctx, query, sport.String(), excludeUserID.Int64())
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []matchmaking.CandidateUser
	for rows.Next() {
		var (
			id          int64
			displayName string
			bio         string
			location    string
			skill       string
			years       int
		)
		if err := rows.Scan(&id, &displayName, &bio, &location, &skill, &years); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, matchmaking.CandidateUser{
			ID:              shared.UserID(id),
			DisplayName:     displayName,
			Bio:             bio,
			Location:        location,
			SkillLevel:      matchmaking.SkillLevel(skill),
			YearsExperience: shared.YearsExperience(years),
		})
	}

	return candidates, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversion helpers
// ─────────────────────────────────────────────────────────────────────────────

func toSkillLevels(raw []string) []matchmaking.SkillLevel {
	levels := make([]matchmaking.SkillLevel, 0, len(raw))
	for _, s := range raw {
		levels = append(levels, matchmaking.SkillLevel(s))
	}
	return levels
}

func toWeekdays(raw []string) []matchmaking.Weekday {
	days := make([]matchmaking.Weekday, 0, len(raw))
	for _, s := range raw {
		days = append(days, matchmaking.Weekday(s))
	}
	return days
}

func toTimeBuckets(raw []string) []matchmaking.TimeBucket {
	buckets := make([]matchmaking.TimeBucket, 0, len(raw))
	for _, s := range raw {
		buckets = append(buckets, matchmaking.TimeBucket(s))
	}
	return buckets
}
