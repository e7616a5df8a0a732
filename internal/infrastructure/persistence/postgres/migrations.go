package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// Schema for the matchmaking engine: public user profiles, per-sport
// preferences, matcher configurations and generated skill matches.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_and_preferences",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_matcher_configurations",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_skill_matches",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    display_name TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sport_preferences (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    sport_type TEXT NOT NULL,
    skill_level TEXT NOT NULL
        CHECK (skill_level IN ('beginner', 'intermediate', 'advanced', 'expert')),
    years_experience INTEGER NOT NULL DEFAULT 0 CHECK (years_experience >= 0),
    is_visible BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, sport_type)
);

-- Candidate pool lookups: visible preferences per sport.
CREATE INDEX IF NOT EXISTS idx_sport_preferences_visible
    ON sport_preferences(sport_type)
    WHERE is_visible = TRUE;
`

const migration001Down = `
DROP TABLE IF EXISTS sport_preferences;
DROP TABLE IF EXISTS users;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS matcher_configurations (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    sport_type TEXT NOT NULL,
    skill_match_mode TEXT NOT NULL DEFAULT 'similar'
        CHECK (skill_match_mode IN ('exact', 'similar', 'range', 'any')),
    preferred_skill_levels TEXT[] NOT NULL DEFAULT '{}',
    max_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
    distance_preference TEXT NOT NULL DEFAULT 'city'
        CHECK (distance_preference IN ('nearby', 'city', 'region', 'anywhere')),
    age_range_min INTEGER NOT NULL DEFAULT 0 CHECK (age_range_min >= 0),
    age_range_max INTEGER NOT NULL DEFAULT 0 CHECK (age_range_max >= 0),
    gender_preference TEXT NOT NULL DEFAULT '',
    availability_days TEXT[] NOT NULL DEFAULT '{}',
    availability_times TEXT[] NOT NULL DEFAULT '{}',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, sport_type)
);
`

const migration002Down = `
DROP TABLE IF EXISTS matcher_configurations;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS skill_matches (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    matched_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    sport_type TEXT NOT NULL,
    compatibility_score INTEGER NOT NULL
        CHECK (compatibility_score >= 0 AND compatibility_score <= 100),
    skill_level_difference INTEGER NOT NULL CHECK (skill_level_difference >= 0),
    distance_km DOUBLE PRECISION,
    match_reason TEXT NOT NULL DEFAULT '',
    is_viewed BOOLEAN NOT NULL DEFAULT FALSE,
    is_liked BOOLEAN NOT NULL DEFAULT FALSE,
    is_mutual_match BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CHECK (user_id <> matched_user_id)
);

-- Source of truth for deduplication: one match per directed pair and sport.
CREATE UNIQUE INDEX IF NOT EXISTS idx_skill_matches_pair
    ON skill_matches(user_id, matched_user_id, sport_type);

-- Listing matches ordered by score.
CREATE INDEX IF NOT EXISTS idx_skill_matches_user_sport_score
    ON skill_matches(user_id, sport_type, compatibility_score DESC);

-- Unviewed counter.
CREATE INDEX IF NOT EXISTS idx_skill_matches_unviewed
    ON skill_matches(user_id, sport_type)
    WHERE is_viewed = FALSE;
`

const migration003Down = `
DROP TABLE IF EXISTS skill_matches;
`
