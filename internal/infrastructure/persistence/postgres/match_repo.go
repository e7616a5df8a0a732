package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MatchRepository implements matchmaking.MatchRepository for PostgreSQL.
type MatchRepository struct {
	conn *Connection
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(conn *Connection) *MatchRepository {
	return &MatchRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a new skill match. The unique index on
// (user_id, matched_user_id, sport_type) enforces deduplication.
func (r *MatchRepository) Create(ctx context.Context, m *matchmaking.SkillMatch) error {
	query := `
		INSERT INTO skill_matches (
			id, user_id, matched_user_id, sport_type,
			compatibility_score, skill_level_difference, distance_km, match_reason,
			is_viewed, is_liked, is_mutual_match, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		m.ID,
		m.UserID.Int64(),
		m.MatchedUserID.Int64(),
		m.Sport.String(),
		m.CompatibilityScore,
		m.SkillLevelDifference,
		m.DistanceKM,
		m.MatchReason,
		m.IsViewed,
		m.IsLiked,
		m.IsMutualMatch,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateMatch
		}
		return fmt.Errorf("failed to create skill match: %w", err)
	}

	return nil
}

// GetByID returns a skill match by ID.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*matchmaking.SkillMatch, error) {
	query := matchSelect + ` WHERE id = $1`
	return r.scanMatch(r.conn.QueryRow(ctx, query, id))
}

// GetByPair returns the match for a directed pair and sport.
func (r *MatchRepository) GetByPair(
	ctx context.Context,
	userID, matchedUserID shared.UserID,
	sport shared.SportType,
) (*matchmaking.SkillMatch, error) {
	query := matchSelect + ` WHERE user_id = $1 AND matched_user_id = $2 AND sport_type = $3`
	return r.scanMatch(r.conn.QueryRow(ctx, query,
		userID.Int64(), matchedUserID.Int64(), sport.String()))
}

// Update persists the mutable flags of a match.
func (r *MatchRepository) Update(ctx context.Context, m *matchmaking.SkillMatch) error {
	query := `
		UPDATE skill_matches
		SET is_viewed = $2, is_liked = $3, is_mutual_match = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		m.ID, m.IsViewed, m.IsLiked, m.IsMutualMatch, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update skill match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrMatchNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query Operations
// ─────────────────────────────────────────────────────────────────────────────

// Exists reports whether a match exists for the directed pair and sport.
func (r *MatchRepository) Exists(
	ctx context.Context,
	userID, matchedUserID shared.UserID,
	sport shared.SportType,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM skill_matches
			WHERE user_id = $1 AND matched_user_id = $2 AND sport_type = $3
		)
	`

	var exists bool
	err := r.conn.QueryRow(ctx, query,
		userID.Int64(), matchedUserID.Int64(), sport.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}

	return exists, nil
}

// ListByUserAndSport returns a user's matches ordered by descending score.
// Creation time breaks score ties to keep pagination stable.
func (r *MatchRepository) ListByUserAndSport(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
	opts matchmaking.MatchListOptions,
) ([]*matchmaking.SkillMatch, error) {
	query := matchSelect + ` WHERE user_id = $1 AND sport_type = $2`
	args := []interface{}{userID.Int64(), sport.String()}

	if opts.OnlyMutual {
		query += ` AND is_mutual_match = TRUE`
	}
	query += ` ORDER BY compatibility_score DESC, created_at ASC`

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill matches: %w", err)
	}
	defer rows.Close()

	var matches []*matchmaking.SkillMatch
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// CountUnviewed returns the number of unviewed matches for a user and sport.
func (r *MatchRepository) CountUnviewed(
	ctx context.Context,
	userID shared.UserID,
	sport shared.SportType,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM skill_matches
		WHERE user_id = $1 AND sport_type = $2 AND is_viewed = FALSE
	`

	var count int
	err := r.conn.QueryRow(ctx, query, userID.Int64(), sport.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unviewed matches: %w", err)
	}

	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

const matchSelect = `
	SELECT id, user_id, matched_user_id, sport_type,
		   compatibility_score, skill_level_difference, distance_km, match_reason,
		   is_viewed, is_liked, is_mutual_match, created_at, updated_at
	FROM skill_matches
`

func (r *MatchRepository) scanMatch(row pgx.Row) (*matchmaking.SkillMatch, error) {
	var (
		m             matchmaking.SkillMatch
		userID        int64
		matchedUserID int64
		sportType     string
	)
	err := row.Scan(
		&m.ID,
		&userID,
		&matchedUserID,
		&sportType,
		&m.CompatibilityScore,
		&m.SkillLevelDifference,
		&m.DistanceKM,
		&m.MatchReason,
		&m.IsViewed,
		&m.IsLiked,
		&m.IsMutualMatch,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan skill match: %w", err)
	}

	m.UserID = shared.UserID(userID)
	m.MatchedUserID = shared.UserID(matchedUserID)
	m.Sport = shared.SportType(sportType)
	return &m, nil
}
