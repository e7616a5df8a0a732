// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier.
type UserID int64

// IsValid checks if the user ID is valid (positive number).
func (u UserID) IsValid() bool {
	return u > 0
}

// Int64 returns the underlying int64 value.
func (u UserID) Int64() int64 {
	return int64(u)
}

// String returns the string representation.
func (u UserID) String() string {
	return fmt.Sprintf("%d", u)
}

// NewUserID creates a new UserID with validation.
func NewUserID(id int64) (UserID, error) {
	if id <= 0 {
		return 0, ErrInvalidUserID
	}
	return UserID(id), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Sport Type Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SportType identifies a sport a user can play and be matched for.
type SportType string

// Known sport identifiers.
const (
	SportFootball    SportType = "football"
	SportBasketball  SportType = "basketball"
	SportVolleyball  SportType = "volleyball"
	SportTennis      SportType = "tennis"
	SportTableTennis SportType = "table_tennis"
	SportBadminton   SportType = "badminton"
	SportRunning     SportType = "running"
	SportCycling     SportType = "cycling"
	SportSwimming    SportType = "swimming"
	SportClimbing    SportType = "climbing"
)

// knownSports is the set of valid sport identifiers.
var knownSports = map[SportType]struct{}{
	SportFootball:    {},
	SportBasketball:  {},
	SportVolleyball:  {},
	SportTennis:      {},
	SportTableTennis: {},
	SportBadminton:   {},
	SportRunning:     {},
	SportCycling:     {},
	SportSwimming:    {},
	SportClimbing:    {},
}

// IsValid checks if the sport type is a known identifier.
func (s SportType) IsValid() bool {
	_, ok := knownSports[s]
	return ok
}

// String returns the string representation.
func (s SportType) String() string {
	return string(s)
}

// NewSportType creates a SportType with normalization and validation.
func NewSportType(raw string) (SportType, error) {
	s := SportType(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidSportType
	}
	return s, nil
}

// AllSports returns all known sport identifiers.
func AllSports() []SportType {
	sports := make([]SportType, 0, len(knownSports))
	for s := range knownSports {
		sports = append(sports, s)
	}
	return sports
}

// ═══════════════════════════════════════════════════════════════════════════
// Experience Value Object
// ═══════════════════════════════════════════════════════════════════════════

// YearsExperience represents how long a user has played a sport.
type YearsExperience int

// IsValid checks if the experience value is non-negative.
func (y YearsExperience) IsValid() bool {
	return y >= 0
}

// Int returns the underlying int value.
func (y YearsExperience) Int() int {
	return int(y)
}

// NewYearsExperience creates a YearsExperience with validation.
func NewYearsExperience(years int) (YearsExperience, error) {
	if years < 0 {
		return 0, ErrNegativeExperience
	}
	return YearsExperience(years), nil
}

// DiffAbs returns the absolute difference between two experience values.
func (y YearsExperience) DiffAbs(other YearsExperience) int {
	d := int(y) - int(other)
	if d < 0 {
		return -d
	}
	return d
}
