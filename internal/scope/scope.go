// Package scope carries the caller's visibility domain as a single value
// built once per request and threaded through every query. List, search,
// existence checks and tree building all filter through the same predicate,
// so team scoping cannot silently diverge between call sites.
package scope

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"salin-system/internal/database/models"
)

// AccessScope is either private (TeamID empty) or team-wide. A pending or
// inactive membership never widens the scope beyond private.
type AccessScope struct {
	UserID string
	TeamID string
}

func Private(userID string) AccessScope {
	return AccessScope{UserID: userID}
}

func Team(userID, teamID string) AccessScope {
	return AccessScope{UserID: userID, TeamID: teamID}
}

func (s AccessScope) IsTeam() bool {
	return s.TeamID != ""
}

// ForUser resolves the caller's scope from their membership row. Only an
// active membership grants team visibility.
func ForUser(ctx context.Context, db *gorm.DB, userID string) (AccessScope, error) {
	var member models.TeamMember
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.MemberActive).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Private(userID), nil
		}
		return AccessScope{}, fmt.Errorf("resolve scope for user %s: %w", userID, err)
	}
	return Team(userID, member.TeamID), nil
}

// Predicate returns the ownership filter applied to customers and orders.
// Both tables share the record_by_user_id / record_by_team_id column pair.
func (s AccessScope) Predicate() (string, []interface{}) {
	if s.IsTeam() {
		return "record_by_team_id = ?", []interface{}{s.TeamID}
	}
	return "record_by_user_id = ? AND record_by_team_id IS NULL", []interface{}{s.UserID}
}

// Apply restricts a query to the scope.
func (s AccessScope) Apply(q *gorm.DB) *gorm.DB {
	cond, args := s.Predicate()
	return q.Where(cond, args...)
}

// TeamIDPtr is the record_by_team_id stamp for rows created in this scope.
func (s AccessScope) TeamIDPtr() *string {
	if !s.IsTeam() {
		return nil
	}
	teamID := s.TeamID
	return &teamID
}

// CacheKey distinguishes cached read models per visibility domain.
func (s AccessScope) CacheKey() string {
	if s.IsTeam() {
		return "team:" + s.TeamID
	}
	return "user:" + s.UserID
}
