package teams

import (
	"fmt"

	"github.com/google/uuid"

	"salin-system/internal/apperr"
	"salin-system/internal/database/models"
)

// Membership authority rules. Kept free of storage concerns so every guard
// and clone plan is testable as a plain function.

func validRole(role string) bool {
	switch role {
	case models.RoleLeader, models.RoleCoLeader, models.RoleMember:
		return true
	}
	return false
}

// canApprove gates pending -> active. Leaders and co-leaders of the same
// team may approve; anyone else is rejected before any state is touched.
func canApprove(actor, target models.TeamMember) error {
	if actor.TeamID != target.TeamID {
		return fmt.Errorf("member belongs to another team: %w", apperr.ErrForbidden)
	}
	if actor.Status != models.MemberActive {
		return fmt.Errorf("only active members may approve: %w", apperr.ErrForbidden)
	}
	if actor.Role != models.RoleLeader && actor.Role != models.RoleCoLeader {
		return fmt.Errorf("role %s may not approve members: %w", actor.Role, apperr.ErrForbidden)
	}
	return nil
}

// canRemove gates removal and rejection. A leader can never be removed this
// way. Co-leaders may only act on pending members, a stricter rule than the
// leader's.
func canRemove(actor, target models.TeamMember) error {
	if actor.TeamID != target.TeamID {
		return fmt.Errorf("member belongs to another team: %w", apperr.ErrForbidden)
	}
	if actor.Status != models.MemberActive {
		return fmt.Errorf("only active members may remove: %w", apperr.ErrForbidden)
	}
	if target.Role == models.RoleLeader {
		return fmt.Errorf("a leader cannot be removed: %w", apperr.ErrForbidden)
	}
	switch actor.Role {
	case models.RoleLeader:
		return nil
	case models.RoleCoLeader:
		if target.Status == models.MemberPending {
			return nil
		}
		return fmt.Errorf("a co-leader may only remove pending members: %w", apperr.ErrForbidden)
	}
	return fmt.Errorf("role %s may not remove members: %w", actor.Role, apperr.ErrForbidden)
}

// canUpdateRole gates role changes. Leader only, and the team must never be
// left without a leader.
func canUpdateRole(actor, target models.TeamMember, newRole string, leaderCount int) error {
	if actor.TeamID != target.TeamID {
		return fmt.Errorf("member belongs to another team: %w", apperr.ErrForbidden)
	}
	if actor.Role != models.RoleLeader || actor.Status != models.MemberActive {
		return fmt.Errorf("only an active leader may change roles: %w", apperr.ErrForbidden)
	}
	if !validRole(newRole) {
		return fmt.Errorf("unknown role %q: %w", newRole, apperr.ErrInvalid)
	}
	if target.Role == models.RoleLeader && newRole != models.RoleLeader && leaderCount <= 1 {
		return fmt.Errorf("team would be left without a leader: %w", apperr.ErrConflict)
	}
	return nil
}

// canLeave gates self-service leaving. The sole leader must hand over the
// team before leaving.
func canLeave(member models.TeamMember, leaderCount int) error {
	if member.Role == models.RoleLeader && leaderCount <= 1 {
		return fmt.Errorf("the sole leader cannot leave the team: %w", apperr.ErrConflict)
	}
	return nil
}

// planCustomerClones copies customers into the target scope, skipping any
// citizen id already present there. Originals are never modified; scope
// transitions clone, they do not move.
func planCustomerClones(src []models.Customer, existingCitizenIDs map[string]bool, targetTeamID *string) []models.Customer {
	clones := make([]models.Customer, 0)
	for _, c := range src {
		if existingCitizenIDs[c.CitizenID] {
			continue
		}
		clone := c
		clone.ID = uuid.NewString()
		clone.RecordByTeamID = cloneTeamID(targetTeamID)
		clone.CreatedAt = nil
		clone.UpdatedAt = nil
		clones = append(clones, clone)
	}
	return clones
}

// planOrderClones copies orders (with item snapshots) into the target scope.
// An order's lineage id — the original it was first cloned from — is the
// dedupe key, so repeated join/leave cycles stay idempotent. Buyer references
// are remapped to the target scope's customer row for the same citizen id;
// orders whose buyer has no representative in the target scope are skipped.
func planOrderClones(src []models.Order, existingLineage map[string]bool, customerIDMap map[string]string, targetTeamID *string) []models.Order {
	clones := make([]models.Order, 0)
	for _, o := range src {
		lineage := o.LineageID()
		if existingLineage[lineage] {
			continue
		}
		targetCustomer, ok := customerIDMap[o.CustomerID]
		if !ok {
			continue
		}

		clone := o
		clone.ID = uuid.NewString()
		clone.CustomerID = targetCustomer
		clone.RecordByTeamID = cloneTeamID(targetTeamID)
		lineageID := lineage
		clone.SourceOrderID = &lineageID
		clone.CreatedAt = nil

		items := make([]models.OrderItem, 0, len(o.Items))
		for _, item := range o.Items {
			itemClone := item
			itemClone.ID = uuid.NewString()
			itemClone.OrderID = nil
			itemClone.CreatedAt = nil
			items = append(items, itemClone)
		}
		clone.Items = items
		clones = append(clones, clone)
	}
	return clones
}

func cloneTeamID(teamID *string) *string {
	if teamID == nil {
		return nil
	}
	id := *teamID
	return &id
}
