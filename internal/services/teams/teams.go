package teams

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"salin-system/internal/apperr"
	"salin-system/internal/database/models"
)

type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newTeamCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(code)
}

// CreateTeam makes the caller leader of a fresh team. The founder's
// pre-existing private records are annexed into team scope by cloning, so the
// team starts out seeing the leader's ledger; joining members are never
// annexed this way, only cloned at approval.
func (s *Service) CreateTeam(ctx context.Context, userID, name string) (*models.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("team name is required: %w", apperr.ErrInvalid)
	}

	var team *models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireNoMembership(tx, userID); err != nil {
			return err
		}

		// Regenerate on the rare join-code collision; the unique index is
		// the final arbiter.
		code := newTeamCode()
		for attempt := 0; attempt < 4; attempt++ {
			var taken int64
			if err := tx.Model(&models.Team{}).Where("code = ?", code).Count(&taken).Error; err != nil {
				return fmt.Errorf("check team code: %w", err)
			}
			if taken == 0 {
				break
			}
			code = newTeamCode()
		}

		team = &models.Team{
			ID:          uuid.NewString(),
			Name:        name,
			Code:        code,
			OwnerUserID: userID,
			Status:      models.TeamStatusActive,
		}
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("create team: %w", err)
		}

		member := &models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: team.ID,
			UserID: userID,
			Role:   models.RoleLeader,
			Status: models.MemberActive,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create leader membership: %w", err)
		}

		return s.cloneForward(tx, userID, team.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"team_id": team.ID, "owner": userID}).Info("team created")
	return team, nil
}

// JoinTeam files a pending membership by join code.
func (s *Service) JoinTeam(ctx context.Context, userID, code string) (*models.TeamMember, error) {
	if code == "" {
		return nil, fmt.Errorf("team code is required: %w", apperr.ErrInvalid)
	}

	var member *models.TeamMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		err := tx.Where("code = ? AND status = ?", code, models.TeamStatusActive).First(&team).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("team with code %s: %w", code, apperr.ErrNotFound)
			}
			return fmt.Errorf("find team by code: %w", err)
		}

		if err := s.requireNoMembership(tx, userID); err != nil {
			return err
		}

		member = &models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: team.ID,
			UserID: userID,
			Role:   models.RoleMember,
			Status: models.MemberPending,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ApproveMember flips a pending membership to active and clones the member's
// private records into team scope. The status flip is a conditional update,
// so concurrent approvals have a single winner and the clone runs once.
func (s *Service) ApproveMember(ctx context.Context, actorUserID, memberID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, target, err := s.loadActorAndTarget(tx, actorUserID, memberID)
		if err != nil {
			return err
		}
		if err := canApprove(*actor, *target); err != nil {
			return err
		}
		if target.Status == models.MemberActive {
			return nil
		}
		if target.Status != models.MemberPending {
			return fmt.Errorf("member is %s, not pending: %w", target.Status, apperr.ErrConflict)
		}

		res := tx.Model(&models.TeamMember{}).
			Where("id = ? AND status = ?", target.ID, models.MemberPending).
			Update("status", models.MemberActive)
		if res.Error != nil {
			return fmt.Errorf("activate membership: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost a race with another approver or a removal; nothing left
			// to do for this caller.
			s.log.WithField("member_id", target.ID).Warn("approve skipped, status changed concurrently")
			return nil
		}

		return s.cloneForward(tx, target.UserID, target.TeamID)
	})
}

// RemoveMember rejects a pending member or removes an active one. Removing
// an active member clones the records they personally recorded for the team
// back into their private scope before the membership row is deleted.
func (s *Service) RemoveMember(ctx context.Context, actorUserID, memberID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, target, err := s.loadActorAndTarget(tx, actorUserID, memberID)
		if err != nil {
			return err
		}
		if err := canRemove(*actor, *target); err != nil {
			return err
		}

		if target.Status == models.MemberActive {
			if err := s.cloneBack(tx, target.UserID, target.TeamID); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.TeamMember{}, "id = ?", target.ID).Error; err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
}

// LeaveTeam is the self-service counterpart of RemoveMember.
func (s *Service) LeaveTeam(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.membershipOf(tx, userID)
		if err != nil {
			return err
		}
		leaders, err := s.leaderCount(tx, member.TeamID)
		if err != nil {
			return err
		}
		if err := canLeave(*member, leaders); err != nil {
			return err
		}

		if member.Status == models.MemberActive {
			if err := s.cloneBack(tx, member.UserID, member.TeamID); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.TeamMember{}, "id = ?", member.ID).Error; err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
}

// UpdateMemberRole is leader-only and refuses to leave the team leaderless.
func (s *Service) UpdateMemberRole(ctx context.Context, actorUserID, memberID, newRole string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, target, err := s.loadActorAndTarget(tx, actorUserID, memberID)
		if err != nil {
			return err
		}
		leaders, err := s.leaderCount(tx, target.TeamID)
		if err != nil {
			return err
		}
		if err := canUpdateRole(*actor, *target, newRole, leaders); err != nil {
			return err
		}
		if err := tx.Model(&models.TeamMember{}).Where("id = ?", target.ID).Update("role", newRole).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return nil
	})
}

// TeamView is the team page payload. Pending members only see their own row.
type TeamView struct {
	Team         models.Team         `json:"team"`
	MyMembership models.TeamMember   `json:"my_membership"`
	Members      []models.TeamMember `json:"members"`
}

func (s *Service) GetTeamForUser(ctx context.Context, userID string) (*TeamView, error) {
	db := s.db.WithContext(ctx)

	member, err := s.membershipOf(db, userID)
	if err != nil {
		return nil, err
	}

	var team models.Team
	if err := db.First(&team, "id = ?", member.TeamID).Error; err != nil {
		return nil, fmt.Errorf("load team %s: %w", member.TeamID, err)
	}

	var members []models.TeamMember
	if member.Status == models.MemberPending {
		members = []models.TeamMember{*member}
	} else {
		if err := db.Where("team_id = ?", member.TeamID).Order("joined_at asc").Find(&members).Error; err != nil {
			return nil, fmt.Errorf("load team members: %w", err)
		}
	}

	return &TeamView{Team: team, MyMembership: *member, Members: members}, nil
}

func (s *Service) SearchTeams(ctx context.Context, query string) ([]models.Team, error) {
	if query == "" {
		return []models.Team{}, nil
	}
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Select("id", "name", "code", "owner_user_id").
		Where("name ILIKE ? AND status = ?", "%"+query+"%", models.TeamStatusActive).
		Limit(10).
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("search teams: %w", err)
	}
	return teams, nil
}

// --- helpers ---

func (s *Service) requireNoMembership(tx *gorm.DB, userID string) error {
	var count int64
	if err := tx.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("user already belongs to a team: %w", apperr.ErrConflict)
	}
	return nil
}

func (s *Service) membershipOf(tx *gorm.DB, userID string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := tx.Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no team membership: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load membership: %w", err)
	}
	return &member, nil
}

func (s *Service) loadActorAndTarget(tx *gorm.DB, actorUserID, memberID string) (*models.TeamMember, *models.TeamMember, error) {
	actor, err := s.membershipOf(tx, actorUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("caller: %w", apperr.ErrForbidden)
	}

	var target models.TeamMember
	if err := tx.Where("id = ?", memberID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("member %s: %w", memberID, apperr.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("load member: %w", err)
	}
	return actor, &target, nil
}

func (s *Service) leaderCount(tx *gorm.DB, teamID string) (int, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).
		Where("team_id = ? AND role = ? AND status = ?", teamID, models.RoleLeader, models.MemberActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count leaders: %w", err)
	}
	return int(count), nil
}

// cloneForward copies the user's private customers and orders into team
// scope, skipping citizen ids and order lineages already present there. The
// private originals stay put; a member's personal ledger survives joining.
func (s *Service) cloneForward(tx *gorm.DB, userID, teamID string) error {
	return s.cloneBetween(tx, cloneSpec{
		srcCond:      "record_by_user_id = ? AND record_by_team_id IS NULL",
		srcArgs:      []interface{}{userID},
		dstCond:      "record_by_team_id = ?",
		dstArgs:      []interface{}{teamID},
		targetTeamID: &teamID,
	})
}

// cloneBack copies the team records the user personally recorded into their
// private scope, with the same dedupe rules.
func (s *Service) cloneBack(tx *gorm.DB, userID, teamID string) error {
	return s.cloneBetween(tx, cloneSpec{
		srcCond:      "record_by_team_id = ? AND record_by_user_id = ?",
		srcArgs:      []interface{}{teamID, userID},
		dstCond:      "record_by_user_id = ? AND record_by_team_id IS NULL",
		dstArgs:      []interface{}{userID},
		targetTeamID: nil,
	})
}

type cloneSpec struct {
	srcCond      string
	srcArgs      []interface{}
	dstCond      string
	dstArgs      []interface{}
	targetTeamID *string
}

func (s *Service) cloneBetween(tx *gorm.DB, spec cloneSpec) error {
	var srcCustomers []models.Customer
	if err := tx.Where(spec.srcCond, spec.srcArgs...).Find(&srcCustomers).Error; err != nil {
		return fmt.Errorf("load source customers: %w", err)
	}

	var dstCustomers []models.Customer
	if err := tx.Where(spec.dstCond, spec.dstArgs...).Find(&dstCustomers).Error; err != nil {
		return fmt.Errorf("load target customers: %w", err)
	}
	existingCitizen := make(map[string]bool, len(dstCustomers))
	for _, c := range dstCustomers {
		existingCitizen[c.CitizenID] = true
	}

	customerClones := planCustomerClones(srcCustomers, existingCitizen, spec.targetTeamID)
	if len(customerClones) > 0 {
		if err := tx.Create(&customerClones).Error; err != nil {
			return fmt.Errorf("clone customers: %w", err)
		}
	}

	// Source customer id -> target scope customer id, matched by citizen id
	// over both pre-existing target rows and fresh clones.
	targetByCitizen := make(map[string]string, len(dstCustomers)+len(customerClones))
	for _, c := range dstCustomers {
		targetByCitizen[c.CitizenID] = c.ID
	}
	for _, c := range customerClones {
		targetByCitizen[c.CitizenID] = c.ID
	}
	customerIDMap := make(map[string]string, len(srcCustomers))
	for _, c := range srcCustomers {
		if id, ok := targetByCitizen[c.CitizenID]; ok {
			customerIDMap[c.ID] = id
		}
	}

	var srcOrders []models.Order
	if err := tx.Preload("Items").Where(spec.srcCond, spec.srcArgs...).Find(&srcOrders).Error; err != nil {
		return fmt.Errorf("load source orders: %w", err)
	}

	var dstOrders []models.Order
	if err := tx.Where(spec.dstCond, spec.dstArgs...).Find(&dstOrders).Error; err != nil {
		return fmt.Errorf("load target orders: %w", err)
	}
	existingLineage := make(map[string]bool, len(dstOrders))
	for i := range dstOrders {
		existingLineage[dstOrders[i].LineageID()] = true
	}

	orderClones := planOrderClones(srcOrders, existingLineage, customerIDMap, spec.targetTeamID)
	for i := range orderClones {
		if err := tx.Create(&orderClones[i]).Error; err != nil {
			return fmt.Errorf("clone order %s: %w", orderClones[i].LineageID(), err)
		}
	}

	if len(customerClones) > 0 || len(orderClones) > 0 {
		s.log.WithFields(logrus.Fields{
			"customers": len(customerClones),
			"orders":    len(orderClones),
		}).Info("records cloned between scopes")
	}
	return nil
}
