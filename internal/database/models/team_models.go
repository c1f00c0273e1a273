package models

import "time"

const (
	TeamStatusActive   = "active"
	TeamStatusInactive = "inactive"
)

const (
	RoleLeader   = "leader"
	RoleCoLeader = "co_leader"
	RoleMember   = "member"
)

const (
	MemberPending  = "pending"
	MemberActive   = "active"
	MemberInactive = "inactive"
)

type Team struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"not null"`
	Code        string `gorm:"uniqueIndex;not null"`
	OwnerUserID string `gorm:"type:uuid;not null"`
	Status      string `gorm:"not null;default:active"`

	CreatedAt *time.Time `gorm:"autoCreateTime"`

	Members []TeamMember `gorm:"foreignKey:TeamID"`
}

// TeamMember holds a user's single membership. The unique index on UserID is
// what enforces one-team-per-user.
type TeamMember struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	TeamID string `gorm:"type:uuid;index;not null"`
	UserID string `gorm:"type:uuid;uniqueIndex;not null"`
	Role   string `gorm:"not null;default:member"`
	Status string `gorm:"not null;default:pending"`

	JoinedAt  *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}
