package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	TeamRoleOwner  = "owner"
	TeamRoleAdmin  = "admin"
	TeamRoleMember = "member"

	TeamMemberStatusPending = "pending"
	TeamMemberStatusActive  = "active"
	TeamMemberStatusRemoved = "removed"

	InviteTokenTTL = 7 * 24 * time.Hour
)

type TeamMember struct {
	gorm.Model
	OwnerID         uint      `json:"owner_id" gorm:"index;not null"`
	Email           string    `json:"email" gorm:"not null"`
	Role            string    `json:"role" gorm:"default:'member'"`
	Status          string    `json:"status" gorm:"default:'pending'"`
	InviteToken     string    `json:"-" gorm:"index"`
	InviteExpiresAt time.Time `json:"invite_expires_at"`
	MemberUserID    *uint     `json:"member_user_id"` // set once the invite is accepted

	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// TeamMemberAddon is a purchased extra-seat grant with its own billing
// window, additive to the base plan's seat allowance.
type TeamMemberAddon struct {
	gorm.Model
	OwnerID   uint      `json:"owner_id" gorm:"index;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	PaymentID uint      `json:"payment_id"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}
