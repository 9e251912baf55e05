package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive      = "active"
	UserStatusDeactivated = "deactivated"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Name     string `json:"name"`

	// Business metadata printed on invoices
	BusinessName string `json:"business_name" gorm:"not null"`
	GSTIN        string `json:"gstin"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
	StateCode    string `json:"state_code"`

	Role   string `json:"role" gorm:"default:'user'"`
	Status string `json:"status" gorm:"default:'active'"`

	ResetToken          string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	Customers []Customer `json:"-"`
	Invoices  []Invoice  `json:"-"`
}

func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.BusinessName
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"business_name": u.BusinessName,
		"gstin":         u.GSTIN,
		"phone_number":  u.PhoneNumber,
		"address":       u.Address,
		"state_code":    u.StateCode,
		"role":          u.Role,
	}
}
