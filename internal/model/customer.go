package model

import "gorm.io/gorm"

type Customer struct {
	gorm.Model
	UserID         uint   `json:"user_id" gorm:"index;not null"`
	Name           string `json:"name" gorm:"not null"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	GSTIN          string `json:"gstin"`
	BillingAddress string `json:"billing_address"`
	StateCode      string `json:"state_code"`

	User     User      `json:"-" gorm:"foreignKey:UserID"`
	Invoices []Invoice `json:"-"`
}
