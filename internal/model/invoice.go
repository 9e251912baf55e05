package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
)

// Invoice totals are computed once at creation and never re-derived:
// GSTAmount = Subtotal * GSTPercentage / 100, Total = Subtotal + GSTAmount.
type Invoice struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_invoice_number"`
	CustomerID uint      `json:"customer_id" gorm:"not null"`
	Number     string    `json:"number" gorm:"not null;uniqueIndex:idx_user_invoice_number"`
	IssueDate  time.Time `json:"issue_date" gorm:"not null"`
	DueDate    time.Time `json:"due_date"`
	Status     string    `json:"status" gorm:"default:'draft'"`

	Subtotal      float64 `json:"subtotal" gorm:"not null"`
	GSTPercentage float64 `json:"gst_percentage" gorm:"not null"`
	GSTAmount     float64 `json:"gst_amount" gorm:"not null"`
	Total         float64 `json:"total" gorm:"not null"`

	Notes string `json:"notes"`

	User     User          `json:"-" gorm:"foreignKey:UserID"`
	Customer Customer      `json:"customer" gorm:"foreignKey:CustomerID"`
	Items    []InvoiceItem `json:"items"`
}

type InvoiceItem struct {
	gorm.Model
	InvoiceID   uint    `json:"invoice_id" gorm:"index;not null"`
	Description string  `json:"description" gorm:"not null"`
	Quantity    float64 `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"not null"`
	Amount      float64 `json:"amount" gorm:"not null"` // Quantity * UnitPrice
}

// InvoiceSettings holds per-tenant document styling. A missing row means
// the renderer falls back to its documented defaults.
type InvoiceSettings struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	PrimaryColor string `json:"primary_color"`
	FontFamily   string `json:"font_family"`
	LogoURL      string `json:"logo_url"`
	FooterNote   string `json:"footer_note"`
}
