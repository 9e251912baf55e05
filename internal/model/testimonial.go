package model

import "gorm.io/gorm"

type Testimonial struct {
	gorm.Model
	AuthorName   string `json:"author_name" gorm:"not null"`
	CompanyName  string `json:"company_name"`
	Content      string `json:"content" gorm:"not null"`
	Rating       int    `json:"rating" gorm:"default:5"`
	DisplayOrder int    `json:"display_order" gorm:"default:0"`
	Published    bool   `json:"published" gorm:"default:true"`
}
