package models

import "time"

// Vendor is a wedding service provider (venue, catering, photography, ...).
// Owned by the planner CRUD flows; read here for the gateway item line.
type Vendor struct {
	ID        string    `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Category  string    `gorm:"column:category;type:varchar(64)" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vendor) TableName() string { return "vendors" }
