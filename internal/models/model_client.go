package models

import "time"

// Client is the couple paying for the wedding. Owned by the planner CRUD
// flows; this service only reads it for customer details.
type Client struct {
	ID          string     `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name        string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email       string     `gorm:"column:email;type:varchar(255)" json:"email"`
	Phone       string     `gorm:"column:phone;type:varchar(32)" json:"phone"`
	WeddingDate *time.Time `gorm:"column:wedding_date;default:null" json:"wedding_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
