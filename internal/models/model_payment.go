package models

import (
	"time"

	"github.com/amarajasa/weddingpay/pkg/types"
)

// Payment is a single owed amount between a client and a vendor with a
// lifecycle status. Created by the planner CRUD flows; mutated only by the
// transaction service (order id) and the webhook reconciler (status).
type Payment struct {
	ID       string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	ClientID string `gorm:"column:client_id;type:uuid;not null;index" json:"client_id"`
	VendorID string `gorm:"column:vendor_id;type:uuid;not null;index" json:"vendor_id"`
	// Amount is in whole Rupiah, no fractional component.
	Amount int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Type   types.PaymentType   `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Status types.PaymentStatus `gorm:"column:status;type:varchar(32);not null;default:'pending'" json:"status"`

	DueDate *time.Time `gorm:"column:due_date;default:null" json:"due_date"`
	// PaidDate is set exactly when status becomes paid, null otherwise.
	PaidDate *time.Time `gorm:"column:paid_date;default:null" json:"paid_date"`

	// MidtransOrderID is the sole correlation key for webhook notifications.
	// Overwritten on every new transaction creation; a webhook carrying a
	// superseded order id matches no row and is dropped.
	MidtransOrderID       *string `gorm:"column:midtrans_order_id;type:varchar(64);index" json:"midtrans_order_id"`
	MidtransTransactionID *string `gorm:"column:midtrans_transaction_id;type:varchar(64)" json:"midtrans_transaction_id"`
	PaymentMethod         *string `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
