package models

import "time"

// Payment represents one payment attempt for a membership application.
// One row is created per order; amount and currency are never changed
// once the payment reaches Success.
type Payment struct {
	ID             string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID         string        `json:"user_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	MembershipType *string       `json:"membership_type,omitempty" gorm:"type:varchar(50)"`
	OrderID        string        `json:"order_id" gorm:"not null;index"`
	PaymentID      *string       `json:"payment_id,omitempty" gorm:"index"`
	Receipt        string        `json:"receipt" gorm:"not null"`
	Amount         float64       `json:"amount" gorm:"not null;type:numeric(10,2)" validate:"required,gt=0"`
	Currency       string        `json:"currency" gorm:"not null;default:'INR';type:varchar(5)"`
	Status         PaymentStatus `json:"status" gorm:"not null;default:'Pending';index;type:varchar(20)"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// IsRefundable reports whether a refund may be initiated for this payment.
func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentSuccess
}
