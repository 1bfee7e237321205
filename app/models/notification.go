package models

import "time"

// Notification is a persisted copy of every message sent to a user.
// Delivery over email is best effort; the row is kept regardless.
type Notification struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RecipientID string     `json:"recipient_id" gorm:"not null;index;type:uuid"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message" gorm:"not null"`
	IsRead      bool       `json:"is_read" gorm:"default:false"`
	Delivered   bool       `json:"delivered" gorm:"default:false"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}
