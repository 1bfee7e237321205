package models

import "time"

// AuditLog records a structured change-set for one mutating operation.
// Actor and IP are captured explicitly by the handler that performed the
// mutation; there is no ambient request state.
type AuditLog struct {
	ID        string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    *string     `json:"user_id,omitempty" gorm:"index;type:uuid"`
	Action    AuditAction `json:"action" gorm:"not null;type:varchar(10)"`
	ModelName string      `json:"model_name" gorm:"not null"`
	ObjectID  string      `json:"object_id" gorm:"not null"`
	Changes   []byte      `json:"changes,omitempty" gorm:"type:jsonb"`
	IPAddress *string     `json:"ip_address,omitempty"`
	Timestamp time.Time   `json:"timestamp" gorm:"autoCreateTime"`
}
