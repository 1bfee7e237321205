package models

import "time"

// Role represents a membership role (e.g. Fellow, Member, Associate Member).
// ParentID links roles into an approval hierarchy; a nil parent marks a top
// level role. The reference is kept as an ID, never a pointer, so a bad row
// cannot produce a pointer cycle.
type Role struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	ParentID  *string   `json:"parent_id,omitempty" gorm:"index;type:uuid"`
	GroupID   *string   `json:"group_id,omitempty" gorm:"index;type:uuid"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Group *Group `json:"group,omitempty" gorm:"foreignKey:GroupID;references:ID"`
}

// Group is the permission group owned by a role
type Group struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
