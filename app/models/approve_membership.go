package models

import "time"

// ApproveMembership is the finalized (or explicitly rejected) decision
// record for an applicant. At most one approved row may ever exist per
// applicant; the engine checks for it before accepting further votes.
// Rejected rows are interim and may accumulate over time.
type ApproveMembership struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ApplicantID string    `json:"applicant_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Approved    bool      `json:"approved" gorm:"default:false"`
	Rejected    bool      `json:"rejected" gorm:"default:false"`
	Remark      string    `json:"remark"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Applicant  *User   `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID;references:ID"`
	ApprovedBy []*User `json:"approved_by,omitempty" gorm:"many2many:membership_approvers;"`
}
