package models

import "time"

// ProposerExpiryDays is how long an invitation stays open before the
// expiry sweep closes it.
const ProposerExpiryDays = 30

// MaxProposersPerApplicant bounds how many invitations an applicant may create.
const MaxProposersPerApplicant = 2

// Proposer is an endorsement invitation sent to an existing member on
// behalf of an applicant. It transitions pending -> approved/rejected
// via the token link, or pending -> expired via the sweep; no other
// transitions are permitted.
type Proposer struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       string         `json:"user_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Name         string         `json:"name"`
	MembershipNo string         `json:"membership_no" gorm:"not null" validate:"required"`
	MobileNo     string         `json:"mobile_no" gorm:"type:varchar(20)"`
	Email        string         `json:"email" gorm:"not null" validate:"required,email"`
	Status       ProposerStatus `json:"status" gorm:"not null;default:'pending';index;type:varchar(10)"`
	Token        string         `json:"-" gorm:"uniqueIndex;not null;type:uuid"`
	ExpiryDate   time.Time      `json:"expiry_date" gorm:"not null;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// DefaultExpiry returns the expiry timestamp for a new invitation.
func DefaultExpiry(now time.Time) time.Time {
	return now.Add(ProposerExpiryDays * 24 * time.Hour)
}
