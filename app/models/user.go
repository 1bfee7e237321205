package models

import "time"

type User struct {
	ID            string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	ApplicationID *string    `json:"application_id,omitempty" gorm:"uniqueIndex"`
	MembershipID  *string    `json:"membership_id,omitempty" gorm:"uniqueIndex"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	Password      string     `json:"-" gorm:"not null" validate:"required,min=8"`
	Title         *string    `json:"title,omitempty" gorm:"type:varchar(50)"`
	Name          string     `json:"name" gorm:"not null" validate:"required"`
	MiddleName    *string    `json:"middle_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	MobileNumber  string     `json:"mobile_number,omitempty" gorm:"type:varchar(20)"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty" gorm:"type:date"`
	Gender        *string    `json:"gender,omitempty" gorm:"type:varchar(10)"`
	FromIndia     bool       `json:"from_india" gorm:"default:true"`
	Country       *string    `json:"country,omitempty"`
	State         *string    `json:"state,omitempty"`
	City          *string    `json:"city,omitempty"`

	RoleID          *string `json:"role_id,omitempty" gorm:"index;type:uuid"`
	MembershipFeeID *string `json:"membership_fee_id,omitempty" gorm:"index"`
	TotalExperience float64 `json:"total_experience" gorm:"default:0"`
	IsApproved      bool    `json:"is_approved" gorm:"default:false"`
	IsActive        bool    `json:"is_active" gorm:"default:false"`
	IsStaff         bool    `json:"is_staff" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Role          *Role          `json:"role,omitempty" gorm:"foreignKey:RoleID;references:ID"`
	MembershipFee *MembershipFee `json:"membership_fee,omitempty" gorm:"foreignKey:MembershipFeeID;references:ID"`
	Experiences   []*Experience  `json:"experiences,omitempty" gorm:"-"`
}

// FullName joins the name parts, skipping empty ones.
func (u *User) FullName() string {
	name := u.Name
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + *u.MiddleName
	}
	if u.LastName != nil && *u.LastName != "" {
		name += " " + *u.LastName
	}
	return name
}

// IsMember reports whether a membership ID has been assigned.
func (u *User) IsMember() bool {
	return u.MembershipID != nil && *u.MembershipID != ""
}
