package models

import "time"

type QualificationType struct {
	ID          string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null"`
	Description *string `json:"description,omitempty"`
}

type QualificationBranch struct {
	ID                  string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	QualificationTypeID string  `json:"qualification_type_id" gorm:"not null;index;type:uuid"`
	Name                string  `json:"name" gorm:"not null"`
	Description         *string `json:"description,omitempty"`
}

// Qualification is one academic record on an application.
type Qualification struct {
	ID                    string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID                string    `json:"user_id" gorm:"not null;index;type:uuid"`
	QualificationTypeID   *string   `json:"qualification_type_id,omitempty" gorm:"index;type:uuid"`
	QualificationBranchID *string   `json:"qualification_branch_id,omitempty" gorm:"index;type:uuid"`
	InstituteName         string    `json:"institute_name" gorm:"not null" validate:"required"`
	BoardUniversity       *string   `json:"board_university,omitempty"`
	YearOfPassing         int       `json:"year_of_passing" gorm:"not null"`
	PercentageCGPA        string    `json:"percentage_cgpa" gorm:"type:varchar(20)"`
	CreatedAt             time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
