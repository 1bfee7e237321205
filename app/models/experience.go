package models

import "time"

// Experience is one work-history record on an application.
type Experience struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID           string     `json:"user_id" gorm:"not null;index;type:uuid"`
	OrganizationName *string    `json:"organization_name,omitempty"`
	EmployeeType     *string    `json:"employee_type,omitempty" gorm:"type:varchar(50)"`
	JobTitle         *string    `json:"job_title,omitempty"`
	CurrentlyWorking bool       `json:"currently_working" gorm:"default:false"`
	StartDate        time.Time  `json:"start_date" gorm:"not null;type:date" validate:"required"`
	EndDate          *time.Time `json:"end_date,omitempty" gorm:"type:date"`
	WorkType         *string    `json:"work_type,omitempty" gorm:"type:varchar(50)"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// Years returns the duration of the record in fractional years,
// counting open-ended records up to now.
func (e *Experience) Years(now time.Time) float64 {
	end := now
	if e.EndDate != nil {
		end = *e.EndDate
	}
	days := end.Sub(e.StartDate).Hours() / 24
	if days < 0 {
		return 0
	}
	return days / 365
}

// TotalExperienceYears sums experience records in years, rounded to two
// decimal places the same way the profile stores it.
func TotalExperienceYears(records []*Experience, now time.Time) float64 {
	var total float64
	for _, e := range records {
		total += e.Years(now)
	}
	return float64(int(total*100+0.5)) / 100
}
