package models

// MembershipFee is one row of the membership rate card, keyed by
// (membership type, age bracket, foreign flag). No two rows may overlap
// for the same type and foreign flag.
type MembershipFee struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MembershipType string  `json:"membership_type" gorm:"not null;type:varchar(50)" validate:"required"`
	MinAge         *int    `json:"min_age,omitempty"`
	MaxAge         *int    `json:"max_age,omitempty"`
	FeeAmount      float64 `json:"fee_amount" gorm:"not null;type:numeric(10,2)" validate:"required,gt=0"`
	Currency       string  `json:"currency" gorm:"not null;default:'INR';type:varchar(5)"`
	ForeignMember  bool    `json:"is_foreign_member" gorm:"default:false"`
	GSTPercent     float64 `json:"gst_percentage" gorm:"type:numeric(5,2);default:18"`
	Experience     *float64 `json:"experience,omitempty"`
}

// CoversAge reports whether the fee row applies to the given age.
// Foreign-member rows apply to all ages; nil bounds are open ended.
func (f *MembershipFee) CoversAge(age int) bool {
	if f.ForeignMember {
		return true
	}
	if f.MinAge != nil && age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && age > *f.MaxAge {
		return false
	}
	return true
}

// Overlaps reports whether two rate-card rows cover a common age for the
// same membership type and foreign flag.
func (f *MembershipFee) Overlaps(other *MembershipFee) bool {
	if f.MembershipType != other.MembershipType || f.ForeignMember != other.ForeignMember {
		return false
	}
	if f.ForeignMember {
		// Foreign rows ignore age bounds, so two rows always collide.
		return true
	}
	lo1, hi1 := ageBounds(f.MinAge, f.MaxAge)
	lo2, hi2 := ageBounds(other.MinAge, other.MaxAge)
	return lo1 <= hi2 && lo2 <= hi1
}

func ageBounds(min, max *int) (int, int) {
	lo, hi := 0, 200
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	return lo, hi
}
