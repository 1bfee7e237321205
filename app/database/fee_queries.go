package database

import (
	"database/sql"

	"github.com/Shekhar17ACS/IETE/app/models"
)

const feeColumns = `id, membership_type, min_age, max_age, fee_amount, currency,
	is_foreign_member, gst_percentage, experience`

func scanFee(row interface{ Scan(...interface{}) error }) (*models.MembershipFee, error) {
	fee := &models.MembershipFee{}
	err := row.Scan(&fee.ID, &fee.MembershipType, &fee.MinAge, &fee.MaxAge, &fee.FeeAmount,
		&fee.Currency, &fee.ForeignMember, &fee.GSTPercent, &fee.Experience)
	if err != nil {
		return nil, err
	}
	return fee, nil
}

func GetFeeByID(db *sql.DB, feeID string) (*models.MembershipFee, error) {
	query := `SELECT ` + feeColumns + ` FROM membership_fees WHERE id = $1`
	return scanFee(db.QueryRow(query, feeID))
}

func ListFees(db *sql.DB) ([]*models.MembershipFee, error) {
	query := `SELECT ` + feeColumns + ` FROM membership_fees ORDER BY membership_type, min_age`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []*models.MembershipFee
	for rows.Next() {
		fee, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, rows.Err()
}

// FindFeeByCurrencyAndType matches by currency and a case-insensitive
// membership-type substring. Returns (nil, nil) when nothing matches.
func FindFeeByCurrencyAndType(db queryer, currency, membershipType string) (*models.MembershipFee, error) {
	query := `SELECT ` + feeColumns + ` FROM membership_fees
			  WHERE currency = $1 AND membership_type ILIKE '%' || $2 || '%'
			  ORDER BY membership_type LIMIT 1`
	fee, err := scanFee(db.QueryRow(query, currency, membershipType))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return fee, err
}

// FindFeeForApplicant resolves the rate-card row for an applicant's
// membership type, age and residency. Returns (nil, nil) when no row covers them.
func FindFeeForApplicant(db *sql.DB, membershipType string, age int, foreign bool) (*models.MembershipFee, error) {
	query := `SELECT ` + feeColumns + ` FROM membership_fees
			  WHERE membership_type ILIKE '%' || $1 || '%' AND is_foreign_member = $2
			  ORDER BY min_age NULLS FIRST`
	rows, err := db.Query(query, membershipType, foreign)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		fee, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		if fee.CoversAge(age) {
			return fee, nil
		}
	}
	return nil, rows.Err()
}

// lockFeeBand serializes rate-card writers per membership type and
// residency, so two concurrent writes cannot both pass the overlap scan.
// The advisory lock is released when the transaction ends.
func lockFeeBand(tx *sql.Tx, membershipType string, foreign bool) error {
	band := membershipType + ":domestic"
	if foreign {
		band = membershipType + ":foreign"
	}
	_, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, band)
	return err
}

// CreateFee inserts a rate-card row after verifying it collides with no
// existing row for the same type and foreign flag. Scan and insert run
// in one transaction under the band's advisory lock.
func CreateFee(db *sql.DB, fee *models.MembershipFee) (conflict *models.MembershipFee, err error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockFeeBand(tx, fee.MembershipType, fee.ForeignMember); err != nil {
		return nil, err
	}
	siblings, err := siblingFees(tx, fee.MembershipType, fee.ForeignMember, "")
	if err != nil {
		return nil, err
	}
	for _, other := range siblings {
		if fee.Overlaps(other) {
			return other, nil
		}
	}

	query := `INSERT INTO membership_fees (membership_type, min_age, max_age, fee_amount,
			  currency, is_foreign_member, gst_percentage, experience)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err = tx.QueryRow(query, fee.MembershipType, fee.MinAge, fee.MaxAge, fee.FeeAmount,
		fee.Currency, fee.ForeignMember, fee.GSTPercent, fee.Experience).Scan(&fee.ID)
	if err != nil {
		return nil, err
	}
	return nil, tx.Commit()
}

// UpdateFee saves a rate-card row after re-running the overlap check
// against every other row for the same type and foreign flag, under the
// same advisory lock as CreateFee.
func UpdateFee(db *sql.DB, fee *models.MembershipFee) (conflict *models.MembershipFee, err error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockFeeBand(tx, fee.MembershipType, fee.ForeignMember); err != nil {
		return nil, err
	}
	siblings, err := siblingFees(tx, fee.MembershipType, fee.ForeignMember, fee.ID)
	if err != nil {
		return nil, err
	}
	for _, other := range siblings {
		if fee.Overlaps(other) {
			return other, nil
		}
	}

	query := `UPDATE membership_fees SET membership_type = $1, min_age = $2, max_age = $3,
			  fee_amount = $4, currency = $5, is_foreign_member = $6, gst_percentage = $7,
			  experience = $8 WHERE id = $9`
	_, err = tx.Exec(query, fee.MembershipType, fee.MinAge, fee.MaxAge, fee.FeeAmount,
		fee.Currency, fee.ForeignMember, fee.GSTPercent, fee.Experience, fee.ID)
	if err != nil {
		return nil, err
	}
	return nil, tx.Commit()
}

func DeleteFee(db *sql.DB, feeID string) error {
	_, err := db.Exec(`DELETE FROM membership_fees WHERE id = $1`, feeID)
	return err
}

func siblingFees(db queryer, membershipType string, foreign bool, excludeID string) ([]*models.MembershipFee, error) {
	query := `SELECT ` + feeColumns + ` FROM membership_fees
			  WHERE membership_type = $1 AND is_foreign_member = $2 AND id::text != $3`
	rows, err := db.Query(query, membershipType, foreign, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []*models.MembershipFee
	for rows.Next() {
		fee, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, rows.Err()
}
