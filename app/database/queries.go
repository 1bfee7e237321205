package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shekhar17ACS/IETE/app/models"
)

// queryer is the query surface shared by *sql.DB and *sql.Tx, so free
// query functions run the same inside and outside a transaction.
type queryer interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// UserFilters represents filtering options for applicant and member lists
type UserFilters struct {
	Search     string
	IsApproved *bool
	RoleID     string
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash with a plaintext candidate
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const userColumns = `id, application_id, membership_id, email, password, title, name, middle_name,
	last_name, mobile_number, date_of_birth, gender, from_india, country, state, city,
	role_id, membership_fee_id, total_experience, is_approved, is_active, is_staff,
	created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.ApplicationID, &user.MembershipID, &user.Email, &user.Password,
		&user.Title, &user.Name, &user.MiddleName, &user.LastName, &user.MobileNumber,
		&user.DateOfBirth, &user.Gender, &user.FromIndia, &user.Country, &user.State,
		&user.City, &user.RoleID, &user.MembershipFeeID, &user.TotalExperience,
		&user.IsApproved, &user.IsActive, &user.IsStaff, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(db *sql.DB, user *models.User) error {
	query := `INSERT INTO users (email, password, name, middle_name, last_name, mobile_number, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at, updated_at`
	return db.QueryRow(query, user.Email, user.Password, user.Name, user.MiddleName,
		user.LastName, user.MobileNumber, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err := scanUser(db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func GetUserByID(db queryer, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(db.QueryRow(query, userID))
	if err != nil {
		return nil, err
	}
	if user.RoleID != nil {
		role, err := GetRoleByID(db, *user.RoleID)
		if err != nil && err != sql.ErrNoRows {
			return nil, err
		}
		user.Role = role
	}
	return user, nil
}

// GetMemberByEmailAndMembershipNo matches an existing member by both
// identifiers together; (nil, nil) when no member matches.
func GetMemberByEmailAndMembershipNo(db queryer, email, membershipNo string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE LOWER(email) = LOWER($1) AND membership_id = $2`
	user, err := scanUser(db.QueryRow(query, email, membershipNo))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func MembershipIDExists(db *sql.DB, membershipID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE membership_id = $1)`, membershipID).Scan(&exists)
	return exists, err
}

// MaxMembershipSuffix returns the greatest numeric suffix among issued
// membership IDs under the prefix, or 0 when none exist.
func MaxMembershipSuffix(db *sql.DB, prefix string) (int, error) {
	query := `SELECT COALESCE(MAX(NULLIF(regexp_replace(substring(membership_id FROM $1), '\D', '', 'g'), '')::int), 0)
			  FROM users
			  WHERE membership_id LIKE $2`
	var max int
	err := db.QueryRow(query, len(prefix)+2, prefix+"-%").Scan(&max)
	return max, err
}

// AssignMembership sets the issued membership ID and role and marks the
// account approved.
func AssignMembership(db *sql.DB, userID, membershipID, roleID string) error {
	_, err := db.Exec(`UPDATE users SET membership_id = $1, role_id = $2, is_approved = true, updated_at = NOW()
					   WHERE id = $3`, membershipID, roleID, userID)
	return err
}

func UpdateUserProfile(db *sql.DB, user *models.User) error {
	query := `UPDATE users SET title = $1, name = $2, middle_name = $3, last_name = $4,
			  mobile_number = $5, date_of_birth = $6, gender = $7, from_india = $8,
			  country = $9, state = $10, city = $11, updated_at = NOW()
			  WHERE id = $12`
	_, err := db.Exec(query, user.Title, user.Name, user.MiddleName, user.LastName,
		user.MobileNumber, user.DateOfBirth, user.Gender, user.FromIndia,
		user.Country, user.State, user.City, user.ID)
	return err
}

func SetUserPassword(db *sql.DB, userID, passwordHash string) error {
	_, err := db.Exec(`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	return err
}

func ActivateUser(db *sql.DB, userID string) error {
	_, err := db.Exec(`UPDATE users SET is_active = true, updated_at = NOW() WHERE id = $1`, userID)
	return err
}

func SetUserApplicationID(db *sql.DB, userID, applicationID string) error {
	_, err := db.Exec(`UPDATE users SET application_id = $1, updated_at = NOW() WHERE id = $2`, applicationID, userID)
	return err
}

func ListUsers(db *sql.DB, filters UserFilters) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d OR COALESCE(membership_id, '') ILIKE $%d)`,
			argPos, argPos, argPos)
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}
	if filters.IsApproved != nil {
		query += fmt.Sprintf(` AND is_approved = $%d`, argPos)
		args = append(args, *filters.IsApproved)
		argPos++
	}
	if filters.RoleID != "" {
		query += fmt.Sprintf(` AND role_id = $%d`, argPos)
		args = append(args, filters.RoleID)
		argPos++
	}

	sortBy := "created_at"
	switch filters.SortBy {
	case "name", "email", "created_at":
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, sortBy, sortOrder)

	if filters.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, filters.Limit)
		argPos++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filters.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func CreateExperience(db *sql.DB, e *models.Experience) error {
	query := `INSERT INTO experiences (user_id, organization_name, employee_type, job_title,
			  currently_working, start_date, end_date, work_type)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at`
	return db.QueryRow(query, e.UserID, e.OrganizationName, e.EmployeeType, e.JobTitle,
		e.CurrentlyWorking, e.StartDate, e.EndDate, e.WorkType).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func ListExperiences(db *sql.DB, userID string) ([]*models.Experience, error) {
	query := `SELECT id, user_id, organization_name, employee_type, job_title, currently_working,
			  start_date, end_date, work_type, created_at, updated_at
			  FROM experiences WHERE user_id = $1 ORDER BY start_date`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Experience
	for rows.Next() {
		e := &models.Experience{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.OrganizationName, &e.EmployeeType, &e.JobTitle,
			&e.CurrentlyWorking, &e.StartDate, &e.EndDate, &e.WorkType, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecalculateTotalExperience resums a user's experience records and
// stores the rounded total on the profile.
func RecalculateTotalExperience(db *sql.DB, userID string) (float64, error) {
	records, err := ListExperiences(db, userID)
	if err != nil {
		return 0, err
	}
	total := models.TotalExperienceYears(records, time.Now())
	_, err = db.Exec(`UPDATE users SET total_experience = $1, updated_at = NOW() WHERE id = $2`, total, userID)
	return total, err
}

func CreateQualification(db *sql.DB, q *models.Qualification) error {
	query := `INSERT INTO qualifications (user_id, qualification_type_id, qualification_branch_id,
			  institute_name, board_university, year_of_passing, percentage_cgpa)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at, updated_at`
	return db.QueryRow(query, q.UserID, q.QualificationTypeID, q.QualificationBranchID,
		q.InstituteName, q.BoardUniversity, q.YearOfPassing, q.PercentageCGPA).
		Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

func ListQualifications(db *sql.DB, userID string) ([]*models.Qualification, error) {
	query := `SELECT id, user_id, qualification_type_id, qualification_branch_id, institute_name,
			  board_university, year_of_passing, percentage_cgpa, created_at, updated_at
			  FROM qualifications WHERE user_id = $1 ORDER BY year_of_passing`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Qualification
	for rows.Next() {
		q := &models.Qualification{}
		if err := rows.Scan(&q.ID, &q.UserID, &q.QualificationTypeID, &q.QualificationBranchID,
			&q.InstituteName, &q.BoardUniversity, &q.YearOfPassing, &q.PercentageCGPA,
			&q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func ListNotifications(db *sql.DB, recipientID string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, recipient_id, subject, message, is_read, delivered, delivered_at, created_at
			  FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := db.Query(query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Subject, &n.Message, &n.IsRead,
			&n.Delivered, &n.DeliveredAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func MarkNotificationRead(db *sql.DB, notificationID, recipientID string) error {
	_, err := db.Exec(`UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID)
	return err
}

// DashboardCounts aggregates the headline numbers for the admin dashboard.
func DashboardCounts(db *sql.DB) (map[string]int, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users) AS total_users,
		(SELECT COUNT(*) FROM users WHERE membership_id IS NOT NULL) AS members,
		(SELECT COUNT(*) FROM users WHERE is_approved = false AND is_active = true) AS pending_applications,
		(SELECT COUNT(*) FROM payments WHERE status = 'Success') AS successful_payments,
		(SELECT COUNT(*) FROM proposers WHERE status = 'pending') AS pending_proposers`

	var totalUsers, members, pending, payments, proposers int
	if err := db.QueryRow(query).Scan(&totalUsers, &members, &pending, &payments, &proposers); err != nil {
		return nil, err
	}
	return map[string]int{
		"total_users":          totalUsers,
		"members":              members,
		"pending_applications": pending,
		"successful_payments":  payments,
		"pending_proposers":    proposers,
	}, nil
}
