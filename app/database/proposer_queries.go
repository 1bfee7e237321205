package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/Shekhar17ACS/IETE/app/models"
)

const proposerColumns = `id, user_id, name, membership_no, mobile_no, email, status,
	token, expiry_date, created_at, updated_at`

func scanProposer(row interface{ Scan(...interface{}) error }) (*models.Proposer, error) {
	p := &models.Proposer{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.MembershipNo, &p.MobileNo, &p.Email,
		&p.Status, &p.Token, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func CreateProposer(db *sql.DB, p *models.Proposer) error {
	query := `INSERT INTO proposers (user_id, name, membership_no, mobile_no, email, status, token, expiry_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at`
	return db.QueryRow(query, p.UserID, p.Name, p.MembershipNo, p.MobileNo, p.Email,
		p.Status, p.Token, p.ExpiryDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// CountActiveProposers counts an applicant's invitations that still
// occupy a slot (anything not expired or rejected).
func CountActiveProposers(db *sql.DB, userID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM proposers
						WHERE user_id = $1 AND status IN ($2, $3)`,
		userID, models.ProposerPending, models.ProposerApproved).Scan(&n)
	return n, err
}

func GetProposerByToken(db *sql.DB, token string) (*models.Proposer, error) {
	query := `SELECT ` + proposerColumns + ` FROM proposers WHERE token = $1`
	p, err := scanProposer(db.QueryRow(query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func ListProposersByUser(db *sql.DB, userID string) ([]*models.Proposer, error) {
	query := `SELECT ` + proposerColumns + ` FROM proposers
			  WHERE user_id = $1 ORDER BY created_at`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Proposer
	for rows.Next() {
		p, err := scanProposer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DecideProposer flips a pending invitation to approved or rejected.
// Returns false when the row was not pending anymore, so a late click
// on an expired or already-decided link changes nothing.
func DecideProposer(db *sql.DB, proposerID string, status models.ProposerStatus) (bool, error) {
	res, err := db.Exec(`UPDATE proposers SET status = $1, updated_at = NOW()
						 WHERE id = $2 AND status = $3`,
		status, proposerID, models.ProposerPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ExpireProposer flips a pending invitation to expired with the same
// guard as DecideProposer, so the sweep and a late link click converge
// on one transition.
func ExpireProposer(db *sql.DB, proposerID string) (bool, error) {
	res, err := db.Exec(`UPDATE proposers SET status = $1, updated_at = NOW()
						 WHERE id = $2 AND status = $3`,
		models.ProposerExpired, proposerID, models.ProposerPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func ListOverdueProposers(db *sql.DB, now time.Time) ([]*models.Proposer, error) {
	query := `SELECT ` + proposerColumns + ` FROM proposers
			  WHERE status = $1 AND expiry_date < $2`
	rows, err := db.Query(query, models.ProposerPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Proposer
	for rows.Next() {
		p, err := scanProposer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProposerDirectory adapts the pool to the proposer services' store
// interfaces: the invitation flow, the action-link flow and the expiry
// sweep all share it.
type ProposerDirectory struct {
	DB *sql.DB
}

func (d *ProposerDirectory) MemberByEmailAndMembershipNo(ctx context.Context, email, membershipNo string) (*models.User, error) {
	return GetMemberByEmailAndMembershipNo(d.DB, email, membershipNo)
}

func (d *ProposerDirectory) CountActiveProposers(ctx context.Context, userID string) (int, error) {
	return CountActiveProposers(d.DB, userID)
}

func (d *ProposerDirectory) CreateProposer(ctx context.Context, p *models.Proposer) error {
	return CreateProposer(d.DB, p)
}

func (d *ProposerDirectory) ProposerByToken(ctx context.Context, token string) (*models.Proposer, error) {
	return GetProposerByToken(d.DB, token)
}

func (d *ProposerDirectory) DecideProposer(ctx context.Context, proposerID string, status models.ProposerStatus) (bool, error) {
	return DecideProposer(d.DB, proposerID, status)
}

func (d *ProposerDirectory) ExpireProposer(ctx context.Context, proposerID string) (bool, error) {
	return ExpireProposer(d.DB, proposerID)
}

func (d *ProposerDirectory) OverdueProposers(ctx context.Context, now time.Time) ([]*models.Proposer, error) {
	return ListOverdueProposers(d.DB, now)
}

func (d *ProposerDirectory) GetUser(ctx context.Context, id string) (*models.User, error) {
	return GetUserByID(d.DB, id)
}
