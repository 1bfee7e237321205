package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/approval"
)

// GetConfigByType loads an approval configuration with its approver set
// and their roles. Returns (nil, nil) when no configuration exists.
func GetConfigByType(db queryer, configType string) (*models.ConfigSetting, error) {
	return loadConfigByType(db, configType, false)
}

// loadConfigByType is the shared loader. With lock set, the config row
// is read FOR UPDATE so the caller's transaction owns it until commit.
func loadConfigByType(db queryer, configType string, lock bool) (*models.ConfigSetting, error) {
	config := &models.ConfigSetting{}
	var raw []byte
	query := `SELECT id, title, type, approval_prsnt, heirarchy, value, created_at, updated_at
			  FROM config_settings WHERE type = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	err := db.QueryRow(query, configType).Scan(&config.ID, &config.Title, &config.Type,
		&config.ApprovalPercent, &config.Hierarchy, &raw, &config.CreatedAt, &config.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &config.Value); err != nil {
		return nil, err
	}

	config.Approvers, err = configApprovers(db, config.ID)
	if err != nil {
		return nil, err
	}
	return config, nil
}

func configApprovers(db queryer, configID string) ([]*models.User, error) {
	query := `SELECT u.id, u.email, u.name, u.role_id,
			  r.id, r.name, r.parent_id
			  FROM config_approvers ca
			  JOIN users u ON u.id = ca.user_id
			  LEFT JOIN roles r ON r.id = u.role_id
			  WHERE ca.config_id = $1
			  ORDER BY u.name`
	rows, err := db.Query(query, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvers []*models.User
	for rows.Next() {
		u := &models.User{}
		var roleID, roleName, roleParent sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.RoleID,
			&roleID, &roleName, &roleParent); err != nil {
			return nil, err
		}
		if roleID.Valid {
			role := &models.Role{ID: roleID.String, Name: roleName.String}
			if roleParent.Valid {
				parent := roleParent.String
				role.ParentID = &parent
			}
			u.Role = role
		}
		approvers = append(approvers, u)
	}
	return approvers, rows.Err()
}

func ListConfigs(db *sql.DB) ([]*models.ConfigSetting, error) {
	query := `SELECT id, title, type, approval_prsnt, heirarchy, value, created_at, updated_at
			  FROM config_settings ORDER BY type`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.ConfigSetting
	for rows.Next() {
		c := &models.ConfigSetting{}
		var raw []byte
		if err := rows.Scan(&c.ID, &c.Title, &c.Type, &c.ApprovalPercent, &c.Hierarchy,
			&raw, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &c.Value); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// SaveConfig upserts a configuration by workflow type and replaces its
// approver set. The vote ledger is never overwritten here.
func SaveConfig(db *sql.DB, config *models.ConfigSetting, approverIDs []string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`INSERT INTO config_settings (title, type, approval_prsnt, heirarchy, value)
					   VALUES ($1, $2, $3, $4, '{}')
					   ON CONFLICT (type) DO UPDATE SET
					   title = EXCLUDED.title,
					   approval_prsnt = EXCLUDED.approval_prsnt,
					   heirarchy = EXCLUDED.heirarchy,
					   updated_at = NOW()
					   RETURNING id`,
		config.Title, config.Type, config.ApprovalPercent, config.Hierarchy).Scan(&config.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM config_approvers WHERE config_id = $1`, config.ID); err != nil {
		return err
	}
	for _, userID := range approverIDs {
		if _, err := tx.Exec(`INSERT INTO config_approvers (config_id, user_id) VALUES ($1, $2)`,
			config.ID, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func DeleteConfig(db *sql.DB, configID string) error {
	_, err := db.Exec(`DELETE FROM config_settings WHERE id = $1`, configID)
	return err
}

func SaveConfigLedger(db queryer, configID string, ledger models.VoteLedger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE config_settings SET value = $1, updated_at = NOW() WHERE id = $2`,
		raw, configID)
	return err
}

// HasApprovedDecision reports whether a finalized decision row exists.
func HasApprovedDecision(db queryer, applicantID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM approve_memberships
						WHERE applicant_id = $1 AND approved = true)`, applicantID).Scan(&exists)
	return exists, err
}

func ListDecisions(db *sql.DB, applicantID string) ([]*models.ApproveMembership, error) {
	query := `SELECT id, applicant_id, approved, rejected, remark, submitted_at, created_at, updated_at
			  FROM approve_memberships WHERE applicant_id = $1 ORDER BY created_at DESC`
	rows, err := db.Query(query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ApproveMembership
	for rows.Next() {
		d := &models.ApproveMembership{}
		if err := rows.Scan(&d.ID, &d.ApplicantID, &d.Approved, &d.Rejected, &d.Remark,
			&d.SubmittedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestDecisionByApplicant returns the newest decision row, or (nil, nil).
func LatestDecisionByApplicant(db queryer, applicantID string) (*models.ApproveMembership, error) {
	d := &models.ApproveMembership{}
	query := `SELECT id, applicant_id, approved, rejected, remark, submitted_at, created_at, updated_at
			  FROM approve_memberships WHERE applicant_id = $1 ORDER BY created_at DESC LIMIT 1`
	err := db.QueryRow(query, applicantID).Scan(&d.ID, &d.ApplicantID, &d.Approved, &d.Rejected,
		&d.Remark, &d.SubmittedAt, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreateRejection inserts an interim rejected decision row with its
// voters. Atomicity comes from the caller's transaction.
func CreateRejection(db queryer, applicantID, remark string, rejectedBy []string) error {
	var decisionID string
	err := db.QueryRow(`INSERT INTO approve_memberships (applicant_id, rejected, remark)
						VALUES ($1, true, $2) RETURNING id`, applicantID, remark).Scan(&decisionID)
	if err != nil {
		return err
	}
	for _, userID := range rejectedBy {
		if _, err := db.Exec(`INSERT INTO membership_approvers (approve_membership_id, user_id)
							  VALUES ($1, $2)`, decisionID, userID); err != nil {
			return err
		}
	}
	return nil
}

// applyFinalization writes the approved decision on the caller's
// transaction: membership ID and role on the user, the decision row with
// its voters, and the ledger reset. A membership ID unique violation
// maps to approval.ErrDuplicateMembershipID so the engine can retry
// allocation.
func applyFinalization(db queryer, f *approval.Finalization) error {
	_, err := db.Exec(`UPDATE users SET membership_id = $1, role_id = $2, is_approved = true, updated_at = NOW()
					   WHERE id = $3`, f.MembershipID, f.RoleID, f.ApplicantID)
	if err != nil {
		return mapDuplicateMembershipID(err)
	}

	var decisionID string
	err = db.QueryRow(`INSERT INTO approve_memberships (applicant_id, approved, remark)
					   VALUES ($1, true, $2) RETURNING id`, f.ApplicantID, f.Remark).Scan(&decisionID)
	if err != nil {
		return err
	}
	for _, userID := range f.ApprovedBy {
		if _, err := db.Exec(`INSERT INTO membership_approvers (approve_membership_id, user_id)
							  VALUES ($1, $2)`, decisionID, userID); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(f.Ledger)
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE config_settings SET value = $1, updated_at = NOW() WHERE id = $2`,
		raw, f.ConfigID)
	return err
}

func mapDuplicateMembershipID(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return approval.ErrDuplicateMembershipID
	}
	return err
}

// ApprovalStore adapts the pool to the workflow engine's Store interface.
// Each vote runs in one transaction that locks the config row.
type ApprovalStore struct {
	DB *sql.DB
}

func (s *ApprovalStore) Begin(ctx context.Context) (approval.VoteTx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &approvalTx{tx: tx}, nil
}

type approvalTx struct {
	tx *sql.Tx
}

func (t *approvalTx) ConfigByType(configType string) (*models.ConfigSetting, error) {
	config, err := loadConfigByType(t.tx, configType, true)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, approval.ErrConfigMissing
	}
	return config, nil
}

func (t *approvalTx) SaveLedger(configID string, ledger models.VoteLedger) error {
	return SaveConfigLedger(t.tx, configID, ledger)
}

func (t *approvalTx) HasApprovedDecision(applicantID string) (bool, error) {
	return HasApprovedDecision(t.tx, applicantID)
}

func (t *approvalTx) GetUser(id string) (*models.User, error) {
	return GetUserByID(t.tx, id)
}

func (t *approvalTx) LatestPayment(userID string) (*models.Payment, error) {
	return LatestPaymentByUser(t.tx, userID)
}

func (t *approvalTx) FeeByCurrencyAndType(currency, membershipType string) (*models.MembershipFee, error) {
	return FindFeeByCurrencyAndType(t.tx, currency, membershipType)
}

func (t *approvalTx) RoleByName(name string) (*models.Role, error) {
	return GetRoleByName(t.tx, name)
}

func (t *approvalTx) AllRoles() ([]*models.Role, error) {
	return GetAllRoles(t.tx)
}

func (t *approvalTx) CreateRejection(applicantID, remark string, rejectedBy []string) error {
	return CreateRejection(t.tx, applicantID, remark, rejectedBy)
}

func (t *approvalTx) ApplyFinalization(f *approval.Finalization) error {
	return applyFinalization(t.tx, f)
}

func (t *approvalTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return mapDuplicateMembershipID(err)
	}
	return nil
}

func (t *approvalTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

// MemberDirectory adapts the pool to the allocator's Directory interface.
type MemberDirectory struct {
	DB *sql.DB
}

func (d *MemberDirectory) MaxSuffix(ctx context.Context, prefix string) (int, error) {
	return MaxMembershipSuffix(d.DB, prefix)
}

func (d *MemberDirectory) Exists(ctx context.Context, membershipID string) (bool, error) {
	return MembershipIDExists(d.DB, membershipID)
}

// NotificationStore adapts the pool to the notifier's Store interface.
type NotificationStore struct {
	DB *sql.DB
}

func (s *NotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (recipient_id, subject, message)
			  VALUES ($1, $2, $3) RETURNING id, created_at`
	return s.DB.QueryRow(query, n.RecipientID, n.Subject, n.Message).Scan(&n.ID, &n.CreatedAt)
}

func (s *NotificationStore) MarkDelivered(ctx context.Context, notificationID string, at time.Time) error {
	_, err := s.DB.Exec(`UPDATE notifications SET delivered = true, delivered_at = $1 WHERE id = $2`,
		at, notificationID)
	return err
}

// AuditStore adapts the pool to the audit recorder's Store interface.
type AuditStore struct {
	DB *sql.DB
}

func (s *AuditStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	query := `INSERT INTO audit_logs (user_id, action, model_name, object_id, changes, ip_address)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, timestamp`
	return s.DB.QueryRow(query, entry.UserID, entry.Action, entry.ModelName, entry.ObjectID,
		entry.Changes, entry.IPAddress).Scan(&entry.ID, &entry.Timestamp)
}
