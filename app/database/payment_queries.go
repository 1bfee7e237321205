package database

import (
	"context"
	"database/sql"

	"github.com/Shekhar17ACS/IETE/app/models"
)

const paymentColumns = `id, user_id, membership_type, order_id, payment_id, receipt,
	amount, currency, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.UserID, &p.MembershipType, &p.OrderID, &p.PaymentID,
		&p.Receipt, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func CreatePayment(db *sql.DB, p *models.Payment) error {
	query := `INSERT INTO payments (user_id, membership_type, order_id, receipt, amount, currency, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at, updated_at`
	return db.QueryRow(query, p.UserID, p.MembershipType, p.OrderID, p.Receipt,
		p.Amount, p.Currency, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// LatestPaymentByUser returns the user's most recent payment, or (nil, nil).
func LatestPaymentByUser(db queryer, userID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
			  WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	p, err := scanPayment(db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func GetPaymentByOrderID(db *sql.DB, orderID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	p, err := scanPayment(db.QueryRow(query, orderID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func GetPaymentByID(db *sql.DB, paymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(db.QueryRow(query, paymentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func ListPaymentsByUser(db *sql.DB, userID string) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
			  WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkPaymentCaptured records the gateway payment ID and flips the row
// to Success. Amount and currency are never touched here.
func MarkPaymentCaptured(db *sql.DB, orderID, gatewayPaymentID string) error {
	_, err := db.Exec(`UPDATE payments SET payment_id = $1, status = $2, updated_at = NOW()
					   WHERE order_id = $3`, gatewayPaymentID, models.PaymentSuccess, orderID)
	return err
}

// MarkPaymentFailed records the gateway payment ID and flips the row to
// Failed; the reference is kept for reconciliation with the provider.
func MarkPaymentFailed(db *sql.DB, orderID, gatewayPaymentID string) error {
	_, err := db.Exec(`UPDATE payments SET payment_id = $1, status = $2, updated_at = NOW()
					   WHERE order_id = $3`, gatewayPaymentID, models.PaymentFailed, orderID)
	return err
}

func UpdatePaymentStatus(db *sql.DB, paymentID string, status models.PaymentStatus) error {
	_, err := db.Exec(`UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, paymentID)
	return err
}

// NextReceiptSeq atomically advances and returns the per-year receipt
// sequence.
func NextReceiptSeq(db *sql.DB, year int) (int, error) {
	var seq int
	err := db.QueryRow(`INSERT INTO receipt_counters (year, seq) VALUES ($1, 1)
						ON CONFLICT (year) DO UPDATE SET seq = receipt_counters.seq + 1
						RETURNING seq`, year).Scan(&seq)
	return seq, err
}

// PaymentStore adapts the pool to the payment service's Store interface.
type PaymentStore struct {
	DB *sql.DB
}

func (s *PaymentStore) PaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return GetPaymentByOrderID(s.DB, orderID)
}

func (s *PaymentStore) PaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	return GetPaymentByID(s.DB, id)
}

func (s *PaymentStore) MarkCaptured(ctx context.Context, orderID, gatewayPaymentID string) error {
	return MarkPaymentCaptured(s.DB, orderID, gatewayPaymentID)
}

func (s *PaymentStore) MarkFailed(ctx context.Context, orderID, gatewayPaymentID string) error {
	return MarkPaymentFailed(s.DB, orderID, gatewayPaymentID)
}

func (s *PaymentStore) SetStatus(ctx context.Context, paymentID string, status models.PaymentStatus) error {
	return UpdatePaymentStatus(s.DB, paymentID, status)
}

func (s *PaymentStore) LatestDecision(ctx context.Context, applicantID string) (*models.ApproveMembership, error) {
	return LatestDecisionByApplicant(s.DB, applicantID)
}

func (s *PaymentStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return GetUserByID(s.DB, id)
}
