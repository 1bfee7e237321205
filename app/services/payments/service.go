package payments

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/notify"
)

// RefundProcessed is the provider's terminal refund state.
const RefundProcessed = "processed"

var (
	// ErrSignatureInvalid means the gateway signature did not match; the
	// payment has been marked failed.
	ErrSignatureInvalid = errors.New("payment signature verification failed")

	// ErrPaymentNotFound means no payment row matches the reference.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrWrongAccount means the payment belongs to another user.
	ErrWrongAccount = errors.New("payment belongs to another account")

	// ErrNotRefundable means the payment is not in a refundable state.
	ErrNotRefundable = errors.New("only successful payments can be refunded")

	// ErrNoGatewayRef means the payment carries no gateway payment ID.
	ErrNoGatewayRef = errors.New("payment has no gateway reference")

	// ErrNotRejected means the applicant's membership has not been
	// rejected, so no refund may be initiated.
	ErrNotRejected = errors.New("refunds require a rejected membership decision")
)

// Store is the persistence surface of the capture and refund flows.
type Store interface {
	PaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	PaymentByID(ctx context.Context, id string) (*models.Payment, error)

	// MarkCaptured records the gateway payment ID and flips the row to Success.
	MarkCaptured(ctx context.Context, orderID, gatewayPaymentID string) error

	// MarkFailed records the gateway payment ID and flips the row to Failed.
	MarkFailed(ctx context.Context, orderID, gatewayPaymentID string) error

	SetStatus(ctx context.Context, paymentID string, status models.PaymentStatus) error

	// LatestDecision returns the applicant's newest decision row, or nil.
	LatestDecision(ctx context.Context, applicantID string) (*models.ApproveMembership, error)

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// GatewayClient is the slice of the provider API the service drives.
type GatewayClient interface {
	CreateRefund(ctx context.Context, gatewayPaymentID string) (*Refund, error)
	FetchRefund(ctx context.Context, refundID string) (*Refund, error)
}

// Notifier mirrors the approval engine's notification surface.
type Notifier interface {
	Notify(ctx context.Context, user *models.User, subject, message string)
}

// Service settles payment attempts and drives refunds. It owns every
// payment status transition after the order is created.
type Service struct {
	store    Store
	gateway  GatewayClient
	notifier Notifier
	secret   string
	log      zerolog.Logger
}

func NewService(store Store, gateway GatewayClient, notifier Notifier, secret string, log zerolog.Logger) *Service {
	return &Service{store: store, gateway: gateway, notifier: notifier, secret: secret, log: log}
}

// Verify settles an order from the checkout callback. A valid signature
// marks the payment captured and emails the receipt; an invalid one
// marks the payment Failed, keeping the gateway reference, and tells the
// applicant. Already-captured orders report captured true with no
// further writes.
func (s *Service) Verify(ctx context.Context, userID, orderID, gatewayPaymentID, signature string) (payment *models.Payment, captured bool, err error) {
	payment, err = s.store.PaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if payment == nil {
		return nil, false, ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return nil, false, ErrWrongAccount
	}
	if payment.Status == models.PaymentSuccess {
		return payment, true, nil
	}

	if !VerifySignature(orderID, gatewayPaymentID, signature, s.secret) {
		if err := s.store.MarkFailed(ctx, orderID, gatewayPaymentID); err != nil {
			s.log.Error().Err(err).Str("order", orderID).Msg("Failed to mark payment failed")
		} else {
			payment.Status = models.PaymentFailed
			payment.PaymentID = &gatewayPaymentID
		}
		if user, err := s.store.GetUser(ctx, payment.UserID); err == nil && user != nil {
			subject, msg := notify.PaymentFailedEmail(user.Name, payment.Receipt, payment.Amount, payment.Currency)
			s.notifier.Notify(ctx, user, subject, msg)
		}
		return payment, false, ErrSignatureInvalid
	}

	if err := s.store.MarkCaptured(ctx, orderID, gatewayPaymentID); err != nil {
		return nil, false, err
	}
	payment.Status = models.PaymentSuccess
	payment.PaymentID = &gatewayPaymentID

	if user, err := s.store.GetUser(ctx, payment.UserID); err == nil && user != nil {
		subject, msg := notify.PaymentReceiptEmail(user.Name, payment.Receipt, payment.Amount, payment.Currency)
		s.notifier.Notify(ctx, user, subject, msg)
	}
	return payment, false, nil
}

// Refund initiates a full refund for a captured payment. Refunds are
// only allowed once the applicant's latest decision is a rejection; a
// payment on an application still in review, or already approved, stays
// where it is.
func (s *Service) Refund(ctx context.Context, paymentID string) (*Refund, *models.Payment, error) {
	payment, err := s.store.PaymentByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, ErrPaymentNotFound
	}
	if !payment.IsRefundable() {
		return nil, nil, ErrNotRefundable
	}
	if payment.PaymentID == nil {
		return nil, nil, ErrNoGatewayRef
	}

	decision, err := s.store.LatestDecision(ctx, payment.UserID)
	if err != nil {
		return nil, nil, err
	}
	if decision == nil || !decision.Rejected || decision.Approved {
		return nil, nil, ErrNotRejected
	}

	refund, err := s.gateway.CreateRefund(ctx, *payment.PaymentID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.SetStatus(ctx, payment.ID, models.PaymentRefundInitiated); err != nil {
		return nil, nil, err
	}
	payment.Status = models.PaymentRefundInitiated

	if user, err := s.store.GetUser(ctx, payment.UserID); err == nil && user != nil {
		subject, msg := notify.RefundInitiatedEmail(user.Name, payment.Amount, payment.Currency)
		s.notifier.Notify(ctx, user, subject, msg)
	}
	return refund, payment, nil
}

// RefundStatus polls the gateway for a refund and persists the terminal
// state: a processed refund flips the payment to Refunded.
func (s *Service) RefundStatus(ctx context.Context, paymentID, refundID string) (*Refund, error) {
	refund, err := s.gateway.FetchRefund(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if refund.Status != RefundProcessed {
		return refund, nil
	}

	payment, err := s.store.PaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != models.PaymentRefunded {
		if err := s.store.SetStatus(ctx, payment.ID, models.PaymentRefunded); err != nil {
			return nil, err
		}
	}
	return refund, nil
}
