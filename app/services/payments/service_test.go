package payments

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Shekhar17ACS/IETE/app/models"
)

type statusChange struct {
	paymentID string
	status    models.PaymentStatus
}

type fakePaymentStore struct {
	payment  *models.Payment
	decision *models.ApproveMembership
	user     *models.User

	failed   []string // order|gateway payment id
	captured []string
	statuses []statusChange
}

func (s *fakePaymentStore) PaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	if s.payment == nil || s.payment.OrderID != orderID {
		return nil, nil
	}
	return s.payment, nil
}

func (s *fakePaymentStore) PaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	if s.payment == nil || s.payment.ID != id {
		return nil, nil
	}
	return s.payment, nil
}

func (s *fakePaymentStore) MarkCaptured(ctx context.Context, orderID, gatewayPaymentID string) error {
	s.captured = append(s.captured, orderID+"|"+gatewayPaymentID)
	s.payment.Status = models.PaymentSuccess
	return nil
}

func (s *fakePaymentStore) MarkFailed(ctx context.Context, orderID, gatewayPaymentID string) error {
	s.failed = append(s.failed, orderID+"|"+gatewayPaymentID)
	s.payment.Status = models.PaymentFailed
	return nil
}

func (s *fakePaymentStore) SetStatus(ctx context.Context, paymentID string, status models.PaymentStatus) error {
	s.statuses = append(s.statuses, statusChange{paymentID, status})
	s.payment.Status = status
	return nil
}

func (s *fakePaymentStore) LatestDecision(ctx context.Context, applicantID string) (*models.ApproveMembership, error) {
	return s.decision, nil
}

func (s *fakePaymentStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.user, nil
}

type fakeGateway struct {
	refund     *Refund
	refundErr  error
	created    int
	fetched    int
	fetchedIDs []string
}

func (g *fakeGateway) CreateRefund(ctx context.Context, gatewayPaymentID string) (*Refund, error) {
	g.created++
	return g.refund, g.refundErr
}

func (g *fakeGateway) FetchRefund(ctx context.Context, refundID string) (*Refund, error) {
	g.fetched++
	g.fetchedIDs = append(g.fetchedIDs, refundID)
	return g.refund, g.refundErr
}

type recordedNote struct {
	userID  string
	subject string
}

type fakeNotifier struct {
	notes []recordedNote
}

func (n *fakeNotifier) Notify(ctx context.Context, user *models.User, subject, message string) {
	n.notes = append(n.notes, recordedNote{user.ID, subject})
}

const (
	testSecret = "test-secret"
	payerID    = "user-1"
)

func settlementFixture(status models.PaymentStatus) *fakePaymentStore {
	return &fakePaymentStore{
		payment: &models.Payment{
			ID: "pmt-1", UserID: payerID, OrderID: "order_1",
			Receipt: "C00042", Amount: 5900, Currency: "INR", Status: status,
		},
		user: &models.User{ID: payerID, Name: "Chetan", Email: "chetan@example.org"},
	}
}

func newTestService(store *fakePaymentStore, gw *fakeGateway, notifier *fakeNotifier) *Service {
	return NewService(store, gw, notifier, testSecret, zerolog.Nop())
}

func TestVerifyCapturesPayment(t *testing.T) {
	store := settlementFixture(models.PaymentPending)
	notifier := &fakeNotifier{}
	svc := newTestService(store, &fakeGateway{}, notifier)

	sig := sign("order_1", "pay_1", testSecret)
	payment, already, err := svc.Verify(context.Background(), payerID, "order_1", "pay_1", sig)
	require.NoError(t, err)
	require.False(t, already)
	require.Equal(t, models.PaymentSuccess, payment.Status)
	require.Equal(t, []string{"order_1|pay_1"}, store.captured)

	require.Len(t, notifier.notes, 1)
	require.Equal(t, "Payment Received", notifier.notes[0].subject)
}

func TestVerifyIsIdempotent(t *testing.T) {
	store := settlementFixture(models.PaymentSuccess)
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})

	_, already, err := svc.Verify(context.Background(), payerID, "order_1", "pay_1", "whatever")
	require.NoError(t, err)
	require.True(t, already)
	require.Empty(t, store.captured)
	require.Empty(t, store.failed)
}

func TestVerifyBadSignatureMarksPaymentFailed(t *testing.T) {
	store := settlementFixture(models.PaymentPending)
	notifier := &fakeNotifier{}
	svc := newTestService(store, &fakeGateway{}, notifier)

	payment, _, err := svc.Verify(context.Background(), payerID, "order_1", "pay_1", "bad-signature")
	require.ErrorIs(t, err, ErrSignatureInvalid)

	// The row is transitioned, the gateway reference is kept and the
	// applicant is told; nothing is captured.
	require.Equal(t, models.PaymentFailed, payment.Status)
	require.NotNil(t, payment.PaymentID)
	require.Equal(t, "pay_1", *payment.PaymentID)
	require.Equal(t, []string{"order_1|pay_1"}, store.failed)
	require.Empty(t, store.captured)

	require.Len(t, notifier.notes, 1)
	require.Equal(t, "Payment Verification Failed", notifier.notes[0].subject)
}

func TestVerifyUnknownOrder(t *testing.T) {
	store := settlementFixture(models.PaymentPending)
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})

	_, _, err := svc.Verify(context.Background(), payerID, "order_other", "pay_1", "sig")
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestVerifyWrongAccount(t *testing.T) {
	store := settlementFixture(models.PaymentPending)
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})

	_, _, err := svc.Verify(context.Background(), "intruder", "order_1", "pay_1", "sig")
	require.ErrorIs(t, err, ErrWrongAccount)
	require.Empty(t, store.failed)
}

func refundFixture() (*fakePaymentStore, *fakeGateway) {
	store := settlementFixture(models.PaymentSuccess)
	gwRef := "pay_1"
	store.payment.PaymentID = &gwRef
	store.decision = &models.ApproveMembership{ApplicantID: payerID, Rejected: true}
	gw := &fakeGateway{refund: &Refund{ID: "rfnd_1", PaymentID: "pay_1", Status: "pending"}}
	return store, gw
}

func TestRefundRequiresRejectedDecision(t *testing.T) {
	store, gw := refundFixture()
	store.decision = nil
	svc := newTestService(store, gw, &fakeNotifier{})

	_, _, err := svc.Refund(context.Background(), "pmt-1")
	require.ErrorIs(t, err, ErrNotRejected)
	require.Zero(t, gw.created)

	store.decision = &models.ApproveMembership{ApplicantID: payerID, Approved: true}
	_, _, err = svc.Refund(context.Background(), "pmt-1")
	require.ErrorIs(t, err, ErrNotRejected)
	require.Zero(t, gw.created)
	require.Equal(t, models.PaymentSuccess, store.payment.Status)
}

func TestRefundInitiatesForRejectedMembership(t *testing.T) {
	store, gw := refundFixture()
	notifier := &fakeNotifier{}
	svc := newTestService(store, gw, notifier)

	refund, payment, err := svc.Refund(context.Background(), "pmt-1")
	require.NoError(t, err)
	require.Equal(t, "rfnd_1", refund.ID)
	require.Equal(t, models.PaymentRefundInitiated, payment.Status)
	require.Equal(t, 1, gw.created)
	require.Equal(t, []statusChange{{"pmt-1", models.PaymentRefundInitiated}}, store.statuses)

	require.Len(t, notifier.notes, 1)
	require.Equal(t, "Refund Initiated", notifier.notes[0].subject)
}

func TestRefundRequiresCapturedPayment(t *testing.T) {
	store, gw := refundFixture()
	store.payment.Status = models.PaymentPending
	svc := newTestService(store, gw, &fakeNotifier{})

	_, _, err := svc.Refund(context.Background(), "pmt-1")
	require.ErrorIs(t, err, ErrNotRefundable)
}

func TestRefundStatusPersistsProcessedRefund(t *testing.T) {
	store, gw := refundFixture()
	store.payment.Status = models.PaymentRefundInitiated
	gw.refund.Status = RefundProcessed
	svc := newTestService(store, gw, &fakeNotifier{})

	refund, err := svc.RefundStatus(context.Background(), "pmt-1", "rfnd_1")
	require.NoError(t, err)
	require.Equal(t, RefundProcessed, refund.Status)
	require.Equal(t, []statusChange{{"pmt-1", models.PaymentRefunded}}, store.statuses)
	require.Equal(t, []string{"rfnd_1"}, gw.fetchedIDs)
}

func TestRefundStatusLeavesOpenRefundAlone(t *testing.T) {
	store, gw := refundFixture()
	store.payment.Status = models.PaymentRefundInitiated
	svc := newTestService(store, gw, &fakeNotifier{})

	refund, err := svc.RefundStatus(context.Background(), "pmt-1", "rfnd_1")
	require.NoError(t, err)
	require.Equal(t, "pending", refund.Status)
	require.Empty(t, store.statuses)
}

func TestRefundStatusIsIdempotent(t *testing.T) {
	store, gw := refundFixture()
	store.payment.Status = models.PaymentRefunded
	gw.refund.Status = RefundProcessed
	svc := newTestService(store, gw, &fakeNotifier{})

	_, err := svc.RefundStatus(context.Background(), "pmt-1", "rfnd_1")
	require.NoError(t, err)
	require.Empty(t, store.statuses)
}
