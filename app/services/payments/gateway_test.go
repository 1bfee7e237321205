package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Shekhar17ACS/IETE/app/config"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test-secret"
	sig := sign("order_1", "pay_1", secret)

	require.True(t, VerifySignature("order_1", "pay_1", sig, secret))
	require.False(t, VerifySignature("order_1", "pay_2", sig, secret))
	require.False(t, VerifySignature("order_1", "pay_1", sig, "other-secret"))
	require.False(t, VerifySignature("order_1", "pay_1", "not-hex", secret))
}

func testGateway(baseURL string) *Gateway {
	return NewGateway(config.GatewayConfig{
		BaseURL:   baseURL,
		KeyID:     "key",
		KeySecret: "secret",
		Timeout:   2 * time.Second,
	}, zerolog.Nop())
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)
		w.Write([]byte(`{"id":"order_1","amount":590000,"currency":"INR","receipt":"C00042","status":"created"}`))
	}))
	defer srv.Close()

	order, err := testGateway(srv.URL).CreateOrder(context.Background(), 590000, "INR", "C00042")
	require.NoError(t, err)
	require.Equal(t, "order_1", order.ID)
	require.Equal(t, int64(590000), order.Amount)
}

func TestGatewayRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"rfnd_1","payment_id":"pay_1","amount":590000,"status":"processed"}`))
	}))
	defer srv.Close()

	refund, err := testGateway(srv.URL).CreateRefund(context.Background(), "pay_1")
	require.NoError(t, err)
	require.Equal(t, "rfnd_1", refund.ID)
	require.Equal(t, 3, attempts)
}

func TestGatewayDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"invalid payment id"}}`))
	}))
	defer srv.Close()

	_, err := testGateway(srv.URL).CreateRefund(context.Background(), "bogus")
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestReceiptNumber(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "A00001", ReceiptNumber(jan, 1))
	require.Equal(t, "L00042", ReceiptNumber(dec, 42))
}

func TestToSubunits(t *testing.T) {
	require.Equal(t, int64(590000), ToSubunits(5900))
	require.Equal(t, int64(10050), ToSubunits(100.50))
	require.Equal(t, int64(100), ToSubunits(0.999))
}
