package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/config"
)

// Gateway is a thin client for the payment provider's REST API. Amounts
// cross the wire in the smallest currency unit (paise for INR).
type Gateway struct {
	cfg    config.GatewayConfig
	client *http.Client
	log    zerolog.Logger
}

func NewGateway(cfg config.GatewayConfig, log zerolog.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Order is the provider's order object, reduced to what we read back.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Refund is the provider's refund object, reduced to what we read back.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// CreateOrder opens an order for the given amount in the smallest
// currency unit.
func (g *Gateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	var order Order
	if err := g.post(ctx, "/orders", body, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// CreateRefund initiates a full refund for a captured payment.
func (g *Gateway) CreateRefund(ctx context.Context, paymentID string) (*Refund, error) {
	var refund Refund
	path := fmt.Sprintf("/payments/%s/refund", paymentID)
	if err := g.post(ctx, path, map[string]interface{}{}, &refund); err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return &refund, nil
}

// FetchRefund reads the current state of a refund.
func (g *Gateway) FetchRefund(ctx context.Context, refundID string) (*Refund, error) {
	var refund Refund
	if err := g.get(ctx, "/refunds/"+refundID, &refund); err != nil {
		return nil, fmt.Errorf("fetch refund: %w", err)
	}
	return &refund, nil
}

func (g *Gateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return g.do(ctx, http.MethodPost, path, payload, out)
}

func (g *Gateway) get(ctx context.Context, path string, out interface{}) error {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

// do performs one API call with bounded retries on transport errors and
// 5xx responses. 4xx responses fail immediately.
func (g *Gateway) do(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("gateway %s %s: status %d", method, path, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("gateway %s %s: status %d: %s", method, path, resp.StatusCode, data))
		}
		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(err)
			}
		}
		return nil
	}, policy)
}

// VerifySignature checks the provider's HMAC-SHA256 signature over
// "<orderID>|<paymentID>" using the key secret, in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
