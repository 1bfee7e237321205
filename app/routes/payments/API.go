package payments

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/payments"
)

type OrderRequest struct {
	MembershipType string `json:"membership_type"`
}

// CreateOrderAPI resolves the applicant's fee, opens a gateway order and
// records the pending payment with its receipt number.
func CreateOrderAPI(c *fiber.Ctx) error {
	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MembershipType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "membership_type is required"})
	}

	db := config.GetDB()
	user, err := database.GetUserByID(db, c.Locals("user_id").(string))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	if user.DateOfBirth == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Date of birth must be set on the profile first"})
	}

	now := time.Now()
	age := now.Year() - user.DateOfBirth.Year()
	if now.YearDay() < user.DateOfBirth.YearDay() {
		age--
	}
	fee, err := database.FindFeeForApplicant(db, req.MembershipType, age, !user.FromIndia)
	if err != nil {
		config.Log.Error().Err(err).Msg("Fee lookup failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create order"})
	}
	if fee == nil {
		return c.Status(404).JSON(fiber.Map{"error": "No fee is configured for your age and membership type"})
	}

	total := fee.FeeAmount * (1 + fee.GSTPercent/100)

	seq, err := database.NextReceiptSeq(db, now.Year())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create order"})
	}
	receipt := payments.ReceiptNumber(now, seq)

	order, err := gateway.CreateOrder(c.Context(), payments.ToSubunits(total), fee.Currency, receipt)
	if err != nil {
		config.Log.Error().Err(err).Msg("Gateway order failed")
		return c.Status(502).JSON(fiber.Map{"error": "Payment gateway is unavailable"})
	}

	payment := &models.Payment{
		UserID:         user.ID,
		MembershipType: &fee.MembershipType,
		OrderID:        order.ID,
		Receipt:        receipt,
		Amount:         total,
		Currency:       fee.Currency,
		Status:         models.PaymentPending,
	}
	if err := database.CreatePayment(db, payment); err != nil {
		config.Log.Error().Err(err).Msg("Payment insert failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create order"})
	}

	return c.Status(201).JSON(fiber.Map{"payment": payment, "order": order})
}

type VerifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerifyPaymentAPI settles the order from the checkout callback. A bad
// signature marks the payment failed; amount and currency on the stored
// row are never modified.
func VerifyPaymentAPI(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.Status(400).JSON(fiber.Map{"error": "order_id, payment_id and signature are required"})
	}

	payment, already, err := service.Verify(c.Context(), c.Locals("user_id").(string),
		req.OrderID, req.PaymentID, req.Signature)
	switch {
	case errors.Is(err, payments.ErrPaymentNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	case errors.Is(err, payments.ErrWrongAccount):
		return c.Status(403).JSON(fiber.Map{"error": "This order belongs to another account"})
	case errors.Is(err, payments.ErrSignatureInvalid):
		return c.Status(400).JSON(fiber.Map{"error": "Signature verification failed", "payment": payment})
	case err != nil:
		config.Log.Error().Err(err).Msg("Payment capture failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record payment"})
	}
	if already {
		return c.JSON(fiber.Map{"message": "Payment already verified", "payment": payment})
	}
	return c.JSON(fiber.Map{"message": "Payment verified", "payment": payment})
}

func ListPaymentsAPI(c *fiber.Ctx) error {
	records, err := database.ListPaymentsByUser(config.GetDB(), c.Locals("user_id").(string))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load payments"})
	}
	return c.JSON(fiber.Map{"payments": records})
}

// RefundAPI initiates a full refund for a captured payment. Refunds are
// only allowed once the applicant's membership has been rejected.
func RefundAPI(c *fiber.Ctx) error {
	refund, payment, err := service.Refund(c.Context(), c.Params("id"))
	switch {
	case errors.Is(err, payments.ErrPaymentNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Payment not found"})
	case errors.Is(err, payments.ErrNotRefundable):
		return c.Status(409).JSON(fiber.Map{"error": "Only successful payments can be refunded"})
	case errors.Is(err, payments.ErrNoGatewayRef):
		return c.Status(409).JSON(fiber.Map{"error": "Payment has no gateway reference"})
	case errors.Is(err, payments.ErrNotRejected):
		return c.Status(409).JSON(fiber.Map{"error": "Refunds require a rejected membership decision"})
	case err != nil:
		config.Log.Error().Err(err).Msg("Refund failed")
		return c.Status(502).JSON(fiber.Map{"error": "Payment gateway is unavailable"})
	}
	return c.JSON(fiber.Map{"message": "Refund initiated", "refund": refund, "payment": payment})
}

// RefundStatusAPI polls the gateway for a refund's current state. A
// processed refund flips the payment to Refunded.
func RefundStatusAPI(c *fiber.Ctx) error {
	refund, err := service.RefundStatus(c.Context(), c.Params("id"), c.Params("refundId"))
	switch {
	case errors.Is(err, payments.ErrPaymentNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Payment not found"})
	case err != nil:
		config.Log.Error().Err(err).Msg("Refund lookup failed")
		return c.Status(502).JSON(fiber.Map{"error": "Payment gateway is unavailable"})
	}
	return c.JSON(fiber.Map{"refund": refund})
}
