package payments

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/routes/auth"
	"github.com/Shekhar17ACS/IETE/app/services/payments"
)

var (
	gateway *payments.Gateway
	service *payments.Service
)

func SetupPaymentRoutes(app *fiber.App, g *payments.Gateway, svc *payments.Service) {
	gateway = g
	service = svc

	group := app.Group("/api/v1/payments", auth.AuthMiddleware)
	group.Post("/order", CreateOrderAPI)
	group.Post("/verify", VerifyPaymentAPI)
	group.Get("/", ListPaymentsAPI)

	group.Use(auth.StaffMiddleware)
	group.Post("/:id/refund", RefundAPI)
	group.Get("/:id/refunds/:refundId", RefundStatusAPI)
}
