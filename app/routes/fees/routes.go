package fees

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/routes/auth"
)

func SetupFeeRoutes(app *fiber.App) {
	fees := app.Group("/api/v1/fees", auth.AuthMiddleware)

	fees.Get("/", ListFeesAPI)
	fees.Get("/quote", QuoteFeeAPI)

	fees.Use(auth.StaffMiddleware)
	fees.Post("/", CreateFeeAPI)
	fees.Put("/:id", UpdateFeeAPI)
	fees.Delete("/:id", DeleteFeeAPI)
}
