package approvals

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/routes/auth"
	"github.com/Shekhar17ACS/IETE/app/services/approval"
)

var engine *approval.Engine

func SetupApprovalRoutes(app *fiber.App, e *approval.Engine) {
	engine = e

	group := app.Group("/api/v1/approvals", auth.AuthMiddleware)
	group.Post("/vote", VoteAPI)
	group.Get("/status/:applicantId", StatusAPI)

	group.Use(auth.StaffMiddleware)
	group.Get("/configs", ListConfigsAPI)
	group.Post("/configs", SaveConfigAPI)
	group.Delete("/configs/:id", DeleteConfigAPI)
}
