package members

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/routes/auth"
	"github.com/Shekhar17ACS/IETE/app/services/audit"
	"github.com/Shekhar17ACS/IETE/app/services/membership"
)

var (
	allocator *membership.Allocator
	auditor   *audit.Recorder
)

func SetupMemberRoutes(app *fiber.App, alloc *membership.Allocator, rec *audit.Recorder) {
	allocator = alloc
	auditor = rec

	application := app.Group("/api/v1/application", auth.AuthMiddleware)
	application.Get("/experiences", ListExperiencesAPI)
	application.Post("/experiences", AddExperienceAPI)
	application.Get("/qualifications", ListQualificationsAPI)
	application.Post("/qualifications", AddQualificationAPI)
	application.Get("/notifications", ListNotificationsAPI)
	application.Put("/notifications/:id/read", MarkNotificationReadAPI)

	members := app.Group("/api/v1/members", auth.AuthMiddleware, auth.StaffMiddleware)
	members.Get("/", ListMembersAPI)
	members.Post("/add", AddMembersAPI)
	members.Get("/:id", GetMemberAPI)
}
