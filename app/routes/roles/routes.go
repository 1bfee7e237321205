package roles

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/routes/auth"
)

func SetupRoleRoutes(app *fiber.App) {
	roles := app.Group("/api/v1/roles", auth.AuthMiddleware)

	roles.Get("/", ListRolesAPI)
	roles.Get("/hierarchy", RoleHierarchyAPI)

	roles.Use(auth.StaffMiddleware)
	roles.Post("/", CreateRoleAPI)
	roles.Put("/:id", UpdateRoleAPI)
	roles.Delete("/:id", DeleteRoleAPI)
}
