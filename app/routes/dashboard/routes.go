package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/routes/auth"
)

func SetupDashboardRoutes(app *fiber.App) {
	group := app.Group("/api/v1/dashboard", auth.AuthMiddleware, auth.StaffMiddleware)
	group.Get("/", DashboardAPI)
}

// DashboardAPI returns the headline counts for the admin overview.
func DashboardAPI(c *fiber.Ctx) error {
	counts, err := database.DashboardCounts(config.GetDB())
	if err != nil {
		config.Log.Error().Err(err).Msg("Dashboard aggregation failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load dashboard"})
	}
	return c.JSON(counts)
}
