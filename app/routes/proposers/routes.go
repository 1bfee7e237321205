package proposers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/routes/auth"
	"github.com/Shekhar17ACS/IETE/app/services"
)

var (
	inviter *services.ProposerInviter
	decider *services.ProposerDecider
)

func SetupProposerRoutes(app *fiber.App, i *services.ProposerInviter, d *services.ProposerDecider) {
	inviter = i
	decider = d

	// The action link is followed from email, so it carries no JWT; the
	// token itself is the credential.
	app.Get("/api/v1/proposers/action/:token", ProposerActionAPI)
	app.Post("/api/v1/proposers/action/:token", ProposerActionAPI)

	group := app.Group("/api/v1/proposers", auth.AuthMiddleware)
	group.Get("/", ListProposersAPI)
	group.Post("/", InviteProposerAPI)
}
