package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/routes/approvals"
	"github.com/Shekhar17ACS/IETE/app/routes/auth"
	"github.com/Shekhar17ACS/IETE/app/routes/dashboard"
	"github.com/Shekhar17ACS/IETE/app/routes/fees"
	"github.com/Shekhar17ACS/IETE/app/routes/members"
	"github.com/Shekhar17ACS/IETE/app/routes/payments"
	"github.com/Shekhar17ACS/IETE/app/routes/proposers"
	"github.com/Shekhar17ACS/IETE/app/routes/roles"
	"github.com/Shekhar17ACS/IETE/app/services"
	"github.com/Shekhar17ACS/IETE/app/services/approval"
	"github.com/Shekhar17ACS/IETE/app/services/audit"
	"github.com/Shekhar17ACS/IETE/app/services/membership"
	"github.com/Shekhar17ACS/IETE/app/services/notify"
	paysvc "github.com/Shekhar17ACS/IETE/app/services/payments"
)

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	// Membership numbers and receipts follow the registry's local clock.
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		config.Log.Warn().Err(err).Msg("Failed to load Asia/Kolkata location, falling back to UTC+5:30")
		time.Local = time.FixedZone("IST", 5*3600+1800)
	} else {
		time.Local = loc
	}

	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		config.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	db := config.GetDB()

	// Wire services
	mailer := notify.NewSMTPMailer(config.AppConfig.SMTP, config.Log)
	notifier := notify.NewService(&database.NotificationStore{DB: db}, mailer, config.Log)
	auditor := audit.NewRecorder(&database.AuditStore{DB: db}, config.Log)
	allocator := membership.NewAllocator(&database.MemberDirectory{DB: db})
	engine := approval.NewEngine(&database.ApprovalStore{DB: db}, allocator, notifier, config.Log)
	gateway := paysvc.NewGateway(config.AppConfig.Gateway, config.Log)
	paymentSvc := paysvc.NewService(&database.PaymentStore{DB: db}, gateway, notifier,
		config.AppConfig.Gateway.KeySecret, config.Log)
	proposerDir := &database.ProposerDirectory{DB: db}
	inviter := services.NewProposerInviter(proposerDir, mailer, config.AppConfig.SiteURL, config.Log)
	decider := services.NewProposerDecider(proposerDir, notifier, config.Log)
	sweeper := services.NewProposerSweeper(proposerDir, notifier, config.Log)

	// Start background scheduler
	services.StartScheduler(sweeper)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Routes
	auth.SetupAuthRoutes(app, notifier)
	members.SetupMemberRoutes(app, allocator, auditor)
	roles.SetupRoleRoutes(app)
	fees.SetupFeeRoutes(app)
	proposers.SetupProposerRoutes(app, inviter, decider)
	approvals.SetupApprovalRoutes(app, engine)
	payments.SetupPaymentRoutes(app, gateway, paymentSvc)
	dashboard.SetupDashboardRoutes(app)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Resource not found")
	})

	// Start server
	addr := fmt.Sprintf(":%d", config.AppConfig.Port)
	config.Log.Info().Str("addr", addr).Msg("Server starting")
	if err := app.Listen(addr); err != nil {
		config.Log.Fatal().Err(err).Msg("Server stopped")
	}
}
