package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/services/notify"
)

// notifier delivers OTP and password-reset mail; set once at startup.
var notifier *notify.Service

func SetupAuthRoutes(app *fiber.App, n *notify.Service) {
	notifier = n
	auth := app.Group("/api/v1/auth")

	// Public routes
	auth.Post("/signup", SignupAPI)
	auth.Post("/verify-otp", VerifyOTPAPI)
	auth.Post("/login", LoginAPI)
	auth.Post("/forgot-password", ForgotPasswordAPI)
	auth.Post("/reset-password", ResetPasswordAPI)

	// Protected routes
	auth.Use(AuthMiddleware)
	auth.Get("/profile", ProfileAPI)
	auth.Put("/profile", UpdateProfileAPI)
	auth.Post("/change-password", ChangePasswordAPI)
}

// AuthMiddleware validates the bearer token and sets the user context.
func AuthMiddleware(c *fiber.Ctx) error {
	var tokenString string
	header := c.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}
	if tokenString == "" {
		tokenString = c.Cookies("jwt_token")
	}
	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "No token found"})
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_name", claims.Name)
	c.Locals("user_role", claims.Role)
	c.Locals("is_staff", claims.IsStaff)

	return c.Next()
}

// StaffMiddleware restricts a route to staff accounts.
func StaffMiddleware(c *fiber.Ctx) error {
	if staff, ok := c.Locals("is_staff").(bool); !ok || !staff {
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
	return c.Next()
}

// RoleMiddleware restricts a route to users holding one of the roles.
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		for _, allowed := range allowedRoles {
			if strings.EqualFold(role, allowed) {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
}
