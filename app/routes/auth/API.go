package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/notify"
)

type SignupRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	MiddleName   *string `json:"middle_name"`
	LastName     *string `json:"last_name"`
	MobileNumber string  `json:"mobile_number"`
}

// SignupAPI registers an applicant account and mails a verification
// code. The account stays inactive until the code is confirmed.
func SignupAPI(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email, password and name are required"})
	}
	if len(req.Password) < 8 {
		return c.Status(400).JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	db := config.GetDB()
	existing, err := database.GetUserByEmail(db, req.Email)
	if err != nil {
		config.Log.Error().Err(err).Msg("Signup lookup failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create account"})
	}
	if existing != nil {
		return c.Status(409).JSON(fiber.Map{"error": "An account with this email already exists"})
	}

	hash, err := database.HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create account"})
	}

	user := &models.User{
		Email:        req.Email,
		Password:     hash,
		Name:         req.Name,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
	}
	if err := database.CreateUser(db, user); err != nil {
		config.Log.Error().Err(err).Msg("Signup insert failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create account"})
	}

	otp, err := GenerateOTP()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create account"})
	}
	otps.put(user.Email, otp)
	subject, msg := notify.OTPEmail(user.Name, otp)
	notifier.Notify(c.Context(), user, subject, msg)

	return c.Status(201).JSON(fiber.Map{
		"message": "Account created. A verification code has been sent to your email.",
		"user_id": user.ID,
	})
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTPAPI confirms the emailed code and activates the account.
func VerifyOTPAPI(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !otps.verify(req.Email, req.OTP) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid or expired verification code"})
	}

	db := config.GetDB()
	user, err := database.GetUserByEmail(db, req.Email)
	if err != nil || user == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Account not found"})
	}
	if err := database.ActivateUser(db, user.ID); err != nil {
		config.Log.Error().Err(err).Msg("Account activation failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to verify account"})
	}

	return c.JSON(fiber.Map{"message": "Account verified successfully"})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func LoginAPI(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := config.GetDB()
	user, err := database.GetUserByEmail(db, req.Email)
	if err != nil {
		config.Log.Error().Err(err).Msg("Login lookup failed")
		return c.Status(500).JSON(fiber.Map{"error": "Login failed"})
	}
	if user == nil || !database.CheckPassword(user.Password, req.Password) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if !user.IsActive {
		return c.Status(403).JSON(fiber.Map{"error": "Account not verified"})
	}

	roleName := ""
	if user.RoleID != nil {
		if role, err := database.GetRoleByID(db, *user.RoleID); err == nil {
			roleName = role.Name
		}
	}

	token, err := GenerateJWT(user.ID, user.Email, user.Name, roleName, user.IsStaff)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Login failed"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":            user.ID,
			"email":         user.Email,
			"name":          user.FullName(),
			"role":          roleName,
			"membership_id": user.MembershipID,
			"is_staff":      user.IsStaff,
		},
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordAPI mails a reset link. The response does not reveal
// whether the account exists.
func ForgotPasswordAPI(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := config.GetDB()
	user, err := database.GetUserByEmail(db, req.Email)
	if err == nil && user != nil {
		token, err := GenerateResetToken(user.ID, user.Email)
		if err == nil {
			resetURL := config.AppConfig.SiteURL + "/reset-password?token=" + token
			subject, msg := notify.PasswordResetEmail(user.Name, resetURL)
			notifier.Notify(c.Context(), user, subject, msg)
		}
	}

	return c.JSON(fiber.Map{"message": "If the email exists, a reset link has been sent"})
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func ResetPasswordAPI(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Password) < 8 {
		return c.Status(400).JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	claims, err := ValidateResetToken(req.Token)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid or expired reset token"})
	}

	hash, err := database.HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to reset password"})
	}
	if err := database.SetUserPassword(config.GetDB(), claims.UserID, hash); err != nil {
		config.Log.Error().Err(err).Msg("Password reset failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to reset password"})
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func ChangePasswordAPI(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.NewPassword) < 8 {
		return c.Status(400).JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	db := config.GetDB()
	userID := c.Locals("user_id").(string)
	user, err := database.GetUserByID(db, userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to change password"})
	}
	if !database.CheckPassword(user.Password, req.CurrentPassword) {
		return c.Status(401).JSON(fiber.Map{"error": "Current password is incorrect"})
	}

	hash, err := database.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to change password"})
	}
	if err := database.SetUserPassword(db, userID, hash); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to change password"})
	}

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func ProfileAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	userID := c.Locals("user_id").(string)
	user, err := database.GetUserByID(db, userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	experiences, err := database.ListExperiences(db, userID)
	if err == nil {
		user.Experiences = experiences
	}

	return c.JSON(user)
}

type UpdateProfileRequest struct {
	Title        *string `json:"title"`
	Name         string  `json:"name"`
	MiddleName   *string `json:"middle_name"`
	LastName     *string `json:"last_name"`
	MobileNumber string  `json:"mobile_number"`
	DateOfBirth  *string `json:"date_of_birth"`
	Gender       *string `json:"gender"`
	FromIndia    *bool   `json:"from_india"`
	Country      *string `json:"country"`
	State        *string `json:"state"`
	City         *string `json:"city"`
}

func UpdateProfileAPI(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := config.GetDB()
	userID := c.Locals("user_id").(string)
	user, err := database.GetUserByID(db, userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.Title = req.Title
	user.MiddleName = req.MiddleName
	user.LastName = req.LastName
	if req.MobileNumber != "" {
		user.MobileNumber = req.MobileNumber
	}
	user.Gender = req.Gender
	user.Country = req.Country
	user.State = req.State
	user.City = req.City
	if req.FromIndia != nil {
		user.FromIndia = *req.FromIndia
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date_of_birth, expected YYYY-MM-DD"})
		}
		user.DateOfBirth = &dob
	}

	if err := database.UpdateUserProfile(db, user); err != nil {
		config.Log.Error().Err(err).Msg("Profile update failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}
