package fees

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/models"
)

func ListFeesAPI(c *fiber.Ctx) error {
	fees, err := database.ListFees(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load fees"})
	}
	return c.JSON(fiber.Map{"fees": fees})
}

// QuoteFeeAPI resolves the fee payable by the logged-in applicant for a
// membership type, based on their age and residency, with GST applied.
func QuoteFeeAPI(c *fiber.Ctx) error {
	membershipType := c.Query("membership_type")
	if membershipType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "membership_type is required"})
	}

	db := config.GetDB()
	user, err := database.GetUserByID(db, c.Locals("user_id").(string))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	if user.DateOfBirth == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Date of birth must be set on the profile first"})
	}

	age := ageAt(*user.DateOfBirth, time.Now())
	fee, err := database.FindFeeForApplicant(db, membershipType, age, !user.FromIndia)
	if err != nil {
		config.Log.Error().Err(err).Msg("Fee lookup failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to resolve fee"})
	}
	if fee == nil {
		return c.Status(404).JSON(fiber.Map{"error": "No fee is configured for your age and membership type"})
	}

	gst := fee.FeeAmount * fee.GSTPercent / 100
	return c.JSON(fiber.Map{
		"fee":          fee,
		"gst_amount":   gst,
		"total_amount": fee.FeeAmount + gst,
	})
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	return age
}

type FeeRequest struct {
	MembershipType string   `json:"membership_type"`
	MinAge         *int     `json:"min_age"`
	MaxAge         *int     `json:"max_age"`
	FeeAmount      float64  `json:"fee_amount"`
	Currency       string   `json:"currency"`
	ForeignMember  bool     `json:"is_foreign_member"`
	GSTPercent     *float64 `json:"gst_percentage"`
	Experience     *float64 `json:"experience"`
}

func (r *FeeRequest) toModel() *models.MembershipFee {
	fee := &models.MembershipFee{
		MembershipType: r.MembershipType,
		MinAge:         r.MinAge,
		MaxAge:         r.MaxAge,
		FeeAmount:      r.FeeAmount,
		Currency:       r.Currency,
		ForeignMember:  r.ForeignMember,
		GSTPercent:     18,
		Experience:     r.Experience,
	}
	if fee.Currency == "" {
		fee.Currency = "INR"
	}
	if r.GSTPercent != nil {
		fee.GSTPercent = *r.GSTPercent
	}
	return fee
}

func CreateFeeAPI(c *fiber.Ctx) error {
	var req FeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MembershipType == "" || req.FeeAmount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "membership_type and a positive fee_amount are required"})
	}
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		return c.Status(400).JSON(fiber.Map{"error": "min_age cannot exceed max_age"})
	}

	fee := req.toModel()
	conflict, err := database.CreateFee(config.GetDB(), fee)
	if err != nil {
		config.Log.Error().Err(err).Msg("Fee create failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create fee"})
	}
	if conflict != nil {
		return c.Status(409).JSON(fiber.Map{
			"error":    "Fee overlaps an existing bracket for this membership type",
			"conflict": conflict,
		})
	}
	return c.Status(201).JSON(fiber.Map{"fee": fee})
}

func UpdateFeeAPI(c *fiber.Ctx) error {
	var req FeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		return c.Status(400).JSON(fiber.Map{"error": "min_age cannot exceed max_age"})
	}

	fee := req.toModel()
	fee.ID = c.Params("id")
	conflict, err := database.UpdateFee(config.GetDB(), fee)
	if err != nil {
		config.Log.Error().Err(err).Msg("Fee update failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update fee"})
	}
	if conflict != nil {
		return c.Status(409).JSON(fiber.Map{
			"error":    "Fee overlaps an existing bracket for this membership type",
			"conflict": conflict,
		})
	}
	return c.JSON(fiber.Map{"fee": fee})
}

func DeleteFeeAPI(c *fiber.Ctx) error {
	if err := database.DeleteFee(config.GetDB(), c.Params("id")); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete fee"})
	}
	return c.JSON(fiber.Map{"message": "Fee deleted"})
}
