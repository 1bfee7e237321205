package members

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/audit"
	"github.com/Shekhar17ACS/IETE/app/services/membership"
)

type ExperienceRequest struct {
	OrganizationName *string `json:"organization_name"`
	EmployeeType     *string `json:"employee_type"`
	JobTitle         *string `json:"job_title"`
	CurrentlyWorking bool    `json:"currently_working"`
	StartDate        string  `json:"start_date"`
	EndDate          *string `json:"end_date"`
	WorkType         *string `json:"work_type"`
}

// AddExperienceAPI stores a work-history record and recomputes the
// applicant's total experience.
func AddExperienceAPI(c *fiber.Ctx) error {
	var req ExperienceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid start_date, expected YYYY-MM-DD"})
	}
	var end *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end_date, expected YYYY-MM-DD"})
		}
		if parsed.Before(start) {
			return c.Status(400).JSON(fiber.Map{"error": "end_date cannot be before start_date"})
		}
		end = &parsed
	}

	db := config.GetDB()
	exp := &models.Experience{
		UserID:           c.Locals("user_id").(string),
		OrganizationName: req.OrganizationName,
		EmployeeType:     req.EmployeeType,
		JobTitle:         req.JobTitle,
		CurrentlyWorking: req.CurrentlyWorking,
		StartDate:        start,
		EndDate:          end,
		WorkType:         req.WorkType,
	}
	if err := database.CreateExperience(db, exp); err != nil {
		config.Log.Error().Err(err).Msg("Experience insert failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save experience"})
	}

	total, err := database.RecalculateTotalExperience(db, exp.UserID)
	if err != nil {
		config.Log.Error().Err(err).Msg("Experience recalculation failed")
	}

	return c.Status(201).JSON(fiber.Map{"experience": exp, "total_experience": total})
}

func ListExperiencesAPI(c *fiber.Ctx) error {
	records, err := database.ListExperiences(config.GetDB(), c.Locals("user_id").(string))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load experiences"})
	}
	return c.JSON(fiber.Map{"experiences": records})
}

type QualificationRequest struct {
	QualificationTypeID   *string `json:"qualification_type_id"`
	QualificationBranchID *string `json:"qualification_branch_id"`
	InstituteName         string  `json:"institute_name"`
	BoardUniversity       *string `json:"board_university"`
	YearOfPassing         int     `json:"year_of_passing"`
	PercentageCGPA        string  `json:"percentage_cgpa"`
}

func AddQualificationAPI(c *fiber.Ctx) error {
	var req QualificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.InstituteName == "" || req.YearOfPassing == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "institute_name and year_of_passing are required"})
	}

	q := &models.Qualification{
		UserID:                c.Locals("user_id").(string),
		QualificationTypeID:   req.QualificationTypeID,
		QualificationBranchID: req.QualificationBranchID,
		InstituteName:         req.InstituteName,
		BoardUniversity:       req.BoardUniversity,
		YearOfPassing:         req.YearOfPassing,
		PercentageCGPA:        req.PercentageCGPA,
	}
	if err := database.CreateQualification(config.GetDB(), q); err != nil {
		config.Log.Error().Err(err).Msg("Qualification insert failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save qualification"})
	}
	return c.Status(201).JSON(fiber.Map{"qualification": q})
}

func ListQualificationsAPI(c *fiber.Ctx) error {
	records, err := database.ListQualifications(config.GetDB(), c.Locals("user_id").(string))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load qualifications"})
	}
	return c.JSON(fiber.Map{"qualifications": records})
}

func ListNotificationsAPI(c *fiber.Ctx) error {
	records, err := database.ListNotifications(config.GetDB(), c.Locals("user_id").(string), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load notifications"})
	}
	return c.JSON(fiber.Map{"notifications": records})
}

func MarkNotificationReadAPI(c *fiber.Ctx) error {
	err := database.MarkNotificationRead(config.GetDB(), c.Params("id"), c.Locals("user_id").(string))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func ListMembersAPI(c *fiber.Ctx) error {
	filters := database.UserFilters{
		Search:    c.Query("search"),
		RoleID:    c.Query("role_id"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     c.QueryInt("limit", 50),
		Offset:    c.QueryInt("offset", 0),
	}
	if v := c.Query("is_approved"); v != "" {
		approved := v == "true"
		filters.IsApproved = &approved
	}

	users, err := database.ListUsers(config.GetDB(), filters)
	if err != nil {
		config.Log.Error().Err(err).Msg("Member list failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load members"})
	}
	return c.JSON(fiber.Map{"members": users, "count": len(users)})
}

func GetMemberAPI(c *fiber.Ctx) error {
	user, err := database.GetUserByID(config.GetDB(), c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Member not found"})
	}
	return c.JSON(user)
}

type AddMemberRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	RoleName     string `json:"role_name"`
}

type addMemberResult struct {
	Email        string `json:"email"`
	MembershipID string `json:"membership_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// AddMembersAPI bulk-creates approved members with issued membership
// IDs, one per request entry. Failures are reported per entry so one
// bad row does not abort the batch.
func AddMembersAPI(c *fiber.Ctx) error {
	var reqs []AddMemberRequest
	if err := c.BodyParser(&reqs); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body, expected a list of members"})
	}
	if len(reqs) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "No members provided"})
	}

	db := config.GetDB()
	actorID := c.Locals("user_id").(string)
	ip := c.IP()

	results := make([]addMemberResult, 0, len(reqs))
	for _, req := range reqs {
		result := addMemberResult{Email: req.Email}

		if req.Email == "" || req.Name == "" || req.RoleName == "" {
			result.Error = "email, name and role_name are required"
			results = append(results, result)
			continue
		}

		role, err := database.GetRoleByName(db, req.RoleName)
		if err != nil || role == nil {
			result.Error = "role not found"
			results = append(results, result)
			continue
		}

		existing, err := database.GetUserByEmail(db, req.Email)
		if err != nil || existing != nil {
			result.Error = "account already exists"
			results = append(results, result)
			continue
		}

		password, err := membership.RandomPassword()
		if err != nil {
			result.Error = "failed to generate credentials"
			results = append(results, result)
			continue
		}
		hash, err := database.HashPassword(password)
		if err != nil {
			result.Error = "failed to generate credentials"
			results = append(results, result)
			continue
		}

		user := &models.User{
			Email:        req.Email,
			Password:     hash,
			Name:         req.Name,
			MobileNumber: req.MobileNumber,
			IsActive:     true,
		}
		if err := database.CreateUser(db, user); err != nil {
			result.Error = "failed to create account"
			results = append(results, result)
			continue
		}

		memberID, err := allocator.Allocate(c.Context(), membership.RolePrefix(role.Name))
		if err != nil {
			result.Error = "failed to allocate membership id"
			results = append(results, result)
			continue
		}
		if err := database.AssignMembership(db, user.ID, memberID, role.ID); err != nil {
			result.Error = "failed to assign membership"
			results = append(results, result)
			continue
		}
		user.MembershipID = &memberID
		user.RoleID = &role.ID

		auditor.Record(c.Context(), &actorID, models.AuditCreate, "User", user.ID, audit.Snapshot(user), &ip)

		result.MembershipID = memberID
		results = append(results, result)
	}

	return c.Status(201).JSON(fiber.Map{"results": results})
}
