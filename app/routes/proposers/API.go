package proposers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/services"
)

type InviteRequest struct {
	Name         string `json:"name"`
	MembershipNo string `json:"membership_no"`
	MobileNo     string `json:"mobile_no"`
	Email        string `json:"email"`
}

// InviteProposerAPI creates a proposer invitation and emails the action
// link. The nominee must be an existing member matched by email and
// membership number together. An applicant may hold at most two slots
// that are pending or approved; expired and rejected invitations free
// their slot.
func InviteProposerAPI(c *fiber.Ctx) error {
	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MembershipNo == "" || req.Email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "membership_no and email are required"})
	}

	proposer, err := inviter.Invite(c.Context(), c.Locals("user_id").(string), services.ProposerInvite{
		Name:         req.Name,
		MembershipNo: req.MembershipNo,
		MobileNo:     req.MobileNo,
		Email:        req.Email,
	})
	switch {
	case errors.Is(err, services.ErrProposerSelf):
		return c.Status(400).JSON(fiber.Map{"error": "You cannot propose yourself"})
	case errors.Is(err, services.ErrProposerNotMember):
		return c.Status(404).JSON(fiber.Map{"error": "No member matches the given email and membership number"})
	case errors.Is(err, services.ErrProposerLimit):
		return c.Status(409).JSON(fiber.Map{"error": "You already have the maximum number of proposers"})
	case err != nil:
		config.Log.Error().Err(err).Msg("Proposer invite failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create proposer request"})
	}

	return c.Status(201).JSON(fiber.Map{"proposer": proposer})
}

func ListProposersAPI(c *fiber.Ctx) error {
	records, err := database.ListProposersByUser(config.GetDB(), c.Locals("user_id").(string))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load proposers"})
	}
	return c.JSON(fiber.Map{"proposers": records})
}

// ProposerActionAPI records the proposer's decision from the emailed
// token link. A click past the expiry window expires the row the same
// way the sweep would; a sweep that already expired it wins.
func ProposerActionAPI(c *fiber.Ctx) error {
	token := c.Params("token")
	decision := strings.ToLower(c.Query("decision"))
	if decision != "approve" && decision != "reject" {
		return c.Status(400).JSON(fiber.Map{"error": "decision must be 'approve' or 'reject'"})
	}

	proposer, err := decider.Decide(c.Context(), token, decision == "approve", time.Now())
	switch {
	case errors.Is(err, services.ErrProposerUnknownToken):
		return c.Status(404).JSON(fiber.Map{"error": "Invalid or unknown link"})
	case errors.Is(err, services.ErrProposerDecided):
		return c.Status(409).JSON(fiber.Map{"error": "This request has already been decided"})
	case errors.Is(err, services.ErrProposerExpired):
		return c.Status(410).JSON(fiber.Map{"error": "This request has expired"})
	case err != nil:
		config.Log.Error().Err(err).Msg("Proposer decision failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to process action"})
	}

	return c.JSON(fiber.Map{"message": "Your response has been recorded", "status": proposer.Status})
}
