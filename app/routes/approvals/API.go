package approvals

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/approval"
)

// DefaultWorkflowType is used when a vote request names no workflow.
const DefaultWorkflowType = "membership"

type VoteRequest struct {
	ApplicantID string `json:"applicant_id"`
	ConfigType  string `json:"config_type"`
	Approved    *bool  `json:"approved"`
	Remark      string `json:"remark"`
}

// VoteAPI records the logged-in approver's vote on an application.
func VoteAPI(c *fiber.Ctx) error {
	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ApplicantID == "" || req.Approved == nil {
		return c.Status(400).JSON(fiber.Map{"error": "applicant_id and approved are required"})
	}
	if req.ConfigType == "" {
		req.ConfigType = DefaultWorkflowType
	}

	outcome, err := engine.RecordVote(c.Context(), approval.VoteInput{
		ApplicantID: req.ApplicantID,
		ApproverID:  c.Locals("user_id").(string),
		ConfigType:  req.ConfigType,
		Approved:    *req.Approved,
		Remark:      req.Remark,
	})
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrUnauthorized):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, approval.ErrAlreadyFinalized):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, approval.ErrConfigMissing),
			errors.Is(err, approval.ErrMembershipTypeMissing),
			errors.Is(err, approval.ErrFeeNotFound),
			errors.Is(err, approval.ErrRoleNotFound):
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		}
		config.Log.Error().Err(err).Str("applicant", req.ApplicantID).Msg("Vote processing failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to process vote"})
	}

	return c.JSON(outcome)
}

// StatusAPI reports the decision history and the open vote ledger for an
// applicant, with each approver's remark pulled out of the remark block.
func StatusAPI(c *fiber.Ctx) error {
	applicantID := c.Params("applicantId")
	db := config.GetDB()

	decisions, err := database.ListDecisions(db, applicantID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load approval status"})
	}

	configType := c.Query("config_type", DefaultWorkflowType)
	cfg, err := database.GetConfigByType(db, configType)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load approval status"})
	}

	resp := fiber.Map{"applicant_id": applicantID, "decisions": decisions}
	if cfg != nil {
		record := cfg.Value[applicantID]
		if record == nil {
			record = models.NewVoteRecord()
		}
		perApprover := make([]fiber.Map, 0, len(cfg.Approvers))
		for _, u := range cfg.Approvers {
			entry := fiber.Map{"approver_id": u.ID, "name": u.Name, "voted": record.HasVoted(u.ID)}
			if vote, ok := record.Votes[u.ID]; ok {
				entry["approved"] = vote
			}
			if remark := record.Remarks[u.ID]; remark != "" {
				entry["remark"] = remark
			} else if len(decisions) > 0 {
				if line := approval.RemarkForApprover(decisions[0].Remark, u.Name); line != "" {
					entry["remark"] = line
				}
			}
			perApprover = append(perApprover, entry)
		}
		resp["approvers"] = perApprover
	}

	return c.JSON(resp)
}

type ConfigRequest struct {
	Title           *string  `json:"title"`
	Type            string   `json:"type"`
	ApprovalPercent float64  `json:"approval_prsnt"`
	Hierarchy       bool     `json:"heirarchy"`
	ApproverIDs     []string `json:"approver_ids"`
}

func ListConfigsAPI(c *fiber.Ctx) error {
	configs, err := database.ListConfigs(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load configurations"})
	}
	return c.JSON(fiber.Map{"configs": configs})
}

// SaveConfigAPI creates or updates the approval configuration for a
// workflow type. The vote ledger is preserved across updates.
func SaveConfigAPI(c *fiber.Ctx) error {
	var req ConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Type == "" {
		return c.Status(400).JSON(fiber.Map{"error": "type is required"})
	}
	if req.ApprovalPercent <= 0 || req.ApprovalPercent > 100 {
		return c.Status(400).JSON(fiber.Map{"error": "approval_prsnt must be between 1 and 100"})
	}
	if len(req.ApproverIDs) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "At least one approver is required"})
	}

	db := config.GetDB()
	for _, id := range req.ApproverIDs {
		if _, err := database.GetUserByID(db, id); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Unknown approver: " + id})
		}
	}

	cfg := &models.ConfigSetting{
		Title:           req.Title,
		Type:            req.Type,
		ApprovalPercent: req.ApprovalPercent,
		Hierarchy:       req.Hierarchy,
	}
	if err := database.SaveConfig(db, cfg, req.ApproverIDs); err != nil {
		config.Log.Error().Err(err).Msg("Config save failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save configuration"})
	}
	return c.Status(201).JSON(fiber.Map{"config": cfg})
}

func DeleteConfigAPI(c *fiber.Ctx) error {
	if err := database.DeleteConfig(config.GetDB(), c.Params("id")); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete configuration"})
	}
	return c.JSON(fiber.Map{"message": "Configuration deleted"})
}
