package roles

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/approval"
)

// protectedRoles cannot be renamed or deleted through the API.
var protectedRoles = []string{"Admin", "Super Admin"}

func isProtected(name string) bool {
	for _, p := range protectedRoles {
		if strings.EqualFold(name, p) {
			return true
		}
	}
	return false
}

func ListRolesAPI(c *fiber.Ctx) error {
	roles, err := database.GetAllRoles(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load roles"})
	}
	return c.JSON(fiber.Map{"roles": roles})
}

// RoleHierarchyAPI returns every role in bottom-up hierarchy order.
func RoleHierarchyAPI(c *fiber.Ctx) error {
	roles, err := database.GetAllRoles(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load roles"})
	}

	arena := approval.RoleArena(roles)
	chain, err := approval.RoleChainFromBottom(roles, arena)
	if err != nil {
		config.Log.Error().Err(err).Msg("Role hierarchy walk failed")
		return c.Status(500).JSON(fiber.Map{"error": "Role hierarchy is invalid"})
	}

	ordered := make([]*models.Role, 0, len(chain))
	for _, id := range chain {
		if role := arena[id]; role != nil {
			ordered = append(ordered, role)
		}
	}
	return c.JSON(fiber.Map{"hierarchy": ordered})
}

type RoleRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

func CreateRoleAPI(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Role name is required"})
	}

	role := &models.Role{Name: strings.TrimSpace(req.Name), ParentID: req.ParentID}
	if err := database.CreateRole(config.GetDB(), role); err != nil {
		config.Log.Error().Err(err).Msg("Role create failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create role"})
	}
	return c.Status(201).JSON(fiber.Map{"role": role})
}

func UpdateRoleAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	role, err := database.GetRoleByID(db, c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Role not found"})
	}
	if isProtected(role.Name) {
		return c.Status(403).JSON(fiber.Map{"error": "This role cannot be modified"})
	}

	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) != "" {
		role.Name = strings.TrimSpace(req.Name)
	}
	role.ParentID = req.ParentID

	// A role must never become its own ancestor.
	if role.ParentID != nil {
		roles, err := database.GetAllRoles(db)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to update role"})
		}
		arena := approval.RoleArena(roles)
		arena[role.ID] = role
		cur := arena[*role.ParentID]
		for cur != nil {
			if cur.ID == role.ID {
				return c.Status(400).JSON(fiber.Map{"error": "Parent assignment would create a cycle"})
			}
			if cur.ParentID == nil {
				break
			}
			cur = arena[*cur.ParentID]
		}
	}

	if err := database.UpdateRole(db, role); err != nil {
		config.Log.Error().Err(err).Msg("Role update failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update role"})
	}
	return c.JSON(fiber.Map{"role": role})
}

func DeleteRoleAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	role, err := database.GetRoleByID(db, c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Role not found"})
	}
	if isProtected(role.Name) {
		return c.Status(403).JSON(fiber.Map{"error": "This role cannot be deleted"})
	}

	inUse, err := database.RoleInUse(db, role.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete role"})
	}
	if inUse {
		return c.Status(409).JSON(fiber.Map{"error": "Role is assigned to users and cannot be deleted"})
	}

	if err := database.DeleteRole(db, role.ID); err != nil {
		config.Log.Error().Err(err).Msg("Role delete failed")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete role"})
	}
	return c.JSON(fiber.Map{"message": "Role deleted"})
}
