package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type RoleController struct {
	Service RoleService
}

func NewRoleController(service RoleService) *RoleController {
	return &RoleController{Service: service}
}

type ApplyTemplateRequest struct {
	Template string `json:"template"`
}

// ListRoles godoc
// @Summary      List roles
// @Description  All roles with their derived staff counts, sorted by name
// @Tags         roles
// @Produce      json
// @Success      200 {array} Role
// @Router       /api/v1/roles [get]
func (ctrl *RoleController) ListRoles(c *fiber.Ctx) error {
	roles, err := ctrl.Service.ListRoles(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch roles",
		})
	}
	return c.JSON(roles)
}

// GetRole godoc
// @Summary      Get role by ID
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200 {object} Role
// @Failure      404 {string} string "Role not found"
// @Router       /api/v1/roles/{id} [get]
func (ctrl *RoleController) GetRole(c *fiber.Ctx) error {
	role, err := ctrl.Service.GetRoleByID(c.Context(), c.Params("id"))
	if err != nil {
		return roleError(c, err)
	}
	return c.JSON(role)
}

// CreateRole godoc
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        input body CreateRoleInput true "Create Role Input"
// @Success      201 {object} Role
// @Failure      409 {string} string "Duplicate role name"
// @Router       /api/v1/roles [post]
func (ctrl *RoleController) CreateRole(c *fiber.Ctx) error {
	var input CreateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role, err := ctrl.Service.CreateRole(c.Context(), input)
	if err != nil {
		return roleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

// UpdateRole godoc
// @Summary      Update role
// @Description  Merges provided fields. System roles always refuse with 403.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID"
// @Param        input body UpdateRoleInput true "Update Role Input"
// @Success      200 {object} Role
// @Router       /api/v1/roles/{id} [patch]
func (ctrl *RoleController) UpdateRole(c *fiber.Ctx) error {
	var input UpdateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role, err := ctrl.Service.UpdateRole(c.Context(), c.Params("id"), input)
	if err != nil {
		return roleError(c, err)
	}

	return c.JSON(role)
}

// DeleteRole godoc
// @Summary      Delete role
// @Description  Refused for system roles and for roles still assigned to staff.
// @Tags         roles
// @Param        id path string true "Role ID"
// @Success      204
// @Router       /api/v1/roles/{id} [delete]
func (ctrl *RoleController) DeleteRole(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRole(c.Context(), c.Params("id")); err != nil {
		return roleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyTemplate godoc
// @Summary      Apply a named permission template to a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID"
// @Param        input body ApplyTemplateRequest true "Template name"
// @Success      200 {object} Role
// @Router       /api/v1/roles/{id}/apply-template [post]
func (ctrl *RoleController) ApplyTemplate(c *fiber.Ctx) error {
	var req ApplyTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role, err := ctrl.Service.ApplyTemplate(c.Context(), c.Params("id"), req.Template)
	if err != nil {
		return roleError(c, err)
	}

	return c.JSON(role)
}

func roleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Role not found"})
	case errors.Is(err, ErrSystemRole):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "System roles cannot be modified"})
	case errors.Is(err, ErrDuplicateName):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A role with this name already exists"})
	case errors.Is(err, ErrInUse):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Role is assigned to staff members and cannot be deleted"})
	case errors.Is(err, ErrUnknownTemplate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown role template"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
