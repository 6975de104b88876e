package role

import (
	"go-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller *RoleController
	auth       *middleware.Auth
}

func NewRoleApi(controller *RoleController, auth *middleware.Auth) *RoleApi {
	return &RoleApi{
		controller: controller,
		auth:       auth,
	}
}

// Setup registers role routes
func (h *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/v1/roles", h.auth.Authenticate())

	roles.Get("/", h.auth.RequirePermission("staff", "view"), h.controller.ListRoles)
	roles.Post("/", h.auth.RequirePermission("staff", "create"), h.controller.CreateRole)
	roles.Get("/:id", h.auth.RequirePermission("staff", "view"), h.controller.GetRole)
	roles.Patch("/:id", h.auth.RequirePermission("staff", "edit"), h.controller.UpdateRole)
	roles.Delete("/:id", h.auth.RequirePermission("staff", "delete"), h.controller.DeleteRole)
	roles.Post("/:id/apply-template", h.auth.RequirePermission("staff", "edit"), h.controller.ApplyTemplate)
}
