package audit

import (
	"go-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	auth       *middleware.Auth
}

func NewAuditApi(controller *AuditController, auth *middleware.Auth) *AuditApi {
	return &AuditApi{
		controller: controller,
		auth:       auth,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	logs := app.Group("/api/v1/audit-logs", h.auth.Authenticate())

	logs.Get("/", h.auth.RequirePermission("settings", "view"), h.controller.ListLogs)
	logs.Get("/roles/:id", h.auth.RequirePermission("staff", "view"), h.controller.ListRoleLogs)
}
