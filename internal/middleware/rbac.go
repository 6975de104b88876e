package middleware

import (
	"slices"

	common_models "go-pos/internal/common/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Permission names one module/action check for RequireAnyPermission.
type Permission struct {
	Module string
	Action string
}

// RequirePermission gates a route on the user's role permissions. Access
// is granted when any active role stores anything other than "none" for
// the module/action; the stored scope (self/department/all) is not
// compared further here.
func (a *Auth) RequirePermission(module, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.skipAuth {
			return c.Next()
		}

		user := authUser(c)
		if user == nil {
			return unauthorized(c)
		}

		allowed, err := a.roles.CheckModulePermission(c.Context(), user.RoleIDs(), module, action)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		if !allowed {
			return a.deny(c, user, module, action)
		}
		return c.Next()
	}
}

// RequireAnyPermission grants when at least one of the listed checks
// passes.
func (a *Auth) RequireAnyPermission(perms ...Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.skipAuth {
			return c.Next()
		}

		user := authUser(c)
		if user == nil {
			return unauthorized(c)
		}

		for _, p := range perms {
			allowed, err := a.roles.CheckModulePermission(c.Context(), user.RoleIDs(), p.Module, p.Action)
			if err != nil {
				continue
			}
			if allowed {
				return c.Next()
			}
		}

		first := perms[0]
		return a.deny(c, user, first.Module, first.Action)
	}
}

// RequireRoles gates a route on role-name membership. Administrators
// always pass.
func (a *Auth) RequireRoles(roleNames ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.skipAuth {
			return c.Next()
		}

		user := authUser(c)
		if user == nil {
			return unauthorized(c)
		}

		names, err := a.roles.NamesForRoles(c.Context(), user.RoleIDs())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		for _, name := range names {
			if name == "ADMIN" || name == "Administrator" {
				return c.Next()
			}
			if slices.Contains(roleNames, name) {
				return c.Next()
			}
		}

		a.emitAuthEvent(c, common_models.AuditActionAuthzDenied, user.ID.Hex(), map[string]common_models.Change{
			"required_roles": {To: roleNames},
		})

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":     "Forbidden: Insufficient permissions",
			"errorCode": CodeInsufficientRole,
		})
	}
}

func (a *Auth) deny(c *fiber.Ctx, user *common_models.User, module, action string) error {
	a.metrics.AuthzDenials.WithLabelValues(module, action).Inc()
	a.log.Debug("permission denied",
		zap.String("user", user.ID.Hex()),
		zap.String("module", module),
		zap.String("action", action),
	)
	a.emitAuthEvent(c, common_models.AuditActionAuthzDenied, user.ID.Hex(), map[string]common_models.Change{
		"module": {To: module},
		"action": {To: action},
	})

	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Access denied: Insufficient permissions for this action",
	})
}

func authUser(c *fiber.Ctx) *common_models.User {
	user, _ := c.Locals(common_models.AuthUserKey).(*common_models.User)
	return user
}

// unauthorized covers the defensive case of the authorize stage running
// without an authenticated user.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":     "Unauthorized",
		"errorCode": CodeUnauthorized,
	})
}
