package user

import (
	"go-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	auth       *middleware.Auth
}

func NewUserApi(controller *UserController, auth *middleware.Auth) *UserApi {
	return &UserApi{
		controller: controller,
		auth:       auth,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/v1/users", h.auth.Authenticate())

	users.Get("/", h.auth.RequirePermission("staff", "view"), h.controller.ListUsers)
	users.Get("/:id", h.auth.RequirePermission("staff", "view"), h.controller.GetUser)
}
