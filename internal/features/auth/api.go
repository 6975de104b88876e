package auth

import (
	"go-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	Controller *AuthController
	Auth       *middleware.Auth
}

func NewAuthApi(controller *AuthController, auth *middleware.Auth) *AuthApi {
	return &AuthApi{Controller: controller, Auth: auth}
}

func (r *AuthApi) Setup(app *fiber.App) {
	grp := app.Group("/api/v1/auth")

	grp.Post("/login", r.Controller.Login)
	grp.Post("/refresh", r.Controller.Refresh)

	grp.Post("/logout", r.Auth.Authenticate(), r.Controller.Logout)
	grp.Get("/me", r.Auth.Authenticate(), r.Controller.Me)
}
