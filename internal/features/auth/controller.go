package auth

import (
	"errors"

	common_models "go-pos/internal/common/models"
	"go-pos/pkg/token"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	AuthService AuthService
	Tokens      *token.Service
}

func NewAuthController(authService AuthService, tokens *token.Service) *AuthController {
	return &AuthController{AuthService: authService, Tokens: tokens}
}

// Login godoc
//
//	@Summary		Log in with username and password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body	LoginRequest	true	"Login credentials"
//	@Router			/api/v1/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	res, err := ctrl.AuthService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrInvalidCredentials.Error(),
			})
		case errors.Is(err, ErrAccountInactive):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": ErrAccountInactive.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to log in",
			})
		}
	}

	ctrl.Tokens.SetAuthCookies(c, res.Tokens.AccessToken, res.Tokens.RefreshToken, res.SessionID, res.Tokens.ExpiresIn)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":       res.User,
		"role":       res.RoleName,
		"expires_in": int64(res.Tokens.ExpiresIn.Seconds()),
		// Coarse permission strings kept for older frontends; the
		// authoritative checks run server side against the role set.
		"permissions": token.LegacyPermissions(res.RoleName),
	})
}

// Logout godoc
//
//	@Summary	Log out and revoke the current access token
//	@Tags		auth
//	@Produce	json
//	@Router		/api/v1/auth/logout [post]
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	accessToken := token.FromRequest(c)
	sessionID := c.Cookies(token.CookieSessionID)

	if err := ctrl.AuthService.Logout(c.Context(), accessToken, sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to log out",
		})
	}

	ctrl.Tokens.ClearAuthCookies(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "logged out",
	})
}

// Refresh godoc
//
//	@Summary	Exchange a refresh token for a new token pair
//	@Tags		auth
//	@Produce	json
//	@Router		/api/v1/auth/refresh [post]
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(token.CookieRefreshToken)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "refresh token missing",
		})
	}

	pair, err := ctrl.AuthService.Refresh(c.Context(), refreshToken)
	if err != nil {
		ctrl.Tokens.ClearAuthCookies(c)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid refresh token",
		})
	}

	ctrl.Tokens.SetAuthCookies(c, pair.AccessToken, pair.RefreshToken, c.Cookies(token.CookieSessionID), pair.ExpiresIn)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"expires_in": int64(pair.ExpiresIn.Seconds()),
	})
}

// Me godoc
//
//	@Summary	Return the authenticated user
//	@Tags		auth
//	@Produce	json
//	@Router		/api/v1/auth/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	usr, ok := c.Locals(common_models.AuthUserKey).(*common_models.User)
	if !ok || usr == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": usr,
	})
}
