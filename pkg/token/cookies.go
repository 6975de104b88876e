package token

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// CookieAuthToken carries the access token.
	CookieAuthToken = "auth_token"
	// CookieRefreshToken carries the refresh token, path-restricted to
	// the refresh endpoint.
	CookieRefreshToken = "refresh_token"
	// CookieSessionID carries the opaque session identifier.
	CookieSessionID = "session_id"
	// CookieIsAuthenticated is readable by client-side code so the UI can
	// detect login state without touching the token. Carries no secret.
	CookieIsAuthenticated = "is_authenticated"

	// RefreshCookiePath restricts where the browser resends the refresh
	// token. Clearing must use the same path or the cookie survives.
	RefreshCookiePath = "/api/v1/auth/refresh"

	sessionCookieTTL = 12 * time.Hour
)

// SetAuthCookies writes the four auth cookies on the response.
func (s *Service) SetAuthCookies(c *fiber.Ctx, accessToken, refreshToken, sessionID string, expiresIn time.Duration) {
	sameSite := fiber.CookieSameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = fiber.CookieSameSiteStrictMode
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieAuthToken,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(expiresIn.Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
	})
	c.Cookie(&fiber.Cookie{
		Name:     CookieRefreshToken,
		Value:    refreshToken,
		Path:     RefreshCookiePath,
		MaxAge:   int(s.cfg.RefreshTTL.Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
	})
	c.Cookie(&fiber.Cookie{
		Name:     CookieSessionID,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionCookieTTL.Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
	})
	c.Cookie(&fiber.Cookie{
		Name:     CookieIsAuthenticated,
		Value:    "true",
		Path:     "/",
		MaxAge:   int(expiresIn.Seconds()),
		HTTPOnly: false,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
	})
}

// ClearAuthCookies expires all four auth cookies. Paths must match what
// SetAuthCookies used, notably for the refresh token.
func (s *Service) ClearAuthCookies(c *fiber.Ctx) {
	expire := func(name, path string, httpOnly bool) {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HTTPOnly: httpOnly,
			Secure:   s.cfg.SecureCookies,
		})
	}
	expire(CookieAuthToken, "/", true)
	expire(CookieRefreshToken, RefreshCookiePath, true)
	expire(CookieSessionID, "/", true)
	expire(CookieIsAuthenticated, "/", false)
}

// FromRequest extracts the access token: auth_token cookie first, then a
// Bearer Authorization header.
func FromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(CookieAuthToken); cookie != "" {
		return cookie
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
