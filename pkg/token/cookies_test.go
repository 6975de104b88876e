package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesFromHandler(t *testing.T, handler fiber.Handler) map[string]*http.Cookie {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	out := make(map[string]*http.Cookie)
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSetAuthCookies(t *testing.T) {
	svc := NewService(Config{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
	}, NewMemoryBlacklist())

	cookies := cookiesFromHandler(t, func(c *fiber.Ctx) error {
		svc.SetAuthCookies(c, "access-value", "refresh-value", "session-value", time.Hour)
		return c.SendString("ok")
	})

	require.Contains(t, cookies, CookieAuthToken)
	require.Contains(t, cookies, CookieRefreshToken)
	require.Contains(t, cookies, CookieSessionID)
	require.Contains(t, cookies, CookieIsAuthenticated)

	auth := cookies[CookieAuthToken]
	assert.Equal(t, "access-value", auth.Value)
	assert.True(t, auth.HttpOnly)
	assert.Equal(t, "/", auth.Path)
	assert.Equal(t, int(time.Hour.Seconds()), auth.MaxAge)

	refresh := cookies[CookieRefreshToken]
	assert.Equal(t, "refresh-value", refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, RefreshCookiePath, refresh.Path, "refresh cookie must stay path-restricted")

	session := cookies[CookieSessionID]
	assert.True(t, session.HttpOnly)
	assert.Equal(t, int(sessionCookieTTL.Seconds()), session.MaxAge)

	flag := cookies[CookieIsAuthenticated]
	assert.Equal(t, "true", flag.Value)
	assert.False(t, flag.HttpOnly, "login flag is meant to be readable by the frontend")
}

func TestSetAuthCookiesSecureMode(t *testing.T) {
	svc := NewService(Config{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
		SecureCookies: true,
	}, NewMemoryBlacklist())

	cookies := cookiesFromHandler(t, func(c *fiber.Ctx) error {
		svc.SetAuthCookies(c, "access-value", "refresh-value", "session-value", time.Hour)
		return c.SendString("ok")
	})

	for _, name := range []string{CookieAuthToken, CookieRefreshToken, CookieSessionID, CookieIsAuthenticated} {
		require.Contains(t, cookies, name)
		assert.True(t, cookies[name].Secure, "%s should be Secure in production", name)
		assert.Equal(t, http.SameSiteStrictMode, cookies[name].SameSite, "%s should be SameSite=Strict in production", name)
	}
}

func TestClearAuthCookies(t *testing.T) {
	svc := NewService(Config{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
	}, NewMemoryBlacklist())

	cookies := cookiesFromHandler(t, func(c *fiber.Ctx) error {
		svc.ClearAuthCookies(c)
		return c.SendString("ok")
	})

	for _, name := range []string{CookieAuthToken, CookieRefreshToken, CookieSessionID, CookieIsAuthenticated} {
		require.Contains(t, cookies, name)
		assert.Empty(t, cookies[name].Value)
		assert.True(t, cookies[name].Expires.Before(time.Now()), "%s should be expired", name)
	}

	// The refresh cookie can only be cleared on the path it was set with.
	assert.Equal(t, RefreshCookiePath, cookies[CookieRefreshToken].Path)
}

func TestFromRequestPrefersCookie(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = FromRequest(c)
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAuthToken, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", got)
}

func TestFromRequestBearerFallback(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = FromRequest(c)
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-header", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, got, "non-bearer schemes are ignored")
}
