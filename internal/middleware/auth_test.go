package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	common_models "go-pos/internal/common/models"
	"go-pos/internal/metrics"
	"go-pos/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSessions struct {
	valid bool
	err   error
}

func (f *fakeSessions) Validate(ctx context.Context, sessionID string) (bool, error) {
	return f.valid, f.err
}

type fakeUsers struct {
	user *common_models.User
	err  error
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	return f.user, f.err
}

type fakeRoles struct {
	allowed map[string]bool // "module:action" -> allowed
	names   []string
	err     error
}

func (f *fakeRoles) CheckModulePermission(ctx context.Context, roleIDs []string, module, action string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[module+":"+action], nil
}

func (f *fakeRoles) NamesForRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	return f.names, f.err
}

type fakeAudit struct {
	events []common_models.AuditAction
}

func (f *fakeAudit) LogAuthEvent(ctx context.Context, action common_models.AuditAction, actorID string, changes map[string]common_models.Change, path, method, ip string) error {
	f.events = append(f.events, action)
	return nil
}

type fixture struct {
	auth   *Auth
	tokens *token.Service
	user   *common_models.User
	users  *fakeUsers
	roles  *fakeRoles
	audit  *fakeAudit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens := token.NewService(token.Config{
		AccessSecret:  []byte("test-access"),
		RefreshSecret: []byte("test-refresh"),
	}, token.NewMemoryBlacklist())

	user := &common_models.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		IsActive: true,
		Roles:    []primitive.ObjectID{primitive.NewObjectID()},
	}

	users := &fakeUsers{user: user}
	roles := &fakeRoles{allowed: map[string]bool{}}
	sink := &fakeAudit{}

	auth := NewAuth(tokens, &fakeSessions{valid: true}, users, roles, sink, metrics.NewMetrics(), zap.NewNop(), false)

	return &fixture{auth: auth, tokens: tokens, user: user, users: users, roles: roles, audit: sink}
}

func (f *fixture) accessToken(t *testing.T) string {
	t.Helper()
	pair, err := f.tokens.GenerateTokens(f.user.ID.Hex(), f.user.Username, "Cashier")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	return pair.AccessToken
}

func performRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestAuthenticateErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(f *fixture, req *http.Request, t *testing.T)
		wantCode string
	}{
		{
			name:     "missing token",
			prepare:  func(f *fixture, req *http.Request, t *testing.T) {},
			wantCode: CodeTokenMissing,
		},
		{
			name: "blacklisted token",
			prepare: func(f *fixture, req *http.Request, t *testing.T) {
				tok := f.accessToken(t)
				if err := f.tokens.Blacklist().Add(context.Background(), tok); err != nil {
					t.Fatalf("blacklist add: %v", err)
				}
				req.Header.Set("Authorization", "Bearer "+tok)
			},
			wantCode: CodeTokenBlacklisted,
		},
		{
			name: "malformed token",
			prepare: func(f *fixture, req *http.Request, t *testing.T) {
				req.Header.Set("Authorization", "Bearer notajwt")
			},
			wantCode: CodeTokenMalformed,
		},
		{
			name: "tampered token",
			prepare: func(f *fixture, req *http.Request, t *testing.T) {
				tok := f.accessToken(t)
				req.Header.Set("Authorization", "Bearer "+tok[:len(tok)-4]+"AAAA")
			},
			wantCode: CodeTokenInvalid,
		},
		{
			name: "user not found",
			prepare: func(f *fixture, req *http.Request, t *testing.T) {
				req.Header.Set("Authorization", "Bearer "+f.accessToken(t))
				f.users.user = nil
				f.users.err = errors.New("not found")
			},
			wantCode: CodeUserNotFound,
		},
		{
			name: "inactive user",
			prepare: func(f *fixture, req *http.Request, t *testing.T) {
				req.Header.Set("Authorization", "Bearer "+f.accessToken(t))
				f.user.IsActive = false
			},
			wantCode: CodeUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			app := fiber.New()
			app.Get("/protected", f.auth.Authenticate(), func(c *fiber.Ctx) error {
				return c.SendString("ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.prepare(f, req, t)

			resp, body := performRequest(t, app, req)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
			if got, _ := body["errorCode"].(string); got != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, got)
			}
			if len(f.audit.events) == 0 || f.audit.events[len(f.audit.events)-1] != common_models.AuditActionAuthFailure {
				t.Error("expected an authentication_failure audit event")
			}
		})
	}
}

func TestAuthenticateHappyPath(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()

	var gotClaims *token.Claims
	var gotUser *common_models.User
	app.Get("/protected", f.auth.Authenticate(), func(c *fiber.Ctx) error {
		gotClaims, _ = c.Locals(common_models.ClaimsKey).(*token.Claims)
		gotUser, _ = c.Locals(common_models.AuthUserKey).(*common_models.User)
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t))

	resp, _ := performRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotClaims == nil || gotClaims.UserID != f.user.ID.Hex() {
		t.Error("claims not attached to the request")
	}
	if gotUser == nil || gotUser.ID != f.user.ID {
		t.Error("user not attached to the request")
	}
	if len(f.audit.events) == 0 || f.audit.events[0] != common_models.AuditActionAuthSuccess {
		t.Error("expected an authentication_success audit event")
	}
}

func TestAuthenticateTokenFromCookie(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	app.Get("/protected", f.auth.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieAuthToken, Value: f.accessToken(t)})

	resp, _ := performRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateSessionCookie(t *testing.T) {
	f := newFixture(t)
	f.auth.sessions = &fakeSessions{valid: false}

	app := fiber.New()
	app.Get("/protected", f.auth.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// Expired session cookie fails the request.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t))
	req.AddCookie(&http.Cookie{Name: token.CookieSessionID, Value: "stale"})

	resp, body := performRequest(t, app, req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if got, _ := body["errorCode"].(string); got != CodeSessionExpired {
		t.Errorf("expected %s, got %s", CodeSessionExpired, got)
	}

	// No session cookie at all is tolerated.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t))

	resp, _ = performRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token without session cookie: expected 200, got %d", resp.StatusCode)
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		allowed    map[string]bool
		checkErr   error
		wantStatus int
	}{
		{
			name:       "granted",
			allowed:    map[string]bool{"sales:view": true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "denied",
			allowed:    map[string]bool{},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "lookup error",
			checkErr:   errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.roles.allowed = tt.allowed
			f.roles.err = tt.checkErr

			app := fiber.New()
			app.Get("/sales", f.auth.Authenticate(), f.auth.RequirePermission("sales", "view"), func(c *fiber.Ctx) error {
				return c.SendString("ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/sales", nil)
			req.Header.Set("Authorization", "Bearer "+f.accessToken(t))

			resp, _ := performRequest(t, app, req)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestRequirePermissionWithoutAuthenticate(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	app.Get("/sales", f.auth.RequirePermission("sales", "view"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, body := performRequest(t, app, httptest.NewRequest(http.MethodGet, "/sales", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if got, _ := body["errorCode"].(string); got != CodeUnauthorized {
		t.Errorf("expected %s, got %s", CodeUnauthorized, got)
	}
}

func TestRequireAnyPermission(t *testing.T) {
	f := newFixture(t)
	f.roles.allowed = map[string]bool{"reports:view": true}

	app := fiber.New()
	app.Get("/reports", f.auth.Authenticate(), f.auth.RequireAnyPermission(
		Permission{Module: "settings", Action: "view"},
		Permission{Module: "reports", Action: "view"},
	), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t))

	resp, _ := performRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name       string
		roleNames  []string
		required   []string
		wantStatus int
	}{
		{
			name:       "member",
			roleNames:  []string{"Cashier"},
			required:   []string{"Cashier", "Manager"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "administrator bypass",
			roleNames:  []string{"Administrator"},
			required:   []string{"Manager"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not a member",
			roleNames:  []string{"Cashier"},
			required:   []string{"Manager"},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.roles.names = tt.roleNames

			app := fiber.New()
			app.Get("/admin", f.auth.Authenticate(), f.auth.RequireRoles(tt.required...), func(c *fiber.Ctx) error {
				return c.SendString("ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+f.accessToken(t))

			resp, _ := performRequest(t, app, req)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestSkipAuthBypassesEverything(t *testing.T) {
	f := newFixture(t)
	f.auth.skipAuth = true

	app := fiber.New()
	app.Get("/protected", f.auth.Authenticate(), f.auth.RequirePermission("settings", "delete"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, _ := performRequest(t, app, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
