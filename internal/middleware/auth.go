package middleware

import (
	"context"
	"strings"

	common_models "go-pos/internal/common/models"
	"go-pos/internal/metrics"
	"go-pos/internal/session"
	"go-pos/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Authentication error codes returned in the 401 body.
const (
	CodeTokenMissing     = "TOKEN_MISSING"
	CodeTokenBlacklisted = "TOKEN_BLACKLISTED"
	CodeTokenMalformed   = "TOKEN_MALFORMED"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeUserInactive     = "USER_INACTIVE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInsufficientRole = "INSUFFICIENT_PERMISSIONS"
)

// UserFinder loads identity records for the authenticate stage.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*common_models.User, error)
}

// RoleService answers permission questions for the authorize stage.
type RoleService interface {
	CheckModulePermission(ctx context.Context, roleIDs []string, module, action string) (bool, error)
	NamesForRoles(ctx context.Context, roleIDs []string) ([]string, error)
}

// AuditSink receives authentication/authorization events. Failures are
// swallowed by the middleware; auditing never changes a request outcome.
type AuditSink interface {
	LogAuthEvent(ctx context.Context, action common_models.AuditAction, actorID string, changes map[string]common_models.Change, path, method, ip string) error
}

// Auth bundles the dependencies of the two-stage request gate. It is
// constructed once and injected; there is no package-level state.
type Auth struct {
	tokens   *token.Service
	sessions session.Validator
	users    UserFinder
	roles    RoleService
	audit    AuditSink
	metrics  *metrics.Metrics
	log      *zap.Logger
	skipAuth bool
}

func NewAuth(
	tokens *token.Service,
	sessions session.Validator,
	users UserFinder,
	roles RoleService,
	audit AuditSink,
	m *metrics.Metrics,
	log *zap.Logger,
	skipAuth bool,
) *Auth {
	return &Auth{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		roles:    roles,
		audit:    audit,
		metrics:  m,
		log:      log,
		skipAuth: skipAuth,
	}
}

// Authenticate validates the request's credentials and attaches the user
// to the request context. Stage A of the gate; RequirePermission and
// friends assume it ran first.
func (a *Auth) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.skipAuth {
			return c.Next()
		}

		tok := token.FromRequest(c)
		if tok == "" {
			return a.failAuth(c, CodeTokenMissing, "Authentication required")
		}

		blacklisted, err := a.tokens.Blacklist().Contains(c.Context(), tok)
		if err != nil {
			a.log.Warn("blacklist lookup failed", zap.Error(err))
		}
		if blacklisted {
			return a.failAuth(c, CodeTokenBlacklisted, "Token has been revoked")
		}

		claims, err := a.tokens.VerifyToken(tok)
		if err != nil {
			code := CodeTokenInvalid
			if strings.Count(tok, ".") != 2 {
				code = CodeTokenMalformed
			}
			return a.failAuth(c, code, "Invalid or expired token")
		}

		// A session cookie is validated when present; its absence is
		// tolerated. Asymmetric on purpose, do not change silently.
		if sid := c.Cookies(token.CookieSessionID); sid != "" {
			valid, err := a.sessions.Validate(c.Context(), sid)
			if err != nil || !valid {
				return a.failAuth(c, CodeSessionExpired, "Session expired")
			}
		}

		user, err := a.users.FindByID(c.Context(), claims.UserID)
		if err != nil || user == nil {
			return a.failAuth(c, CodeUserNotFound, "User not found")
		}
		if !user.IsActive {
			return a.failAuth(c, CodeUserInactive, "Account is inactive")
		}

		c.Locals(common_models.ClaimsKey, claims)
		c.Locals(common_models.AuthUserKey, user)

		a.metrics.AuthSuccess.Inc()
		a.emitAuthEvent(c, common_models.AuditActionAuthSuccess, user.ID.Hex(), nil)

		return c.Next()
	}
}

// failAuth responds 401 and records the failure. The raw token is never
// written anywhere; the audit entry only notes that one was present.
func (a *Auth) failAuth(c *fiber.Ctx, code, message string) error {
	a.metrics.AuthFailure.WithLabelValues(code).Inc()
	a.emitAuthEvent(c, common_models.AuditActionAuthFailure, "", map[string]common_models.Change{
		"error":         {To: message},
		"error_code":    {To: code},
		"token_present": {To: token.FromRequest(c) != ""},
	})

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":     message,
		"errorCode": code,
	})
}

func (a *Auth) emitAuthEvent(c *fiber.Ctx, action common_models.AuditAction, actorID string, changes map[string]common_models.Change) {
	err := a.audit.LogAuthEvent(c.Context(), action, actorID, changes, c.Path(), c.Method(), c.IP())
	if err != nil {
		a.log.Warn("audit log write failed", zap.String("action", string(action)), zap.Error(err))
	}
}
