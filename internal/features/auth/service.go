package auth

import (
	"context"
	"errors"

	common_models "go-pos/internal/common/models"
	"go-pos/internal/features/audit"
	"go-pos/internal/features/role"
	"go-pos/internal/features/user"
	"go-pos/internal/session"
	"go-pos/pkg/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials deliberately covers both unknown username and
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

type LoginResult struct {
	User      *common_models.User
	RoleName  string
	Tokens    *token.Pair
	SessionID string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken, sessionID string) error
	Refresh(ctx context.Context, refreshToken string) (*token.Pair, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	RoleRepo     role.RoleRepository
	Tokens       *token.Service
	Sessions     *session.Store
	AuditService audit.AuditService
	Log          *zap.Logger
}

func NewAuthService(
	userRepo user.UserRepository,
	roleRepo role.RoleRepository,
	tokens *token.Service,
	sessions *session.Store,
	auditService audit.AuditService,
	log *zap.Logger,
) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		RoleRepo:     roleRepo,
		Tokens:       tokens,
		Sessions:     sessions,
		AuditService: auditService,
		Log:          log,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	usr, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return nil, ErrAccountInactive
	}

	roleName := s.primaryRoleName(ctx, usr)
	pair, err := s.Tokens.GenerateTokens(usr.ID.Hex(), usr.Username, roleName)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.Sessions.Create(ctx, usr.ID.Hex())
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(ctx, usr.ID); err != nil {
		s.Log.Warn("failed to update last login", zap.String("user", usr.ID.Hex()), zap.Error(err))
	}

	if err := s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "auth", usr.ID.Hex(), map[string]common_models.Change{
		"username": {To: usr.Username},
	}); err != nil {
		s.Log.Warn("audit write failed", zap.Error(err))
	}

	return &LoginResult{User: usr, RoleName: roleName, Tokens: pair, SessionID: sessionID}, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, accessToken, sessionID string) error {
	if accessToken != "" {
		if err := s.Tokens.Blacklist().Add(ctx, accessToken); err != nil {
			return err
		}
	}
	if sessionID != "" {
		if err := s.Sessions.Destroy(ctx, sessionID); err != nil {
			s.Log.Warn("failed to destroy session", zap.Error(err))
		}
	}
	return nil
}

func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	claims, err := s.Tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	usr, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, token.ErrInvalidRefreshToken
	}
	if !usr.IsActive {
		return nil, ErrAccountInactive
	}

	return s.Tokens.GenerateTokens(usr.ID.Hex(), usr.Username, s.primaryRoleName(ctx, usr))
}

// primaryRoleName resolves the first assigned role's name for the token
// payload. Users without roles get an empty role claim.
func (s *AuthServiceImpl) primaryRoleName(ctx context.Context, usr *common_models.User) string {
	if len(usr.Roles) == 0 {
		return ""
	}
	r, err := s.RoleRepo.FindByID(ctx, usr.Roles[0].Hex())
	if err != nil {
		return ""
	}
	return r.Name
}
