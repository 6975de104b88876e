// Package token issues, verifies and revokes the signed credentials the
// authorization middleware consumes. The service carries no package-level
// state: secrets and the blacklist are injected at construction.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers every access-token verification failure.
	// Expiry and tampering are deliberately indistinguishable to callers.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidRefreshToken is the refresh-token equivalent.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Claims is the access-token payload.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the narrower refresh-token payload.
type RefreshClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Pair bundles a freshly issued credential set. ExpiresIn mirrors the
// access token's exp claim so cookie max-age stays aligned with it.
type Pair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

// Config carries the signing material and lifetimes for a Service.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// SecureCookies toggles the Secure flag and strict SameSite on the
	// cookies the service writes. On in production.
	SecureCookies bool
}

// Service signs, verifies and blacklists tokens.
type Service struct {
	cfg       Config
	blacklist Blacklist
}

func NewService(cfg Config, blacklist Blacklist) *Service {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Service{cfg: cfg, blacklist: blacklist}
}

// Blacklist returns the revocation store the service was built with.
func (s *Service) Blacklist() Blacklist {
	return s.blacklist
}

// GenerateTokens issues an access/refresh pair for the given identity.
func (s *Service) GenerateTokens(userID, username, role string) (*Pair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTTL)

	accessClaims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			ID:        uuid.NewString(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	refreshClaims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
			ID:        uuid.NewString(),
		},
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    time.Until(accessExpiry),
	}, nil
}

// VerifyToken checks signature and expiry of an access token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.cfg.AccessSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token.
func (s *Service) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidRefreshToken
		}
		return s.cfg.RefreshSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}
	return claims, nil
}
