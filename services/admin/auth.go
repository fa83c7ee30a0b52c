package admin

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"studiobook/models"
	"studiobook/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig describes the single studio operator account.
type AuthConfig struct {
	Email        string
	PasswordHash string // bcrypt
	JWTSecret    string
	TokenTTL     time.Duration
}

// AuthService issues and verifies operator session tokens.
type AuthService struct {
	cfg    AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(cfg AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	return &AuthService{cfg: cfg, logger: logger, now: time.Now}
}

// Login checks the credentials and returns a signed token. Every failure
// looks the same to the caller.
func (s *AuthService) Login(_ context.Context, email, password string) (*models.LoginResponse, error) {
	invalid := models.NewUnauthorizedError("invalid email or password")
	if s.cfg.Email == "" || s.cfg.PasswordHash == "" {
		s.logger.Warn("Operator login attempted but no operator account is configured")
		return nil, invalid
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(s.cfg.Email)),
	) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password))
	if !emailOK || passwordErr != nil {
		s.logger.Info("Operator login rejected", zap.String("email", email))
		return nil, invalid
	}

	now := s.now()
	token, err := utils.GenerateToken([]byte(s.cfg.JWTSecret), s.cfg.Email, models.RoleOperator, s.cfg.TokenTTL, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Operator logged in", zap.String("email", s.cfg.Email), zap.String("token", utils.HashToken(token)[:12]))
	return &models.LoginResponse{Token: token, ExpiresAt: now.Add(s.cfg.TokenTTL).UTC()}, nil
}

// Authenticate turns a bearer token into an operator.
func (s *AuthService) Authenticate(token string) (*models.Operator, error) {
	claims, err := utils.ValidateToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return nil, models.NewUnauthorizedError("invalid or expired token")
	}
	op := &models.Operator{Email: claims.Subject, Role: claims.Role, ExpiresAt: claims.ExpiresAt}
	if !op.IsOperator() {
		return nil, models.NewUnauthorizedError("operator role required")
	}
	return op, nil
}
