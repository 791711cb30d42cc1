// Package security implements authentication: credential checks, signed
// session tokens, and server-side session registration so logout and
// account deletion revoke tokens before they expire.
package security

import (
	"context"
	"time"

	"github.com/cocinadelpatito/v1/internal/domain/user"
	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	apperrors "github.com/cocinadelpatito/v1/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      inbound.ProfileDTO `json:"user"`
}

// SessionClaims identifies an authenticated caller after token validation.
type SessionClaims struct {
	UserID    uuid.UUID
	SessionID string
}

// AuthService issues and validates session tokens. Tokens are HS256 JWTs
// whose jti is registered in the session store; a token is only accepted
// while its session registration exists.
type AuthService struct {
	users    outbound.UserRepository
	sessions outbound.SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users outbound.UserRepository,
	sessions outbound.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(cfg.Auth.SessionSecret),
		ttl:      cfg.Auth.SessionTTL,
		logger:   logger.Named("auth-service"),
	}
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find user by email", err)
	}
	if existing != nil {
		return nil, apperrors.NewEmailAlreadyExistsError(email)
	}

	entity, err := user.NewUser(email, name, password)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.users.Create(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", entity.ID().String()),
		zap.String("email", entity.Email()),
	)

	return s.openSession(ctx, entity)
}

// Login verifies credentials and opens a session. A missing account and
// a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	entity, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find user by email", err)
	}
	if entity == nil || !entity.CheckPassword(password) {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	s.logger.Info("user logged in", zap.String("user_id", entity.ID().String()))
	return s.openSession(ctx, entity)
}

// Logout revokes the session carried by the token. An already-invalid
// token is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID, claims.UserID); err != nil {
		return apperrors.NewDatabaseError("revoke session", err)
	}
	return nil
}

// ValidateToken verifies the token signature and expiry and returns its
// claims. It does not consult the session store; middleware does that.
func (s *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewUnauthenticatedError("Invalid or expired session token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, apperrors.NewUnauthenticatedError("Invalid session token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperrors.NewUnauthenticatedError("Invalid session token subject")
	}

	return &SessionClaims{UserID: userID, SessionID: claims.ID}, nil
}

// IsSessionActive reports whether the session registration still exists.
func (s *AuthService) IsSessionActive(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.IsActive(ctx, sessionID)
}

func (s *AuthService) openSession(ctx context.Context, entity *user.User) (*AuthResult, error) {
	sessionID := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   entity.ID().String(),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign session token")
	}

	if err := s.sessions.Register(ctx, sessionID, entity.ID(), s.ttl); err != nil {
		return nil, apperrors.NewDatabaseError("register session", err)
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: inbound.ProfileDTO{
			ID:    entity.ID(),
			Name:  entity.Name(),
			Email: entity.Email(),
			Image: entity.ImageURL(),
			Bio:   entity.Bio(),
		},
	}, nil
}
