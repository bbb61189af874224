package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cronify/config"
	"cronify/internal/logger"
	"cronify/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "cronify"
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	MaxPasswordLength = 72
)

type Claims struct {
	UserID    uuid.UUID `json:"uid"`
	SessionID string    `json:"sid"`
	jwt.RegisteredClaims
}

type IssuedToken struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// TokenValidator is what the auth middleware and the websocket handshake need.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

type AuthService struct {
	secret   []byte
	expiry   time.Duration
	sessions SessionStore
	now      func() time.Time
	log      logger.Logger
}

func NewAuthService(cfg config.Config, sessions SessionStore) *AuthService {
	return &AuthService{
		secret:   []byte(cfg.JWTSecret),
		expiry:   cfg.JWTExpiry,
		sessions: sessions,
		now:      time.Now,
		log:      logger.New("authService"),
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	log := s.log.Function("HashPassword")

	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", log.Err("failed to hash password", err)
	}
	return string(hash), nil
}

func (s *AuthService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least 8 characters", types.ErrValidation)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most 72 bytes", types.ErrValidation)
	}
	return nil
}

// IssueToken starts a session for userID and signs a token bound to it.
func (s *AuthService) IssueToken(ctx context.Context, userID uuid.UUID) (*IssuedToken, error) {
	log := s.log.TraceFromContext(ctx).Function("IssueToken")

	now := s.now().UTC()
	sessionID := uuid.NewString()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, log.Err("failed to sign token", err, "userID", userID)
	}

	if err := s.sessions.Save(ctx, sessionID, userID, s.expiry); err != nil {
		return nil, log.Err("failed to store session", err, "userID", userID)
	}

	return &IssuedToken{Token: signed, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// ValidateToken checks the signature, expiry and that the session is still
// live.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	log := s.log.TraceFromContext(ctx).Function("ValidateToken")

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token required", types.ErrUnauthorized)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		log.Debug("token rejected", "error", err)
		return nil, fmt.Errorf("%w: invalid token", types.ErrUnauthorized)
	}

	userID, found, err := s.sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		return nil, log.Err("failed to load session", err, "userID", claims.UserID)
	}
	if !found || userID != claims.UserID {
		return nil, fmt.Errorf("%w: session expired", types.ErrUnauthorized)
	}

	return claims, nil
}

func (s *AuthService) RevokeSession(ctx context.Context, claims *Claims) error {
	log := s.log.TraceFromContext(ctx).Function("RevokeSession")

	if err := s.sessions.Delete(ctx, claims.SessionID, claims.UserID); err != nil {
		return log.Err("failed to revoke session", err, "userID", claims.UserID)
	}
	return nil
}

func (s *AuthService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	log := s.log.TraceFromContext(ctx).Function("RevokeAllSessions")

	if err := s.sessions.DeleteAll(ctx, userID); err != nil {
		return log.Err("failed to revoke sessions", err, "userID", userID)
	}
	return nil
}
