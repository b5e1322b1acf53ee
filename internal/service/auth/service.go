package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecovolt-ph/ecovolt-backend/internal/config"
	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
	"github.com/ecovolt-ph/ecovolt-backend/internal/repository/mongodb"
)

const defaultRole = "Operator"

// Claims carried inside an access token.
type Claims struct {
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// Service handles accounts, sessions and profile maintenance.
type Service struct {
	store  mongodb.UserStore
	cfg    config.AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new auth service instance.
func NewService(store mongodb.UserStore, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a new operator account.
func (s *Service) Register(ctx context.Context, email, password, displayName, phone string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, models.NewValidationError("a valid email is required")
	}
	if len(password) < 8 {
		return models.User{}, models.NewValidationError("password must be at least 8 characters")
	}
	if displayName == "" {
		return models.User{}, models.NewValidationError("display name is required")
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return models.User{}, models.NewValidationError("email is already in use")
	} else {
		var nfErr *models.NotFoundError
		if !errors.As(err, &nfErr) {
			return models.User{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Phone:        strings.TrimSpace(phone),
		Role:         defaultRole,
		CreatedAt:    s.now().UTC(),
	}
	created, err := s.store.InsertUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user registered", zap.String("email", email))
	return created, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		var nfErr *models.NotFoundError
		if errors.As(err, &nfErr) {
			return "", models.User{}, models.NewValidationError("invalid email or password")
		}
		return "", models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, models.NewValidationError("invalid email or password")
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", models.User{}, err
	}

	s.logger.Info("user logged in", zap.String("email", email))
	return token, user, nil
}

// RequestPasswordReset issues a single-use reset token for the account. The
// token is returned to the caller for delivery; an unknown email yields a
// NotFoundError the handler masks to avoid account probing.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (models.PasswordResetToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return models.PasswordResetToken{}, err
	}

	token := models.PasswordResetToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(s.cfg.ResetTTL),
	}
	if err := s.store.SaveResetToken(ctx, token); err != nil {
		return models.PasswordResetToken{}, err
	}

	s.logger.Info("password reset requested", zap.String("email", email))
	return token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return models.NewValidationError("password must be at least 8 characters")
	}

	stored, err := s.store.TakeResetToken(ctx, token)
	if err != nil {
		var nfErr *models.NotFoundError
		if errors.As(err, &nfErr) {
			return models.NewValidationError("invalid or expired reset token")
		}
		return err
	}
	if stored.Expired(s.now().UTC()) {
		return models.NewValidationError("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, stored.UserID, string(hash))
}

// Profile loads the account behind a user id.
func (s *Service) Profile(ctx context.Context, userID string) (models.User, error) {
	return s.store.FindUserByID(ctx, userID)
}

// UpdateProfile sets display name and phone.
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName, phone string) (models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return models.User{}, models.NewValidationError("display name is required")
	}
	if err := s.store.UpdateUserProfile(ctx, userID, displayName, strings.TrimSpace(phone)); err != nil {
		return models.User{}, err
	}
	return s.store.FindUserByID(ctx, userID)
}

// ChangePassword reauthenticates with the current password before replacing
// it, mirroring the dashboard's settings pane.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return models.NewValidationError("password must be at least 8 characters")
	}

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return models.NewValidationError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, userID, string(hash))
}

// VerifyToken parses and validates an access token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *Service) generateAccessToken(user models.User) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
