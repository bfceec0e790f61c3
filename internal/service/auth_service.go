package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService проверяет пароль организатора и выдает подписанные токены
// для админских маршрутов.
type AuthService struct {
	repo   domain.Repository
	cfg    config.AdminConfig
	logger *zerolog.Logger
}

func NewAuthService(repo domain.Repository, cfg config.AdminConfig, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// EnsureAdmin создает учетную запись из конфигурации при первом старте.
// Существующая запись никогда не перезаписывается.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	_, err := s.repo.GetAdminByUsername(ctx, s.cfg.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrAdminNotFound) {
		return err
	}

	if s.cfg.Password == "" {
		s.logger.Warn().Str("username", s.cfg.Username).
			Msg("admin account missing and no bootstrap password configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := s.repo.CreateAdmin(ctx, s.cfg.Username, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Str("username", s.cfg.Username).Msg("admin account created")
	return nil
}

// Login сверяет пароль и возвращает подписанный HS256 токен.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if errors.Is(err, database.ErrAdminNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   admin.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.TokenTTLMins) * time.Minute)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("admin logged in")
	return token, nil
}

// VerifyToken проверяет подпись и срок действия токена, возвращая имя
// учетной записи.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidCredentials
	}

	return claims.Subject, nil
}
