// Package service issues admin access tokens.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"terrasite_backend/internal/auth/password"
	"terrasite_backend/platform/apperr"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/httpkit"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AdminSubject is the token subject for the single site administrator.
	AdminSubject = "admin"
	// RoleAdmin grants access to /admin routes.
	RoleAdmin = "admin"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Неверный пароль")
	ErrLoginDisabled      = apperr.Forbidden("Вход администратора не настроен")
)

type Service struct {
	cfg config.AdminConfig
	now func() time.Time
}

func New(cfg config.AdminConfig) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// Login checks the admin password and returns a signed access token.
func (s *Service) Login(_ context.Context, plainPassword string) (string, time.Time, error) {
	if !s.cfg.IsAdminAuthEnabled() || strings.TrimSpace(s.cfg.GetAdminPasswordHash()) == "" {
		return "", time.Time{}, ErrLoginDisabled
	}

	if err := password.Compare(s.cfg.GetAdminPasswordHash(), plainPassword); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.IssueToken(AdminSubject, []string{RoleAdmin}, s.cfg.GetAdminTokenTTL())
}

// IssueToken signs an access token for subject. Used by Login and the ops CLI.
func (s *Service) IssueToken(subject string, roles []string, ttl time.Duration) (string, time.Time, error) {
	secret := s.cfg.GetAdminJWTSecret()
	if secret == "" {
		return "", time.Time{}, errors.New("admin jwt secret is not configured")
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   subject,
		"type":  httpkit.TokenTypeAccess,
		"roles": roles,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
