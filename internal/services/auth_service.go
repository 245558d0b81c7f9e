package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"neuroclinic-server/internal/config"
	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
	"neuroclinic-server/internal/utils"
)

type AuthService struct {
	base
	cfg *config.Config
}

// Session is returned on login and refresh.
type Session struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// ProfileUpdate carries the self-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	access, refresh, err := utils.GenerateTokens(user, s.cfg)
	if err != nil {
		return nil, err
	}
	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(time.Duration(s.cfg.JWTRefreshExpirationHours) * time.Hour),
	}
	if err := s.store.RefreshTokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user.Sanitize()}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (_ *Session, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	user, err := s.store.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.CheckPassword(password) {
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		s.log.Error("issuing session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	s.metrics.IncLogin("success")
	return session, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := utils.ValidateToken(refreshToken, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := s.store.RefreshTokens.FindActive(ctx, refreshToken, claims.UserID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("checking refresh token: %w", err)
	}

	user, err := s.store.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	// Only the caller that flips the token to revoked gets a new pair.
	revoked, err := s.store.RefreshTokens.Revoke(ctx, refreshToken, s.now())
	if err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}
	if !revoked {
		return nil, ErrInvalidToken
	}
	return s.issue(ctx, user)
}

// Logout revokes the refresh token. Unknown tokens are accepted silently.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.store.RefreshTokens.Revoke(ctx, refreshToken, s.now()); err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.Users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) != "" {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) != "" {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return invalid("newPassword must be at least 8 characters")
	}
	if err := user.SetPassword(next); err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.store.Users.Update(ctx, user)
}
