package handlers

import (
	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/config"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Auth *services.AuthService
	Cfg  *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Auth: auth, Cfg: cfg}
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(refreshCookie, token, maxAge, "/", "", h.Cfg.IsProduction(), true)
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The web client reads the cookie; mobile clients use the body.
	h.setRefreshCookie(c, session.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)
	utils.Success(c, "Login successful", session)
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// refreshTokenFrom prefers the HTTP-only cookie and falls back to the body.
func refreshTokenFrom(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(refreshCookie); err == nil && token != "" {
		return token, true
	}
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return "", false
	}
	return req.RefreshToken, true
}

// RefreshToken rotates the refresh token and issues a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := refreshTokenFrom(c)
	if !ok {
		return
	}

	session, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)
	utils.Success(c, "Access token refreshed successfully", session)
}

// Logout revokes the refresh token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := refreshTokenFrom(c)
	if !ok {
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}

	h.setRefreshCookie(c, "", -1)
	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	user, err := h.Auth.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,url"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Auth.UpdateProfile(c.Request.Context(), actor.UserID, services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Password updated successfully", nil)
}
