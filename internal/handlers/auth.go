package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salin-system/internal/database/models"
	"salin-system/internal/services/profiles"
	"salin-system/internal/utils"
)

// AuthHandler exchanges an identity-provider assertion for an API token.
// Upstream authentication itself (OAuth redirect/refresh) lives outside this
// service; the exchange trusts the verified identity it is handed.
type AuthHandler struct {
	profiles *profiles.Service
}

func NewAuthHandler(profileService *profiles.Service) *AuthHandler {
	return &AuthHandler{profiles: profileService}
}

type TokenRequest struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	Email     string `json:"email" binding:"omitempty,email"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	token, exp, err := utils.GenerateToken(req.UserID, req.Email, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Could not issue token"))
		return
	}

	// Profile sync happens off the request path; the task logs its own
	// failure if the write does not land.
	h.profiles.UpsertAsync(c.Request.Context(), models.UserProfile{
		UserID:              req.UserID,
		FullName:            nilIfEmpty(req.FullName),
		Email:               nilIfEmpty(req.Email),
		AvatarURL:           nilIfEmpty(req.AvatarURL),
		SocialLoginProvider: nilIfEmpty(req.Provider),
	})

	c.JSON(http.StatusOK, successResponse("Token issued", gin.H{
		"token":      token,
		"expires_at": exp,
	}))
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
