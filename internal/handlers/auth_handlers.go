package handlers

import (
	"net/http"

	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	authResp, err := h.authService.Login(req)
	if err != nil {
		respondServiceError(c, err, "Login: Error from authService.Login")
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(actor.ID)
	if err != nil {
		respondServiceError(c, err, "GetCurrentUser: Error from authService.GetProfile")
		return
	}
	c.JSON(http.StatusOK, user)
}
