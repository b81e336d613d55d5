package handlers

import (
	"errors"
	"net/http"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// currentActor pulls the authenticated user out of the gin context. The auth
// middleware sets userID and userRole on every protected route.
func currentActor(c *gin.Context) (models.Actor, bool) {
	userIDRaw, exists := c.Get("userID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", nil))
		return models.Actor{}, false
	}
	userID, ok := userIDRaw.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", nil))
		return models.Actor{}, false
	}

	roleRaw, exists := c.Get("userRole")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User role missing.", nil))
		return models.Actor{}, false
	}
	role, ok := roleRaw.(string)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User role missing.", nil))
		return models.Actor{}, false
	}

	return models.Actor{ID: userID, Role: role}, true
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" path parameter.", nil))
		return 0, false
	}
	return id, true
}

// respondServiceError translates service layer errors into API responses.
// Typed errors carry structured details; sentinel errors map to plain codes.
func respondServiceError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Invalid status transition.", gin.H{
			"current_status":   transitionErr.CurrentStatus,
			"requested_status": transitionErr.RequestedStatus,
		}))
		return
	}
	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Insufficient stock.", gin.H{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		}))
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), nil))
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrInventoryNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil))
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), nil))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", nil))
	case errors.Is(err, services.ErrProductExists),
		errors.Is(err, services.ErrProductInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), nil))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", nil))
	}
}
