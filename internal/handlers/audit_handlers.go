package handlers

import (
	"net/http"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuditHandler holds the audit service.
type AuditHandler struct {
	auditService services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(as services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: as}
}

// GetEntries handles reading the audit trail with filters.
func (h *AuditHandler) GetEntries(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var entityType *string
	if entityTypeStr := c.Query("entity_type"); entityTypeStr != "" {
		entityType = &entityTypeStr
	}
	var actorID *int64
	if actorIDStr := c.Query("actor_id"); actorIDStr != "" {
		id, err := utils.StrToInt64(actorIDStr)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid actor_id query parameter.")
			return
		}
		actorID = &id
	}
	page := utils.StrToInt(c.Query("page"), 1)
	pageSize := utils.StrToInt(c.Query("page_size"), 20)

	entries, totalCount, err := h.auditService.GetEntries(entityType, actorID, page, pageSize, actor)
	if err != nil {
		respondServiceError(c, err, "GetEntries: Error from auditService.GetEntries")
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      entries,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}
