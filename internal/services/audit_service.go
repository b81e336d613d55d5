package services

import (
	"fmt"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/repositories"
)

// --- AuditService Interface ---
type AuditService interface {
	GetEntries(entityType *string, actorID *int64, page, pageSize int, actor models.Actor) ([]models.AuditEntry, int, error)
}

// --- auditService Implementation ---
type auditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new instance of AuditService.
func NewAuditService(ar repositories.AuditRepository) AuditService {
	return &auditService{auditRepo: ar}
}

// GetEntries returns the audit trail, newest first. Reading the trail is
// restricted to admins.
func (s *auditService) GetEntries(entityType *string, actorID *int64, page, pageSize int, actor models.Actor) ([]models.AuditEntry, int, error) {
	if !actor.HasAnyRole(models.RoleAdmin) {
		return nil, 0, fmt.Errorf("%w: only admins may read the audit trail", ErrUnauthorized)
	}
	if entityType != nil && *entityType != "" {
		switch *entityType {
		case models.EntityOrder, models.EntityInventory, models.EntityProduct:
		default:
			return nil, 0, fmt.Errorf("%w: unknown entity type %q", ErrValidation, *entityType)
		}
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	entries, totalCount, err := s.auditRepo.GetEntries(entityType, actorID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get audit entries: %w", err)
	}
	return entries, totalCount, nil
}
