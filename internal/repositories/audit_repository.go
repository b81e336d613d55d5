package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mealflow_backend/internal/models"
)

// AuditRepository defines the interface for the append-only audit trail.
type AuditRepository interface {
	CreateEntry(executor SQLExecutor, entry *models.AuditEntry) (int64, error)
	GetEntries(entityType *string, actorID *int64, page, pageSize int) ([]models.AuditEntry, int, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateEntry(executor SQLExecutor, entry *models.AuditEntry) (int64, error) {
	query := `INSERT INTO audit_log (actor_id, action, entity_type, entity_id, details, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	details := entry.Details
	if details == nil {
		details = []byte("{}")
	}

	err := executor.QueryRow(query,
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, []byte(details), entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating audit entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *auditRepository) GetEntries(entityType *string, actorID *int64, page, pageSize int) ([]models.AuditEntry, int, error) {
	entries := []models.AuditEntry{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, actor_id, action, entity_type, entity_id, details, created_at,
	    COUNT(*) OVER() AS total_count
	  FROM audit_log`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if entityType != nil && *entityType != "" {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", argCount))
		args = append(args, *entityType)
		argCount++
	}
	if actorID != nil {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argCount))
		args = append(args, *actorID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting audit entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.AuditEntry
		var details []byte
		if err := rows.Scan(
			&entry.ID, &entry.ActorID, &entry.Action, &entry.EntityType, &entry.EntityID,
			&details, &entry.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning audit entry: %v", ErrDatabaseError, err)
		}
		entry.Details = details
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating audit entries: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}
