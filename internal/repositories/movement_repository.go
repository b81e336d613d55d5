package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mealflow_backend/internal/models"
)

// MovementRepository defines the interface for the append-only stock movement
// ledger. Entries are inserted exactly once and never updated or deleted;
// corrections are made by recording counter-movements.
type MovementRepository interface {
	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error)
	// SumByProductID recomputes the stock level for a product from the ledger.
	// The cached quantity on the inventory record must always equal this sum.
	SumByProductID(productID int64) (int, error)
}

type movementRepository struct {
	db *sql.DB
}

// NewMovementRepository creates a new instance of MovementRepository.
func NewMovementRepository(db *sql.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements
	          (product_id, quantity, reason, reference_id, note, actor_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}

	var referenceID sql.NullInt64
	if movement.ReferenceID != nil {
		referenceID = sql.NullInt64{Int64: *movement.ReferenceID, Valid: true}
	}

	err := executor.QueryRow(query,
		movement.ProductID, movement.Quantity, movement.Reason, referenceID,
		movement.Note, movement.ActorID, movement.CreatedAt,
	).Scan(&movement.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *movementRepository) GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sm.id, sm.product_id, sm.quantity, sm.reason, sm.reference_id, sm.note, sm.actor_id, sm.created_at,
	    p.name AS product_name,
	    COUNT(*) OVER() AS total_count
	  FROM stock_movements sm
	  JOIN products p ON sm.product_id = p.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.product_id = $%d", argCount))
		args = append(args, *filters.ProductID)
		argCount++
	}
	if filters.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.actor_id = $%d", argCount))
		args = append(args, *filters.ActorID)
		argCount++
	}
	if filters.Reason != nil && *filters.Reason != "" {
		conditions = append(conditions, fmt.Sprintf("sm.reason = $%d", argCount))
		args = append(args, *filters.Reason)
		argCount++
	}
	if filters.StartDate != nil && *filters.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", *filters.StartDate)
		if err == nil {
			conditions = append(conditions, fmt.Sprintf("sm.created_at >= $%d", argCount))
			args = append(args, startDate)
			argCount++
		}
	}
	if filters.EndDate != nil && *filters.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", *filters.EndDate)
		if err == nil {
			conditions = append(conditions, fmt.Sprintf("sm.created_at <= $%d", argCount))
			args = append(args, endDate.AddDate(0, 0, 1).Add(-time.Nanosecond)) // End of day
			argCount++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY sm.created_at DESC, sm.id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.StockMovement
		var referenceID sql.NullInt64
		var productName string

		if err := rows.Scan(
			&movement.ID, &movement.ProductID, &movement.Quantity, &movement.Reason,
			&referenceID, &movement.Note, &movement.ActorID, &movement.CreatedAt,
			&productName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}

		if referenceID.Valid {
			movement.ReferenceID = &referenceID.Int64
		}
		movement.Product = &models.Product{ID: movement.ProductID, Name: productName}
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}

	return movements, totalCount, nil
}

func (r *movementRepository) SumByProductID(productID int64) (int, error) {
	var total int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE product_id = $1`
	if err := r.db.QueryRow(query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: summing ledger for product %d: %v", ErrDatabaseError, productID, err)
	}
	return total, nil
}
