package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mealflow_backend/internal/models"

	"github.com/lib/pq"
)

// InventoryRepository defines the interface for inventory-record database
// operations. Stock quantities must only be written through the movement
// application procedure in the service layer.
type InventoryRepository interface {
	CreateInventoryItem(executor SQLExecutor, item *models.InventoryItem) (int64, error)
	GetByID(id int64) (*models.InventoryItem, error)
	// GetByProductIDForUpdate locks the product's inventory row for the
	// duration of the surrounding transaction. Concurrent movements against
	// the same record serialize here.
	GetByProductIDForUpdate(executor SQLExecutor, productID int64) (*models.InventoryItem, error)
	GetInventory(page, pageSize int) ([]models.InventoryItem, int, error)
	UpdateStockQuantity(executor SQLExecutor, id int64, newQuantity int, updatedAt time.Time) error
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateInventoryItem(executor SQLExecutor, item *models.InventoryItem) (int64, error) {
	query := `INSERT INTO inventory_items (product_id, stock_quantity, reorder_level, unit, sku, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.ProductID, item.StockQuantity, item.ReorderLevel, item.Unit, item.SKU, currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: inventory record for product %d already exists (constraint: %s)", ErrDuplicateKey, item.ProductID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating inventory record: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

const inventoryColumns = `id, product_id, stock_quantity, reorder_level, unit, sku, created_at, updated_at`

func scanInventoryItem(row *sql.Row, item *models.InventoryItem) error {
	return row.Scan(
		&item.ID, &item.ProductID, &item.StockQuantity, &item.ReorderLevel,
		&item.Unit, &item.SKU, &item.CreatedAt, &item.UpdatedAt,
	)
}

func (r *inventoryRepository) GetByID(id int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1`
	err := scanInventoryItem(r.db.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory record by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *inventoryRepository) GetByProductIDForUpdate(executor SQLExecutor, productID int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE product_id = $1 FOR UPDATE`
	err := scanInventoryItem(executor.QueryRow(query, productID), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking inventory record for product %d: %v", ErrDatabaseError, productID, err)
	}
	return item, nil
}

func (r *inventoryRepository) GetInventory(page, pageSize int) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	totalCount := 0
	query := `SELECT
	    i.id, i.product_id, i.stock_quantity, i.reorder_level, i.unit, i.sku, i.created_at, i.updated_at,
	    p.name AS product_name, p.is_available,
	    COUNT(*) OVER() AS total_count
	  FROM inventory_items i
	  JOIN products p ON i.product_id = p.id
	  ORDER BY p.name
	  LIMIT $1 OFFSET $2`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InventoryItem
		var productName string
		var isAvailable bool
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.StockQuantity, &item.ReorderLevel,
			&item.Unit, &item.SKU, &item.CreatedAt, &item.UpdatedAt,
			&productName, &isAvailable,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory record: %v", ErrDatabaseError, err)
		}
		item.Product = &models.Product{ID: item.ProductID, Name: productName, IsAvailable: isAvailable}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory records: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *inventoryRepository) UpdateStockQuantity(executor SQLExecutor, id int64, newQuantity int, updatedAt time.Time) error {
	query := `UPDATE inventory_items SET stock_quantity = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newQuantity, updatedAt, id)
	if err != nil {
		return fmt.Errorf("%w: updating stock for inventory record ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for stock update ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
