package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"mealflow_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ReportRepository holds the read-only queries behind the attention feed and
// the KPI rollups. These run without locks and may race with mutations;
// read-committed snapshots are good enough for dashboards.
type ReportRepository interface {
	// GetInventoryLevels returns every inventory record with its threshold.
	// The caller compares quantity against the reorder level; the query
	// deliberately does no field-to-field comparison itself.
	GetInventoryLevels() ([]models.LowStockItem, error)
	GetOrdersByStatus(status string) ([]models.Order, error)
	GetDailySales(since time.Time) ([]models.DailySalesPoint, error)
	GetTopProducts(since time.Time, limit int) ([]models.TopProductItem, error)
	GetMovementTotals(since time.Time) ([]models.StockFlowItem, error)
	CountOrdersInStatuses(statuses []string) (int, error)
	GetDeliveredBetween(start, end time.Time) (int, decimal.Decimal, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetInventoryLevels() ([]models.LowStockItem, error) {
	levels := []models.LowStockItem{}
	query := `SELECT i.id, i.product_id, p.name, i.sku, i.stock_quantity, i.reorder_level, i.unit, i.updated_at
	          FROM inventory_items i
	          JOIN products p ON i.product_id = p.id
	          ORDER BY i.stock_quantity ASC, p.name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying inventory levels: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var level models.LowStockItem
		if err := rows.Scan(
			&level.InventoryID, &level.ProductID, &level.ProductName, &level.SKU,
			&level.StockQuantity, &level.ReorderLevel, &level.Unit, &level.LastChangeAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning inventory level: %v", ErrDatabaseError, err)
		}
		levels = append(levels, level)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating inventory levels: %v", ErrDatabaseError, err)
	}
	return levels, nil
}

func (r *reportRepository) GetOrdersByStatus(status string) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT id, order_number, customer_name, status, total_amount, created_at, updated_at
	          FROM orders
	          WHERE status = $1
	          ORDER BY updated_at DESC`
	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("%w: querying orders by status %s: %v", ErrDatabaseError, status, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning order by status: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating orders by status: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func (r *reportRepository) GetDailySales(since time.Time) ([]models.DailySalesPoint, error) {
	points := []models.DailySalesPoint{}
	query := `SELECT TO_CHAR(created_at, 'YYYY-MM-DD') AS report_date,
	                 COUNT(*) AS order_count,
	                 COALESCE(SUM(total_amount), 0) AS revenue
	          FROM orders
	          WHERE status <> 'CANCELLED' AND created_at >= $1
	          GROUP BY report_date
	          ORDER BY report_date`
	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("%w: querying daily sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.DailySalesPoint
		if err := rows.Scan(&p.Date, &p.OrderCount, &p.Revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning daily sales: %v", ErrDatabaseError, err)
		}
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating daily sales: %v", ErrDatabaseError, err)
	}
	return points, nil
}

func (r *reportRepository) GetTopProducts(since time.Time, limit int) ([]models.TopProductItem, error) {
	items := []models.TopProductItem{}
	query := `SELECT oi.product_id, p.name,
	                 COUNT(DISTINCT o.id) AS order_count,
	                 COALESCE(SUM(oi.quantity), 0) AS quantity_sold
	          FROM order_items oi
	          JOIN orders o ON oi.order_id = o.id
	          JOIN products p ON oi.product_id = p.id
	          WHERE o.status <> 'CANCELLED' AND o.created_at >= $1
	          GROUP BY oi.product_id, p.name
	          ORDER BY order_count DESC, quantity_sold DESC
	          LIMIT $2`
	rows, err := r.db.Query(query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying top products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.TopProductItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.OrderCount, &item.QuantitySold); err != nil {
			return nil, fmt.Errorf("%w: scanning top product: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating top products: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *reportRepository) GetMovementTotals(since time.Time) ([]models.StockFlowItem, error) {
	items := []models.StockFlowItem{}
	query := `SELECT reason,
	                 COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) AS stock_in,
	                 COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) AS stock_out
	          FROM stock_movements
	          WHERE created_at >= $1
	          GROUP BY reason
	          ORDER BY reason`
	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("%w: querying movement totals: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.StockFlowItem
		if err := rows.Scan(&item.Reason, &item.StockIn, &item.StockOut); err != nil {
			return nil, fmt.Errorf("%w: scanning movement totals: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating movement totals: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *reportRepository) CountOrdersInStatuses(statuses []string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE status = ANY($1)`
	if err := r.db.QueryRow(query, pq.Array(statuses)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting orders by statuses: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *reportRepository) GetDeliveredBetween(start, end time.Time) (int, decimal.Decimal, error) {
	var count int
	var revenue decimal.Decimal
	query := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
	          FROM orders
	          WHERE status = 'DELIVERED' AND updated_at BETWEEN $1 AND $2`
	if err := r.db.QueryRow(query, start, end).Scan(&count, &revenue); err != nil {
		return 0, decimal.Zero, fmt.Errorf("%w: querying delivered orders: %v", ErrDatabaseError, err)
	}
	return count, revenue, nil
}
