package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attention priorities, high to low.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Attention item kinds.
const (
	AttentionNewOrder   = "new_order"
	AttentionStaleOrder = "stale_order"
	AttentionLowStock   = "low_stock"
)

// AttentionItem is one entry of the combined operational attention feed.
type AttentionItem struct {
	Kind        string    `json:"kind"`
	Priority    string    `json:"priority"`
	Message     string    `json:"message"`
	ReferenceID int64     `json:"reference_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LowStockItem is an inventory record at or below its reorder level.
type LowStockItem struct {
	InventoryID   int64  `json:"inventory_id"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	SKU           *string `json:"sku,omitempty"`
	StockQuantity int    `json:"stock_quantity"`
	ReorderLevel  int    `json:"reorder_level"`
	Unit          string `json:"unit"`
	Priority      string `json:"priority"`
	LastChangeAt  time.Time `json:"last_change_at"`
}

// DailySalesPoint is one day of the orders/revenue trend.
type DailySalesPoint struct {
	Date       string          `json:"date"` // YYYY-MM-DD
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopProductItem ranks a product by how many orders included it.
type TopProductItem struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	OrderCount   int    `json:"order_count"`
	QuantitySold int    `json:"quantity_sold"`
}

// StockFlowItem sums ledger deltas for one reason code over a window,
// split into stock-in and stock-out totals.
type StockFlowItem struct {
	Reason   string `json:"reason"`
	StockIn  int    `json:"stock_in"`
	StockOut int    `json:"stock_out"`
}

// DashboardSummary holds key metrics for the back-office dashboard.
type DashboardSummary struct {
	NewOrdersCount      int             `json:"new_orders_count"`
	InProgressCount     int             `json:"in_progress_count"`
	DeliveredTodayCount int             `json:"delivered_today_count"`
	RevenueToday        decimal.Decimal `json:"revenue_today"`
	LowStockItemsCount  int             `json:"low_stock_items_count"`
}
