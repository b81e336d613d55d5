package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item sold through the storefront.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name" binding:"required"`
	Description *string         `json:"description,omitempty" db:"description"`
	Category    *string         `json:"category,omitempty" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// InventoryItem is the per-product stock record. Exactly one exists per
// product. StockQuantity is a cached projection of the movement ledger and
// must only change through the movement-application procedure.
type InventoryItem struct {
	ID            int64     `json:"id" db:"id"`
	ProductID     int64     `json:"product_id" db:"product_id"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	ReorderLevel  int       `json:"reorder_level" db:"reorder_level"`
	Unit          string    `json:"unit" db:"unit"`
	SKU           *string   `json:"sku,omitempty" db:"sku"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	Product       *Product  `json:"product,omitempty"`
}

// StockMovement is one immutable entry of the movement ledger: a signed
// stock delta tied to a product, with a reason and an optional reference
// (e.g. the order that caused it). Entries are never updated or deleted.
type StockMovement struct {
	ID          int64     `json:"id" db:"id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Reason      string    `json:"reason" db:"reason"`
	ReferenceID *int64    `json:"reference_id,omitempty" db:"reference_id"`
	Note        string    `json:"note" db:"note"`
	ActorID     int64     `json:"actor_id" db:"actor_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Product     *Product  `json:"product,omitempty"`
}

// MovementFilters defines the available filters for querying the ledger.
type MovementFilters struct {
	ProductID *int64  `form:"product_id"`
	ActorID   *int64  `form:"actor_id"`
	Reason    *string `form:"reason"`
	StartDate *string `form:"start_date"` // YYYY-MM-DD
	EndDate   *string `form:"end_date"`   // YYYY-MM-DD
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
