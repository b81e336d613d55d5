package models

import (
	"encoding/json"
	"time"
)

// Audit action codes.
const (
	ActionOrderStatusChanged = "ORDER_STATUS_CHANGED"
	ActionStockMovement      = "STOCK_MOVEMENT_RECORDED"
	ActionProductCreated     = "PRODUCT_CREATED"
	ActionProductUpdated     = "PRODUCT_UPDATED"
	ActionProductDeleted     = "PRODUCT_DELETED"
)

// Audited entity types.
const (
	EntityOrder     = "order"
	EntityInventory = "inventory_item"
	EntityProduct   = "product"
)

// AuditEntry tracks who did what, to which entity, and when. Details holds a
// serialized JSON payload with the before/after values relevant to the action.
type AuditEntry struct {
	ID         int64           `json:"id" db:"id"`
	ActorID    int64           `json:"actor_id" db:"actor_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   int64           `json:"entity_id" db:"entity_id"`
	Details    json.RawMessage `json:"details" db:"details"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
