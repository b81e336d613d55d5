package services

import (
	"testing"

	"mealflow_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMovementRejectsZeroQuantity(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	svc := newTestInventoryService(store)

	_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: 0, Reason: ReasonManualAdjustment, Note: "recount",
	}, staffActor)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.committed.movements)
}

func TestRecordMovementRequiresNote(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	svc := newTestInventoryService(store)

	_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: -1, Reason: ReasonWastage, Note: "   ",
	}, staffActor)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordMovementRejectsUnknownReason(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	svc := newTestInventoryService(store)

	_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: 5, Reason: "theft", Note: "missing crate",
	}, staffActor)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordMovementUnknownInventoryID(t *testing.T) {
	store := newFakeStore()
	svc := newTestInventoryService(store)

	_, _, err := svc.RecordMovement(4242, RecordMovementRequest{
		Quantity: 5, Reason: ReasonPurchaseReceived, Note: "delivery",
	}, staffActor)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestRecordMovementAppendsLedgerAndAudit(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	svc := newTestInventoryService(store)

	movement, newQuantity, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: -4, Reason: ReasonWastage, Note: "spoiled in storage",
	}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, 6, newQuantity)
	assert.Equal(t, -4, movement.Quantity)
	assert.Equal(t, staffActor.ID, movement.ActorID)
	assert.Nil(t, movement.ReferenceID)

	assert.Equal(t, 6, store.committed.inventory[invID].StockQuantity)
	require.Len(t, store.committed.movements, 1)
	require.Len(t, store.committed.audit, 1)
	assert.Equal(t, models.ActionStockMovement, store.committed.audit[0].Action)
	assert.Equal(t, models.EntityInventory, store.committed.audit[0].EntityType)
}

func TestRecordMovementStaffCannotGoNegative(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 3, 2)
	svc := newTestInventoryService(store)

	_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: -5, Reason: ReasonWastage, Note: "water damage",
	}, staffActor)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	assert.Equal(t, 3, store.committed.inventory[invID].StockQuantity)
	assert.Empty(t, store.committed.movements)
	assert.Empty(t, store.committed.audit)
}

func TestRecordMovementAdminMayGoNegative(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 3, 2)
	svc := newTestInventoryService(store)

	_, newQuantity, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: -5, Reason: ReasonManualAdjustment, Note: "stocktake correction",
	}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, -2, newQuantity)
	assert.Equal(t, -2, store.committed.inventory[invID].StockQuantity)
}

func TestRecordMovementAtomicOnAuditFailure(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	svc := newTestInventoryService(store)

	// Writes: stock update, ledger append, audit entry. Fail on the audit.
	store.failOnWrite = 3

	_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
		Quantity: 4, Reason: ReasonPurchaseReceived, Note: "morning delivery",
	}, staffActor)
	require.ErrorIs(t, err, ErrPersistence)

	assert.Equal(t, 10, store.committed.inventory[invID].StockQuantity)
	assert.Empty(t, store.committed.movements)
	assert.Empty(t, store.committed.audit)
}

func TestGetInventoryItemReportsLedgerTotal(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 0, 2)
	svc := newTestInventoryService(store)

	for _, delta := range []int{10, -3, 5} {
		reason := ReasonPurchaseReceived
		if delta < 0 {
			reason = ReasonWastage
		}
		_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
			Quantity: delta, Reason: reason, Note: "test movement",
		}, staffActor)
		require.NoError(t, err)
	}

	item, ledgerTotal, err := svc.GetInventoryItem(invID)
	require.NoError(t, err)
	assert.Equal(t, 12, item.StockQuantity)
	assert.Equal(t, 12, ledgerTotal)
}

func TestGetMovementsRejectsUnknownReasonFilter(t *testing.T) {
	store := newFakeStore()
	svc := newTestInventoryService(store)

	badReason := "shrinkage"
	_, _, err := svc.GetMovements(models.MovementFilters{Reason: &badReason})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetMovementsFiltersByProduct(t *testing.T) {
	store := newFakeStore()
	invA := store.seedInventory(1, 0, 2)
	invB := store.seedInventory(2, 0, 2)
	svc := newTestInventoryService(store)

	for _, invID := range []int64{invA, invB} {
		_, _, err := svc.RecordMovement(invID, RecordMovementRequest{
			Quantity: 5, Reason: ReasonPurchaseReceived, Note: "initial load",
		}, staffActor)
		require.NoError(t, err)
	}

	productID := int64(2)
	movements, total, err := svc.GetMovements(models.MovementFilters{ProductID: &productID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, productID, movements[0].ProductID)
}
