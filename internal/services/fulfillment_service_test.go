package services

import (
	"errors"
	"fmt"
	"testing"

	"mealflow_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	staffActor = models.Actor{ID: 7, Role: models.RoleStaff}
	adminActor = models.Actor{ID: 1, Role: models.RoleAdmin}
)

func TestAdvanceStatusReservesStockOnAcceptance(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	order := store.seedOrder(StatusNew, models.OrderItem{ProductID: 1, Quantity: 3})
	svc := newTestFulfillmentService(store)

	updated, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, updated.Status)

	assert.Equal(t, 7, store.committed.inventory[invID].StockQuantity)
	require.Len(t, store.committed.movements, 1)
	movement := store.committed.movements[0]
	assert.Equal(t, -3, movement.Quantity)
	assert.Equal(t, ReasonOrderConsumption, movement.Reason)
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, order.ID, *movement.ReferenceID)

	require.Len(t, store.committed.audit, 1)
	assert.Equal(t, models.ActionOrderStatusChanged, store.committed.audit[0].Action)
}

func TestAdvanceStatusRestoresStockOnCancellation(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 7, 2)
	order := store.seedOrder(StatusAccepted, models.OrderItem{ProductID: 1, Quantity: 3})
	svc := newTestFulfillmentService(store)

	updated, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusCancelled}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)

	assert.Equal(t, 10, store.committed.inventory[invID].StockQuantity)
	require.Len(t, store.committed.movements, 1)
	assert.Equal(t, 3, store.committed.movements[0].Quantity)
	assert.Equal(t, ReasonCustomerReturn, store.committed.movements[0].Reason)
}

func TestDeclineFromNewLeavesStockUntouched(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	order := store.seedOrder(StatusNew, models.OrderItem{ProductID: 1, Quantity: 3})
	svc := newTestFulfillmentService(store)

	updated, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusDeclined}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, updated.Status)

	// Nothing was ever reserved, so nothing is returned.
	assert.Equal(t, 10, store.committed.inventory[invID].StockQuantity)
	assert.Empty(t, store.committed.movements)
}

func TestAdvanceStatusRejectsInvalidTransitions(t *testing.T) {
	statuses := []string{
		StatusNew, StatusAccepted, StatusPreparing, StatusOutForDelivery,
		StatusDelivered, StatusDeclined, StatusCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			if CanTransition(from, to) {
				continue
			}
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				store := newFakeStore()
				store.seedInventory(1, 100, 2)
				order := store.seedOrder(from, models.OrderItem{ProductID: 1, Quantity: 1})
				svc := newTestFulfillmentService(store)

				_, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: to}, adminActor)
				var transitionErr *InvalidTransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, from, transitionErr.CurrentStatus)
				assert.Equal(t, to, transitionErr.RequestedStatus)

				assert.Equal(t, from, store.committed.orders[order.ID].Status)
				assert.Empty(t, store.committed.movements)
			})
		}
	}
}

func TestAdvanceStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	order := store.seedOrder(StatusNew)
	svc := newTestFulfillmentService(store)

	_, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: "SHIPPED"}, staffActor)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdvanceStatusOrderNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestFulfillmentService(store)

	_, err := svc.AdvanceStatus(9999, AdvanceStatusRequest{Status: StatusAccepted}, staffActor)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInsufficientStockBlocksAcceptance(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 2, 2)
	order := store.seedOrder(StatusNew, models.OrderItem{ProductID: 1, Quantity: 3})
	svc := newTestFulfillmentService(store)

	_, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, staffActor)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	// The rejected transition leaves everything as it was.
	assert.Equal(t, StatusNew, store.committed.orders[order.ID].Status)
	assert.Equal(t, 2, store.committed.inventory[invID].StockQuantity)
	assert.Empty(t, store.committed.movements)
}

func TestAdminOverrideAllowsNegativeStock(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 2, 2)
	order := store.seedOrder(StatusNew, models.OrderItem{ProductID: 1, Quantity: 3})
	svc := newTestFulfillmentService(store)

	updated, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, updated.Status)
	assert.Equal(t, -1, store.committed.inventory[invID].StockQuantity)
}

func TestNoPartialApplicationOnWriteFailure(t *testing.T) {
	store := newFakeStore()
	invA := store.seedInventory(1, 10, 2)
	invB := store.seedInventory(2, 10, 2)
	order := store.seedOrder(StatusNew,
		models.OrderItem{ProductID: 1, Quantity: 3},
		models.OrderItem{ProductID: 2, Quantity: 4},
	)
	svc := newTestFulfillmentService(store)

	// Writes during acceptance: stock update and ledger append per line,
	// then the status update and audit entry. Fail on the third write, after
	// the first line has fully applied.
	store.failOnWrite = 3

	_, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, staffActor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))

	assert.Equal(t, StatusNew, store.committed.orders[order.ID].Status)
	assert.Equal(t, 10, store.committed.inventory[invA].StockQuantity)
	assert.Equal(t, 10, store.committed.inventory[invB].StockQuantity)
	assert.Empty(t, store.committed.movements)
	assert.Empty(t, store.committed.audit)
}

func TestLedgerSumMatchesCachedQuantity(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 0, 2)
	invSvc := newTestInventoryService(store)
	fulSvc := NewFulfillmentService(
		&fakeOrderRepo{store: store},
		&fakeAuditRepo{store: store},
		invSvc,
		&fakeTxManager{store: store},
	)

	_, _, err := invSvc.RecordMovement(invID, RecordMovementRequest{
		Quantity: 10, Reason: ReasonPurchaseReceived, Note: "delivery from supplier",
	}, staffActor)
	require.NoError(t, err)

	order := store.seedOrder(StatusNew, models.OrderItem{ProductID: 1, Quantity: 3})
	_, err = fulSvc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, staffActor)
	require.NoError(t, err)
	_, err = fulSvc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusCancelled}, staffActor)
	require.NoError(t, err)

	sum, err := (&fakeMovementRepo{store: store}).SumByProductID(1)
	require.NoError(t, err)
	assert.Equal(t, store.committed.inventory[invID].StockQuantity, sum)
	assert.Equal(t, 10, sum)
}

func TestStatusChangeSurvivesItemReloadFailure(t *testing.T) {
	store := newFakeStore()
	store.seedInventory(1, 10, 2)
	order := store.seedOrder(StatusAccepted, models.OrderItem{ProductID: 1, Quantity: 3})
	svc := newTestFulfillmentService(store)

	// ACCEPTED -> PREPARING moves no stock, so the only item lookup is the
	// reload after commit. Its failure must not undo the transition.
	store.failItemReads = true
	updated, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusPreparing}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, updated.Status)
	assert.Empty(t, updated.OrderItems)
	assert.Equal(t, StatusPreparing, store.committed.orders[order.ID].Status)
}

func TestFullOrderLifecycle(t *testing.T) {
	store := newFakeStore()
	invID := store.seedInventory(1, 10, 2)
	order := store.seedOrder(StatusNew, models.OrderItem{ProductID: 1, Quantity: 2})
	svc := newTestFulfillmentService(store)

	// Acceptance reserves.
	_, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 8, store.committed.inventory[invID].StockQuantity)
	require.Len(t, store.committed.movements, 1)
	assert.Equal(t, -2, store.committed.movements[0].Quantity)

	// Moving to preparing changes nothing in inventory.
	_, err = svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusPreparing}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 8, store.committed.inventory[invID].StockQuantity)
	assert.Len(t, store.committed.movements, 1)

	// Cancellation from preparing restores.
	_, err = svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusCancelled}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 10, store.committed.inventory[invID].StockQuantity)
	require.Len(t, store.committed.movements, 2)
	assert.Equal(t, 2, store.committed.movements[1].Quantity)

	// Net effect on the ledger is zero.
	sum, err := (&fakeMovementRepo{store: store}).SumByProductID(1)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	// Cancelled is terminal.
	_, err = svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: StatusAccepted}, adminActor)
	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestDeliveredOrderIsTerminal(t *testing.T) {
	store := newFakeStore()
	order := store.seedOrder(StatusDelivered)
	svc := newTestFulfillmentService(store)

	for _, target := range []string{StatusNew, StatusAccepted, StatusCancelled} {
		_, err := svc.AdvanceStatus(order.ID, AdvanceStatusRequest{Status: target}, adminActor)
		var transitionErr *InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	}
}
