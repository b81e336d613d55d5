package services

import (
	"database/sql"
	"errors"
	"time"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/repositories"
)

// The fakes below back the service tests with an in-memory store that honors
// unit-of-work semantics: Begin clones the committed state, writes land on the
// clone, Commit promotes it and Rollback discards it. A write counter allows
// injecting a failure partway through a multi-write operation so atomicity
// can be checked without a real database.

type fakeState struct {
	inventory  map[int64]*models.InventoryItem // keyed by inventory item ID
	products   map[int64]*models.Product
	orders     map[int64]*models.Order
	orderItems map[int64][]models.OrderItem // keyed by order ID
	movements  []models.StockMovement
	audit      []models.AuditEntry
	nextID     int64
}

func newFakeState() *fakeState {
	return &fakeState{
		inventory:  make(map[int64]*models.InventoryItem),
		products:   make(map[int64]*models.Product),
		orders:     make(map[int64]*models.Order),
		orderItems: make(map[int64][]models.OrderItem),
		nextID:     1000,
	}
}

func (s *fakeState) clone() *fakeState {
	c := newFakeState()
	c.nextID = s.nextID
	for id, item := range s.inventory {
		cp := *item
		c.inventory[id] = &cp
	}
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, o := range s.orders {
		cp := *o
		c.orders[id] = &cp
	}
	for id, items := range s.orderItems {
		c.orderItems[id] = append([]models.OrderItem(nil), items...)
	}
	c.movements = append([]models.StockMovement(nil), s.movements...)
	c.audit = append([]models.AuditEntry(nil), s.audit...)
	return c
}

type fakeStore struct {
	committed *fakeState
	pending   *fakeState

	// failOnWrite is the 1-based index of the write that should error.
	// Zero disables fault injection.
	failOnWrite int
	writeCount  int

	// failItemReads makes order-item lookups error.
	failItemReads bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{committed: newFakeState()}
}

// state returns the pending state inside a unit of work, otherwise the
// committed one.
func (st *fakeStore) state() *fakeState {
	if st.pending != nil {
		return st.pending
	}
	return st.committed
}

func (st *fakeStore) write() error {
	st.writeCount++
	if st.failOnWrite != 0 && st.writeCount == st.failOnWrite {
		return errors.New("injected write failure")
	}
	return nil
}

func (st *fakeStore) nextID() int64 {
	s := st.state()
	s.nextID++
	return s.nextID
}

// seedInventory registers a product with an inventory record and returns the
// inventory item ID.
func (st *fakeStore) seedInventory(productID int64, quantity, reorderLevel int) int64 {
	id := st.nextID()
	if _, ok := st.state().products[productID]; !ok {
		st.state().products[productID] = &models.Product{
			ID: productID, Name: "product", IsAvailable: true,
		}
	}
	st.state().inventory[id] = &models.InventoryItem{
		ID:            id,
		ProductID:     productID,
		StockQuantity: quantity,
		ReorderLevel:  reorderLevel,
		Unit:          "pcs",
	}
	return id
}

// seedOrder registers an order with line items.
func (st *fakeStore) seedOrder(status string, items ...models.OrderItem) *models.Order {
	id := st.nextID()
	order := &models.Order{
		ID:           id,
		OrderNumber:  "MF-TEST",
		CustomerName: "Test Customer",
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	st.state().orders[id] = order
	for i := range items {
		items[i].OrderID = id
	}
	st.state().orderItems[id] = items
	return order
}

// --- unit of work ---

type fakeUOW struct {
	store *fakeStore
}

func (u *fakeUOW) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (u *fakeUOW) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (u *fakeUOW) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

func (u *fakeUOW) Commit() error {
	if u.store.pending == nil {
		return errors.New("commit without begin")
	}
	u.store.committed = u.store.pending
	u.store.pending = nil
	return nil
}

func (u *fakeUOW) Rollback() error {
	u.store.pending = nil
	return nil
}

type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) Begin() (repositories.UnitOfWork, error) {
	m.store.pending = m.store.committed.clone()
	return &fakeUOW{store: m.store}, nil
}

// --- repositories ---

type fakeInventoryRepo struct {
	store *fakeStore
}

func (r *fakeInventoryRepo) CreateInventoryItem(_ repositories.SQLExecutor, item *models.InventoryItem) (int64, error) {
	if err := r.store.write(); err != nil {
		return 0, err
	}
	for _, existing := range r.store.state().inventory {
		if existing.ProductID == item.ProductID {
			return 0, repositories.ErrDuplicateKey
		}
	}
	item.ID = r.store.nextID()
	cp := *item
	r.store.state().inventory[item.ID] = &cp
	return item.ID, nil
}

func (r *fakeInventoryRepo) GetByID(id int64) (*models.InventoryItem, error) {
	item, ok := r.store.state().inventory[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeInventoryRepo) GetByProductIDForUpdate(_ repositories.SQLExecutor, productID int64) (*models.InventoryItem, error) {
	for _, item := range r.store.state().inventory {
		if item.ProductID == productID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeInventoryRepo) GetInventory(page, pageSize int) ([]models.InventoryItem, int, error) {
	items := make([]models.InventoryItem, 0)
	for _, item := range r.store.state().inventory {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (r *fakeInventoryRepo) UpdateStockQuantity(_ repositories.SQLExecutor, id int64, newQuantity int, updatedAt time.Time) error {
	if err := r.store.write(); err != nil {
		return err
	}
	item, ok := r.store.state().inventory[id]
	if !ok {
		return repositories.ErrNotFound
	}
	item.StockQuantity = newQuantity
	item.UpdatedAt = updatedAt
	return nil
}

type fakeMovementRepo struct {
	store *fakeStore
}

func (r *fakeMovementRepo) CreateMovement(_ repositories.SQLExecutor, movement *models.StockMovement) (int64, error) {
	if err := r.store.write(); err != nil {
		return 0, err
	}
	movement.ID = r.store.nextID()
	movement.CreatedAt = time.Now()
	r.store.state().movements = append(r.store.state().movements, *movement)
	return movement.ID, nil
}

func (r *fakeMovementRepo) GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error) {
	movements := make([]models.StockMovement, 0)
	for _, m := range r.store.state().movements {
		if filters.ProductID != nil && m.ProductID != *filters.ProductID {
			continue
		}
		if filters.Reason != nil && *filters.Reason != "" && m.Reason != *filters.Reason {
			continue
		}
		movements = append(movements, m)
	}
	return movements, len(movements), nil
}

func (r *fakeMovementRepo) SumByProductID(productID int64) (int, error) {
	sum := 0
	for _, m := range r.store.state().movements {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	if err := r.store.write(); err != nil {
		return 0, err
	}
	order.ID = r.store.nextID()
	cp := *order
	r.store.state().orders[order.ID] = &cp
	return order.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	order, ok := r.store.state().orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrderForUpdate(_ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	return r.GetOrderByID(orderID)
}

func (r *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := make([]models.Order, 0)
	for _, o := range r.store.state().orders {
		if filters.Status != nil && *filters.Status != "" && o.Status != *filters.Status {
			continue
		}
		orders = append(orders, *o)
	}
	return orders, len(orders), nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	if err := r.store.write(); err != nil {
		return err
	}
	order, ok := r.store.state().orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Status = newStatus
	order.UpdatedAt = updatedAt
	return nil
}

func (r *fakeOrderRepo) UpdateInternalNote(_ repositories.SQLExecutor, orderID int64, note *string, updatedAt time.Time) error {
	if err := r.store.write(); err != nil {
		return err
	}
	order, ok := r.store.state().orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.InternalNote = note
	order.UpdatedAt = updatedAt
	return nil
}

func (r *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	if err := r.store.write(); err != nil {
		return 0, err
	}
	item.ID = r.store.nextID()
	r.store.state().orderItems[item.OrderID] = append(r.store.state().orderItems[item.OrderID], *item)
	return item.ID, nil
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	if r.store.failItemReads {
		return nil, errors.New("injected read failure")
	}
	return append([]models.OrderItem(nil), r.store.state().orderItems[orderID]...), nil
}

type fakeAuditRepo struct {
	store *fakeStore
}

func (r *fakeAuditRepo) CreateEntry(_ repositories.SQLExecutor, entry *models.AuditEntry) (int64, error) {
	if err := r.store.write(); err != nil {
		return 0, err
	}
	entry.ID = r.store.nextID()
	entry.CreatedAt = time.Now()
	r.store.state().audit = append(r.store.state().audit, *entry)
	return entry.ID, nil
}

func (r *fakeAuditRepo) GetEntries(entityType *string, actorID *int64, page, pageSize int) ([]models.AuditEntry, int, error) {
	entries := make([]models.AuditEntry, 0)
	for _, e := range r.store.state().audit {
		if entityType != nil && *entityType != "" && e.EntityType != *entityType {
			continue
		}
		if actorID != nil && e.ActorID != *actorID {
			continue
		}
		entries = append(entries, e)
	}
	return entries, len(entries), nil
}

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) CreateProduct(_ repositories.SQLExecutor, product *models.Product) (int64, error) {
	if err := r.store.write(); err != nil {
		return 0, err
	}
	product.ID = r.store.nextID()
	cp := *product
	r.store.state().products[product.ID] = &cp
	return product.ID, nil
}

func (r *fakeProductRepo) GetProductByID(id int64) (*models.Product, error) {
	product, ok := r.store.state().products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *product
	return &cp, nil
}

func (r *fakeProductRepo) GetProducts(category *string, page, pageSize int) ([]models.Product, int, error) {
	products := make([]models.Product, 0)
	for _, p := range r.store.state().products {
		products = append(products, *p)
	}
	return products, len(products), nil
}

func (r *fakeProductRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.Product) error {
	if err := r.store.write(); err != nil {
		return err
	}
	if _, ok := r.store.state().products[product.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *product
	r.store.state().products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ repositories.SQLExecutor, id int64) error {
	if err := r.store.write(); err != nil {
		return err
	}
	if _, ok := r.store.state().products[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, items := range r.store.state().orderItems {
		for _, item := range items {
			if item.ProductID == id {
				return repositories.ErrForeignKeyViolation
			}
		}
	}
	delete(r.store.state().products, id)
	return nil
}

// newTestInventoryService wires an inventory service over a fake store.
func newTestInventoryService(store *fakeStore) InventoryService {
	return NewInventoryService(
		&fakeInventoryRepo{store: store},
		&fakeMovementRepo{store: store},
		&fakeAuditRepo{store: store},
		&fakeTxManager{store: store},
	)
}

// newTestFulfillmentService wires a fulfillment service (and its inventory
// service) over a fake store.
func newTestFulfillmentService(store *fakeStore) FulfillmentService {
	return NewFulfillmentService(
		&fakeOrderRepo{store: store},
		&fakeAuditRepo{store: store},
		newTestInventoryService(store),
		&fakeTxManager{store: store},
	)
}
