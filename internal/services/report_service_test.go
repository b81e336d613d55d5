package services

import (
	"testing"
	"time"

	"mealflow_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReportRepo returns canned aggregates; the report service only shapes
// and grades them.
type fakeReportRepo struct {
	levels           []models.LowStockItem
	ordersByStatus   map[string][]models.Order
	daily            []models.DailySalesPoint
	top              []models.TopProductItem
	totals           []models.StockFlowItem
	statusCounts     map[string]int
	deliveredCount   int
	deliveredRevenue decimal.Decimal
}

func (r *fakeReportRepo) GetInventoryLevels() ([]models.LowStockItem, error) {
	return r.levels, nil
}

func (r *fakeReportRepo) GetOrdersByStatus(status string) ([]models.Order, error) {
	return r.ordersByStatus[status], nil
}

func (r *fakeReportRepo) GetDailySales(since time.Time) ([]models.DailySalesPoint, error) {
	return r.daily, nil
}

func (r *fakeReportRepo) GetTopProducts(since time.Time, limit int) ([]models.TopProductItem, error) {
	return r.top, nil
}

func (r *fakeReportRepo) GetMovementTotals(since time.Time) ([]models.StockFlowItem, error) {
	return r.totals, nil
}

func (r *fakeReportRepo) CountOrdersInStatuses(statuses []string) (int, error) {
	count := 0
	for _, status := range statuses {
		count += r.statusCounts[status]
	}
	return count, nil
}

func (r *fakeReportRepo) GetDeliveredBetween(start, end time.Time) (int, decimal.Decimal, error) {
	return r.deliveredCount, r.deliveredRevenue, nil
}

func TestGetLowStockGradesPriorities(t *testing.T) {
	repo := &fakeReportRepo{
		levels: []models.LowStockItem{
			{InventoryID: 1, ProductName: "rice", StockQuantity: 0, ReorderLevel: 10},
			{InventoryID: 2, ProductName: "flour", StockQuantity: -2, ReorderLevel: 10},
			{InventoryID: 3, ProductName: "oil", StockQuantity: 4, ReorderLevel: 10},
			{InventoryID: 4, ProductName: "salt", StockQuantity: 9, ReorderLevel: 10},
			{InventoryID: 5, ProductName: "sugar", StockQuantity: 11, ReorderLevel: 10},
		},
	}
	svc := NewReportService(repo)

	items, err := svc.GetLowStock()
	require.NoError(t, err)
	require.Len(t, items, 4, "items above their reorder level are excluded")

	priorities := map[int64]string{}
	for _, item := range items {
		priorities[item.InventoryID] = item.Priority
	}
	assert.Equal(t, models.PriorityHigh, priorities[1], "exactly zero is critical")
	assert.Equal(t, models.PriorityHigh, priorities[2], "negative stock is critical")
	assert.Equal(t, models.PriorityMedium, priorities[3], "at or below half the threshold")
	assert.Equal(t, models.PriorityLow, priorities[4], "just at the threshold")
}

func TestGetAttentionFeedOrdering(t *testing.T) {
	now := time.Now()
	repo := &fakeReportRepo{
		ordersByStatus: map[string][]models.Order{
			StatusNew: {
				{ID: 1, OrderNumber: "MF-A", CustomerName: "Ann", CreatedAt: now.Add(-5 * time.Minute)},
				{ID: 2, OrderNumber: "MF-B", CustomerName: "Bob", CreatedAt: now.Add(-1 * time.Minute)},
			},
			StatusPreparing: {
				// Stale, flagged.
				{ID: 3, OrderNumber: "MF-C", UpdatedAt: now.Add(-3 * time.Hour)},
				// Fresh, ignored.
				{ID: 4, OrderNumber: "MF-D", UpdatedAt: now.Add(-10 * time.Minute)},
			},
		},
		levels: []models.LowStockItem{
			{InventoryID: 9, ProductName: "rice", StockQuantity: 4, ReorderLevel: 10, Unit: "kg", LastChangeAt: now.Add(-1 * time.Hour)},
		},
	}
	svc := NewReportService(repo)

	feed, err := svc.GetAttentionFeed()
	require.NoError(t, err)
	require.Len(t, feed, 4)

	// High priority new orders first, newest first.
	assert.Equal(t, models.AttentionNewOrder, feed[0].Kind)
	assert.Equal(t, int64(2), feed[0].ReferenceID)
	assert.Equal(t, models.AttentionNewOrder, feed[1].Kind)
	assert.Equal(t, int64(1), feed[1].ReferenceID)

	// Medium entries follow, newest first: low stock changed an hour ago,
	// the stale order three hours ago.
	assert.Equal(t, models.AttentionLowStock, feed[2].Kind)
	assert.Equal(t, models.AttentionStaleOrder, feed[3].Kind)
}

func TestGetAttentionFeedTruncates(t *testing.T) {
	now := time.Now()
	orders := make([]models.Order, 0, AttentionPageSize+5)
	for i := 0; i < AttentionPageSize+5; i++ {
		orders = append(orders, models.Order{
			ID:          int64(i + 1),
			OrderNumber: "MF-X",
			CreatedAt:   now.Add(-time.Duration(i) * time.Minute),
		})
	}
	repo := &fakeReportRepo{ordersByStatus: map[string][]models.Order{StatusNew: orders}}
	svc := NewReportService(repo)

	feed, err := svc.GetAttentionFeed()
	require.NoError(t, err)
	assert.Len(t, feed, AttentionPageSize)
}

func TestGetAttentionFeedIsReadOnly(t *testing.T) {
	repo := &fakeReportRepo{
		ordersByStatus: map[string][]models.Order{
			StatusNew: {{ID: 1, OrderNumber: "MF-A", CreatedAt: time.Now()}},
		},
	}
	svc := NewReportService(repo)

	first, err := svc.GetAttentionFeed()
	require.NoError(t, err)
	second, err := svc.GetAttentionFeed()
	require.NoError(t, err)
	assert.Equal(t, first, second, "reading the feed changes nothing")
}

func TestGetDashboardSummary(t *testing.T) {
	repo := &fakeReportRepo{
		statusCounts: map[string]int{
			StatusNew:            3,
			StatusAccepted:       2,
			StatusPreparing:      1,
			StatusOutForDelivery: 1,
		},
		deliveredCount:   5,
		deliveredRevenue: decimal.NewFromInt(120),
		levels: []models.LowStockItem{
			{InventoryID: 1, StockQuantity: 1, ReorderLevel: 5},
			{InventoryID: 2, StockQuantity: 50, ReorderLevel: 5},
		},
	}
	svc := NewReportService(repo)

	summary, err := svc.GetDashboardSummary()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.NewOrdersCount)
	assert.Equal(t, 4, summary.InProgressCount)
	assert.Equal(t, 5, summary.DeliveredTodayCount)
	assert.True(t, summary.RevenueToday.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 1, summary.LowStockItemsCount)
}

func TestGetSalesTrendValidatesWindow(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{})

	for _, days := range []int{0, 1, 14, 90} {
		_, err := svc.GetSalesTrend(days)
		assert.ErrorIs(t, err, ErrValidation, "days=%d", days)
	}
	for _, days := range []int{7, 30} {
		_, err := svc.GetSalesTrend(days)
		assert.NoError(t, err, "days=%d", days)
	}
}

func TestGetStockFlowValidatesWindow(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{})

	for _, days := range []int{0, -1, 91} {
		_, err := svc.GetStockFlow(days)
		assert.ErrorIs(t, err, ErrValidation, "days=%d", days)
	}
	_, err := svc.GetStockFlow(30)
	assert.NoError(t, err)
}
