package services

import (
	"fmt"
	"sort"
	"time"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/repositories"
)

const (
	// StaleOrderThreshold is how long an order may sit in PREPARING before
	// the attention feed flags it.
	StaleOrderThreshold = 2 * time.Hour

	// AttentionPageSize caps the attention feed length.
	AttentionPageSize = 20

	// TopProductsLimit caps the best-sellers report.
	TopProductsLimit = 10
)

// --- ReportService Interface ---
type ReportService interface {
	GetLowStock() ([]models.LowStockItem, error)
	GetAttentionFeed() ([]models.AttentionItem, error)
	GetDashboardSummary() (*models.DashboardSummary, error)
	GetSalesTrend(days int) ([]models.DailySalesPoint, error)
	GetTopProducts() ([]models.TopProductItem, error)
	GetStockFlow(days int) ([]models.StockFlowItem, error)
}

// --- reportService Implementation ---
type reportService struct {
	reportRepo repositories.ReportRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(rr repositories.ReportRepository) ReportService {
	return &reportService{reportRepo: rr}
}

// lowStockPriority grades how urgent a replenishment is. Quantities at or
// below zero are always critical regardless of the reorder level.
func lowStockPriority(quantity, reorderLevel int) string {
	if quantity <= 0 {
		return models.PriorityHigh
	}
	if quantity <= reorderLevel/2 {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

// GetLowStock returns items whose cached quantity is at or below their reorder
// level. The comparison is done here rather than in SQL so the grading rules
// live in one place.
func (s *reportService) GetLowStock() ([]models.LowStockItem, error) {
	levels, err := s.reportRepo.GetInventoryLevels()
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory levels: %w", err)
	}

	lowStock := make([]models.LowStockItem, 0)
	for _, item := range levels {
		if item.StockQuantity > item.ReorderLevel {
			continue
		}
		item.Priority = lowStockPriority(item.StockQuantity, item.ReorderLevel)
		lowStock = append(lowStock, item)
	}
	return lowStock, nil
}

var priorityRank = map[string]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// GetAttentionFeed merges fresh orders, stale preparing orders and low stock
// items into one prioritized list for the back-office landing page.
func (s *reportService) GetAttentionFeed() ([]models.AttentionItem, error) {
	feed := make([]models.AttentionItem, 0)

	newOrders, err := s.reportRepo.GetOrdersByStatus(StatusNew)
	if err != nil {
		return nil, fmt.Errorf("failed to get new orders: %w", err)
	}
	for _, order := range newOrders {
		feed = append(feed, models.AttentionItem{
			Kind:        models.AttentionNewOrder,
			Priority:    models.PriorityHigh,
			Message:     fmt.Sprintf("New order %s from %s awaits a decision", order.OrderNumber, order.CustomerName),
			ReferenceID: order.ID,
			OccurredAt:  order.CreatedAt,
		})
	}

	preparing, err := s.reportRepo.GetOrdersByStatus(StatusPreparing)
	if err != nil {
		return nil, fmt.Errorf("failed to get preparing orders: %w", err)
	}
	staleCutoff := time.Now().Add(-StaleOrderThreshold)
	for _, order := range preparing {
		if order.UpdatedAt.After(staleCutoff) {
			continue
		}
		feed = append(feed, models.AttentionItem{
			Kind:        models.AttentionStaleOrder,
			Priority:    models.PriorityMedium,
			Message:     fmt.Sprintf("Order %s has been preparing since %s", order.OrderNumber, order.UpdatedAt.Format("15:04")),
			ReferenceID: order.ID,
			OccurredAt:  order.UpdatedAt,
		})
	}

	lowStock, err := s.GetLowStock()
	if err != nil {
		return nil, err
	}
	for _, item := range lowStock {
		feed = append(feed, models.AttentionItem{
			Kind:        models.AttentionLowStock,
			Priority:    item.Priority,
			Message:     fmt.Sprintf("%s is down to %d %s (reorder at %d)", item.ProductName, item.StockQuantity, item.Unit, item.ReorderLevel),
			ReferenceID: item.InventoryID,
			OccurredAt:  item.LastChangeAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		if priorityRank[feed[i].Priority] != priorityRank[feed[j].Priority] {
			return priorityRank[feed[i].Priority] < priorityRank[feed[j].Priority]
		}
		return feed[i].OccurredAt.After(feed[j].OccurredAt)
	})

	if len(feed) > AttentionPageSize {
		feed = feed[:AttentionPageSize]
	}
	return feed, nil
}

func (s *reportService) GetDashboardSummary() (*models.DashboardSummary, error) {
	inProgressCount, err := s.reportRepo.CountOrdersInStatuses([]string{StatusAccepted, StatusPreparing, StatusOutForDelivery})
	if err != nil {
		return nil, fmt.Errorf("failed to count in-progress orders: %w", err)
	}
	newCount, err := s.reportRepo.CountOrdersInStatuses([]string{StatusNew})
	if err != nil {
		return nil, fmt.Errorf("failed to count new orders: %w", err)
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deliveredToday, revenueToday, err := s.reportRepo.GetDeliveredBetween(startOfDay, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's deliveries: %w", err)
	}

	lowStock, err := s.GetLowStock()
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		NewOrdersCount:      newCount,
		InProgressCount:     inProgressCount,
		DeliveredTodayCount: deliveredToday,
		RevenueToday:        revenueToday,
		LowStockItemsCount:  len(lowStock),
	}, nil
}

func (s *reportService) GetSalesTrend(days int) ([]models.DailySalesPoint, error) {
	if days != 7 && days != 30 {
		return nil, fmt.Errorf("%w: sales trend supports 7 or 30 days, got %d", ErrValidation, days)
	}
	since := time.Now().AddDate(0, 0, -days)
	points, err := s.reportRepo.GetDailySales(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily sales: %w", err)
	}
	return points, nil
}

func (s *reportService) GetTopProducts() ([]models.TopProductItem, error) {
	since := time.Now().AddDate(0, 0, -30)
	items, err := s.reportRepo.GetTopProducts(since, TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return items, nil
}

func (s *reportService) GetStockFlow(days int) ([]models.StockFlowItem, error) {
	if days <= 0 || days > 90 {
		return nil, fmt.Errorf("%w: stock flow window must be between 1 and 90 days, got %d", ErrValidation, days)
	}
	since := time.Now().AddDate(0, 0, -days)
	items, err := s.reportRepo.GetMovementTotals(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get movement totals: %w", err)
	}
	return items, nil
}
