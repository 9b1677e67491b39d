// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/models"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotCancelable = errors.New("only pending orders can be cancelled")
)

type OrderService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// OrderStats aggregates a buyer's order history for the profile dashboard.
type OrderStats struct {
	TotalOrders   int64            `json:"total_orders"`
	CountByStatus map[string]int64 `json:"count_by_status"`
	TotalSpent    float64          `json:"total_spent"`
}

func NewOrderService(db *gorm.DB, storageService *StorageService) *OrderService {
	return &OrderService{
		db:             db,
		storageService: storageService,
	}
}

// orderSortMap translates API sort keys to ORDER BY clauses.
var orderSortMap = map[string]string{
	"newest":      "created_at DESC",
	"oldest":      "created_at ASC",
	"amount_high": "total_amount DESC",
	"amount_low":  "total_amount ASC",
}

// ListOrders returns the user's orders, as buyer by default or as seller
// when asSeller is set.
func (s *OrderService) ListOrders(userID uuid.UUID, asSeller bool, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).
		Preload("Items.Product").Preload("Product").Preload("Seller").Preload("Buyer")

	if asSeller {
		query = query.Where("seller_id = ?", userID)
	} else {
		query = query.Where("buyer_id = ?", userID)
	}

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params.Sort, orderSortMap)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	for i := range orders {
		s.attachOrderImageURLs(&orders[i])
	}

	return orders, total, nil
}

// GetOrder returns a single order visible to the given user, who must be
// either the buyer or the seller.
func (s *OrderService) GetOrder(orderID uuid.UUID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Product").Preload("Product").Preload("Seller").Preload("Buyer").
		Where("id = ? AND (buyer_id = ? OR seller_id = ?)", orderID, userID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.attachOrderImageURLs(&order)
	return &order, nil
}

func (s *OrderService) GetOrderStats(userID uuid.UUID) (*OrderStats, error) {
	stats := &OrderStats{CountByStatus: make(map[string]int64)}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := s.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Where("buyer_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	for _, row := range rows {
		stats.CountByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}

	// Spend counts orders that made it past payment.
	err = s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("buyer_id = ? AND status IN ?", userID, []models.OrderStatus{
			models.OrderStatusPaid,
			models.OrderStatusProcessing,
			models.OrderStatusShipped,
			models.OrderStatusDelivered,
		}).
		Scan(&stats.TotalSpent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute total spent: %w", err)
	}

	return stats, nil
}

// CancelOrder sets a pending order to cancelled with the buyer's reason.
func (s *OrderService) CancelOrder(orderID uuid.UUID, buyerID uuid.UUID, req *CancelOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	err := s.db.Where("id = ? AND buyer_id = ?", orderID, buyerID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderNotCancelable
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        models.OrderStatusCancelled,
		"cancel_reason": req.Reason,
		"cancelled_at":  now,
	}
	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	return s.GetOrder(orderID, buyerID)
}

func (s *OrderService) attachOrderImageURLs(order *models.Order) {
	if order.Product != nil {
		order.Product.ImageURLs = s.storageService.URLs(order.Product.Images)
	}
	for i := range order.Items {
		order.Items[i].Product.ImageURLs = s.storageService.URLs(order.Items[i].Product.Images)
	}
}
