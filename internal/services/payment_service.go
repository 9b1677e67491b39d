// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/config"
	"github.com/lokapasar/lokapasar-backend/internal/models"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrOwnProduct       = errors.New("cannot buy your own product")
	ErrUnknownOrder     = errors.New("no orders match this transaction")
	ErrPaymentGateway   = errors.New("payment gateway request failed")
	ErrTransactionMixed = errors.New("transaction could not be verified")
)

type PaymentService struct {
	db            *gorm.DB
	cfg           *config.Config
	snapClient    snap.Client
	coreClient    coreapi.Client
	cartService   *CartService
	notifications *NotificationService
}

type CheckoutProductRequest struct {
	ProductID       uuid.UUID    `json:"product_id" validate:"required"`
	Quantity        int          `json:"quantity" validate:"required,min=1"`
	ShippingAddress models.JSONB `json:"shipping_address" validate:"required"`
}

type CheckoutCartRequest struct {
	ShippingAddress models.JSONB `json:"shipping_address" validate:"required"`
}

// CheckoutResponse carries the gateway handle the client needs to open the
// payment page, plus the orders created for this transaction.
type CheckoutResponse struct {
	TransactionID string         `json:"transaction_id"`
	PaymentToken  string         `json:"payment_token"`
	RedirectURL   string         `json:"redirect_url"`
	Orders        []models.Order `json:"orders"`
}

// PaymentNotification is the subset of the gateway webhook payload we act on.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, cartService *CartService, notifications *NotificationService) *PaymentService {
	env := midtrans.Sandbox
	if cfg.Midtrans.Production {
		env = midtrans.Production
	}

	s := &PaymentService{
		db:            db,
		cfg:           cfg,
		cartService:   cartService,
		notifications: notifications,
	}
	s.snapClient.New(cfg.Midtrans.ServerKey, env)
	s.coreClient.New(cfg.Midtrans.ServerKey, env)
	return s
}

// CheckoutProduct creates a single pending order for one product and opens a
// gateway transaction for it.
func (s *PaymentService) CheckoutProduct(buyer *models.User, req *CheckoutProductRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductNotActive
	}
	if product.SellerID == buyer.ID {
		return nil, ErrOwnProduct
	}
	if req.Quantity > product.Stock {
		return nil, ErrInsufficientStock
	}

	transactionID := newTransactionID()
	productID := req.ProductID
	order := models.Order{
		BuyerID:         buyer.ID,
		SellerID:        product.SellerID,
		ProductID:       &productID,
		Quantity:        req.Quantity,
		TotalAmount:     product.Price * float64(req.Quantity),
		Status:          models.OrderStatusPending,
		TransactionID:   transactionID,
		ShippingAddress: req.ShippingAddress,
	}

	items := []midtrans.ItemDetails{{
		ID:    product.ID.String(),
		Name:  truncateItemName(product.Name),
		Price: int64(product.Price),
		Qty:   int32(req.Quantity),
	}}

	snapResp, err := s.createSnapTransaction(transactionID, snapGrossAmount(items), buyer, items)
	if err != nil {
		return nil, err
	}
	order.PaymentToken = snapResp.Token

	if err := s.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.db.Preload("Product").Preload("Seller").First(&order, order.ID)

	return &CheckoutResponse{
		TransactionID: transactionID,
		PaymentToken:  snapResp.Token,
		RedirectURL:   snapResp.RedirectURL,
		Orders:        []models.Order{order},
	}, nil
}

// CheckoutCart turns the user's cart into one order per seller, all sharing a
// single gateway transaction covering the cart total.
func (s *PaymentService) CheckoutCart(buyer *models.User, req *CheckoutCartRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.cartService.GetCart(buyer.ID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	for _, item := range cart.Items {
		if item.Product.SellerID == buyer.ID {
			return nil, ErrOwnProduct
		}
		if item.Quantity > item.Product.Stock {
			return nil, ErrInsufficientStock
		}
	}

	transactionID := newTransactionID()
	groups := GroupCartItemsBySeller(cart.Items)

	var gatewayItems []midtrans.ItemDetails
	for _, item := range cart.Items {
		gatewayItems = append(gatewayItems, midtrans.ItemDetails{
			ID:    item.ProductID.String(),
			Name:  truncateItemName(item.Product.Name),
			Price: int64(item.Price),
			Qty:   int32(item.Quantity),
		})
	}

	snapResp, err := s.createSnapTransaction(transactionID, snapGrossAmount(gatewayItems), buyer, gatewayItems)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for sellerID, items := range groups {
			order := models.Order{
				BuyerID:         buyer.ID,
				SellerID:        sellerID,
				TotalAmount:     CartTotal(items),
				Status:          models.OrderStatusPending,
				TransactionID:   transactionID,
				PaymentToken:    snapResp.Token,
				ShippingAddress: req.ShippingAddress,
			}
			for _, item := range items {
				order.Items = append(order.Items, models.OrderItem{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					Price:     item.Price,
				})
			}
			if err := tx.Create(&order).Error; err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}
			orders = append(orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResponse{
		TransactionID: transactionID,
		PaymentToken:  snapResp.Token,
		RedirectURL:   snapResp.RedirectURL,
		Orders:        orders,
	}, nil
}

// HandleNotification processes a gateway webhook. The payload's status is
// never trusted: the transaction is re-checked against the gateway before any
// order is touched.
func (s *PaymentService) HandleNotification(notification *PaymentNotification) error {
	if notification.OrderID == "" {
		return errors.New("notification missing order_id")
	}

	// Fail closed: without a server key the payload cannot be verified, and
	// unverified payload fields are never applied.
	if s.cfg.Midtrans.ServerKey == "" {
		logrus.WithField("transaction_id", notification.OrderID).
			Warn("gateway server key not configured, refusing notification")
		return ErrTransactionMixed
	}

	resp, checkErr := s.coreClient.CheckTransaction(notification.OrderID)
	if checkErr != nil || resp == nil {
		logrus.WithField("transaction_id", notification.OrderID).
			Warn("transaction status check failed")
		return ErrTransactionMixed
	}
	status, fraud := resp.TransactionStatus, resp.FraudStatus

	newStatus, ok := MapNotificationStatus(status, fraud)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"transaction_id":     notification.OrderID,
			"transaction_status": status,
		}).Info("ignoring payment notification with no status transition")
		return nil
	}

	return s.applyTransactionStatus(notification.OrderID, newStatus)
}

// applyTransactionStatus moves every order sharing the transaction id to the
// new status. Re-delivered notifications are harmless: the guarded UPDATE
// matches nothing once the orders have already moved on.
func (s *PaymentService) applyTransactionStatus(transactionID string, newStatus models.OrderStatus) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var orders []models.Order
		if err := tx.Preload("Items").Where("transaction_id = ?", transactionID).Find(&orders).Error; err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		if len(orders) == 0 {
			return ErrUnknownOrder
		}

		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.OrderStatusPaid {
			updates["paid_at"] = time.Now()
		}

		result := tx.Model(&models.Order{}).
			Where("transaction_id = ? AND status = ?", transactionID, models.OrderStatusPending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update orders: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if newStatus == models.OrderStatusPaid {
			// Only orders that were still pending actually transitioned.
			var transitioned []models.Order
			for _, order := range orders {
				if order.Status == models.OrderStatusPending {
					transitioned = append(transitioned, order)
				}
			}
			if err := s.decrementStock(tx, transitioned); err != nil {
				return err
			}
			for _, order := range transitioned {
				s.sendOrderConfirmation(order)
			}
		}
		return nil
	})
}

func (s *PaymentService) decrementStock(tx *gorm.DB, orders []models.Order) error {
	for _, order := range orders {
		if order.ProductID != nil {
			if err := s.decrementProductStock(tx, *order.ProductID, order.Quantity); err != nil {
				return err
			}
			continue
		}
		for _, item := range order.Items {
			if err := s.decrementProductStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *PaymentService) decrementProductStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}

	// Mark products that just sold out.
	err := tx.Model(&models.Product{}).
		Where("id = ? AND stock = 0 AND status = ?", productID, models.ProductStatusActive).
		Update("status", models.ProductStatusSold).Error
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	return nil
}

func (s *PaymentService) sendOrderConfirmation(order models.Order) {
	var buyer models.User
	if err := s.db.First(&buyer, order.BuyerID).Error; err != nil {
		logrus.WithError(err).Warn("failed to load buyer for order confirmation")
		return
	}
	go s.notifications.SendOrderConfirmationEmail(&buyer, &order)
}

func (s *PaymentService) createSnapTransaction(transactionID string, grossAmount int64, buyer *models.User, items []midtrans.ItemDetails) (*snap.Response, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  transactionID,
			GrossAmt: grossAmount,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: buyer.FullName,
			Email: buyer.Email,
		},
		Callbacks: &snap.Callbacks{
			Finish: s.cfg.Frontend.BaseURL + "/orders",
		},
	}

	resp, midErr := s.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		logrus.WithError(midErr).Error("snap transaction creation failed")
		return nil, ErrPaymentGateway
	}
	return resp, nil
}

// GroupCartItemsBySeller splits cart lines by the product's seller so each
// seller gets their own order.
func GroupCartItemsBySeller(items []models.CartItem) map[uuid.UUID][]models.CartItem {
	groups := make(map[uuid.UUID][]models.CartItem)
	for _, item := range items {
		groups[item.Product.SellerID] = append(groups[item.Product.SellerID], item)
	}
	return groups
}

// MapNotificationStatus maps a gateway transaction_status/fraud_status pair
// to the resulting order status. The second return is false when the pair
// requires no transition.
func MapNotificationStatus(transactionStatus, fraudStatus string) (models.OrderStatus, bool) {
	switch transactionStatus {
	case "capture":
		switch fraudStatus {
		case "accept":
			return models.OrderStatusPaid, true
		case "challenge":
			return models.OrderStatusPending, true
		}
		return "", false
	case "settlement":
		return models.OrderStatusPaid, true
	case "deny", "cancel", "expire":
		return models.OrderStatusCancelled, true
	case "pending":
		return models.OrderStatusPending, true
	}
	return "", false
}

// snapGrossAmount sums price times quantity over the gateway line items so
// the session total always matches what the items add up to.
func snapGrossAmount(items []midtrans.ItemDetails) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Qty)
	}
	return total
}

func newTransactionID() string {
	return "TRX-" + uuid.New().String()
}

// Midtrans caps item names at 50 characters.
func truncateItemName(name string) string {
	if len(name) > 50 {
		return name[:50]
	}
	return name
}
