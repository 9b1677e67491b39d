// internal/services/payment_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokapasar/lokapasar-backend/internal/config"
	"github.com/lokapasar/lokapasar-backend/internal/models"
)

func TestMapNotificationStatus(t *testing.T) {
	tests := []struct {
		name              string
		transactionStatus string
		fraudStatus       string
		wantStatus        models.OrderStatus
		wantTransition    bool
	}{
		{"capture accepted", "capture", "accept", models.OrderStatusPaid, true},
		{"capture challenged", "capture", "challenge", models.OrderStatusPending, true},
		{"capture unknown fraud", "capture", "something_else", "", false},
		{"settlement", "settlement", "", models.OrderStatusPaid, true},
		{"deny", "deny", "", models.OrderStatusCancelled, true},
		{"cancel", "cancel", "", models.OrderStatusCancelled, true},
		{"expire", "expire", "", models.OrderStatusCancelled, true},
		{"pending", "pending", "", models.OrderStatusPending, true},
		{"refund is ignored", "refund", "", "", false},
		{"unknown status", "gibberish", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := MapNotificationStatus(tt.transactionStatus, tt.fraudStatus)
			assert.Equal(t, tt.wantTransition, ok)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestGroupCartItemsBySeller(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()

	items := []models.CartItem{
		{ProductID: uuid.New(), Quantity: 2, Price: 100, Product: models.Product{SellerID: sellerA}},
		{ProductID: uuid.New(), Quantity: 1, Price: 250, Product: models.Product{SellerID: sellerB}},
		{ProductID: uuid.New(), Quantity: 3, Price: 50, Product: models.Product{SellerID: sellerA}},
	}

	groups := GroupCartItemsBySeller(items)
	require.Len(t, groups, 2)

	require.Len(t, groups[sellerA], 2)
	require.Len(t, groups[sellerB], 1)

	// Each seller's order total covers only that seller's lines.
	assert.Equal(t, 350.0, CartTotal(groups[sellerA]))
	assert.Equal(t, 250.0, CartTotal(groups[sellerB]))
}

func TestGroupCartItemsBySellerEmpty(t *testing.T) {
	groups := GroupCartItemsBySeller(nil)
	assert.Empty(t, groups)
}

func TestTruncateItemName(t *testing.T) {
	short := "Vintage camera"
	assert.Equal(t, short, truncateItemName(short))

	long := "An extraordinarily long product name that keeps going well past the limit"
	got := truncateItemName(long)
	assert.Len(t, got, 50)
	assert.Equal(t, long[:50], got)
}

func TestSnapGrossAmount(t *testing.T) {
	// Fractional prices truncate per line item, and the session gross must be
	// the sum of those truncated values or the gateway rejects the request.
	priceA := 10.50
	priceB := 7.99

	items := []midtrans.ItemDetails{
		{Price: int64(priceA), Qty: 2},
		{Price: int64(priceB), Qty: 3},
	}

	assert.Equal(t, int64(41), snapGrossAmount(items))
	assert.Equal(t, int64(0), snapGrossAmount(nil))
}

func TestHandleNotificationWithoutServerKey(t *testing.T) {
	// With no server key the gateway cannot confirm the transaction, so the
	// notification must be rejected rather than trusted as-is.
	s := NewPaymentService(nil, &config.Config{}, nil, nil)

	err := s.HandleNotification(&PaymentNotification{
		OrderID:           "TRX-123",
		TransactionStatus: "settlement",
	})
	assert.ErrorIs(t, err, ErrTransactionMixed)
}

func TestHandleNotificationMissingOrderID(t *testing.T) {
	s := NewPaymentService(nil, &config.Config{}, nil, nil)

	err := s.HandleNotification(&PaymentNotification{TransactionStatus: "settlement"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransactionMixed)
}

func TestNewTransactionID(t *testing.T) {
	a := newTransactionID()
	b := newTransactionID()

	assert.True(t, len(a) > 4)
	assert.Contains(t, a, "TRX-")
	assert.NotEqual(t, a, b)
}
