package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/repository"
	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

type mockOrderStore struct {
	orders   map[string]*models.Order
	messages []*models.OutboxMessage
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[string]*models.Order)}
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order, msgs []*models.OutboxMessage) error {
	m.orders[order.ID] = order
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (m *mockOrderStore) GetAll(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderStore) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, msg *models.OutboxMessage) error {
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	if msg != nil {
		m.messages = append(m.messages, msg)
	}
	return nil
}

func (m *mockOrderStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderStore) Count(ctx context.Context) (int, error) {
	return len(m.orders), nil
}

func (m *mockOrderStore) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	counts := make(map[models.OrderStatus]int)
	for _, o := range m.orders {
		counts[o.Status]++
	}
	return counts, nil
}

type mockProductStore struct {
	products map[string]*models.Product
}

func (m *mockProductStore) GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	var out []*models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockDiscountStore struct {
	discounts map[string]*models.Discount
}

func (m *mockDiscountStore) ActiveForProducts(ctx context.Context, productIDs []string, at time.Time) (map[string]*models.Discount, error) {
	out := make(map[string]*models.Discount)
	for _, id := range productIDs {
		if d, ok := m.discounts[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T) (*OrderService, *mockOrderStore, *mockProductStore, *mockDiscountStore) {
	t.Helper()

	orders := newMockOrderStore()
	products := &mockProductStore{products: map[string]*models.Product{
		"prd-ring": {
			ID:       "prd-ring",
			Name:     "Anillo de plata",
			Image:    "ring.jpg",
			Price:    dec("45.00"),
			IsActive: true,
		},
		"prd-earrings": {
			ID:       "prd-earrings",
			Name:     "Aretes de cobre",
			Image:    "earrings.jpg",
			Price:    dec("20.00"),
			IsActive: true,
		},
		"prd-retired": {
			ID:       "prd-retired",
			Name:     "Collar descontinuado",
			Price:    dec("30.00"),
			IsActive: false,
		},
	}}
	discounts := &mockDiscountStore{discounts: map[string]*models.Discount{
		"prd-earrings": {
			ID:    "dsc-10off",
			Type:  models.DiscountTypePercentage,
			Value: dec("10"),
		},
	}}

	svc := NewOrderService(orders, products, discounts, logger.NewNop())
	return svc, orders, products, discounts
}

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID:        "usr-1",
		CustomerName:  "Ana Pérez",
		CustomerEmail: "ana@example.com",
		Items: []CreateOrderItem{
			{ProductID: "prd-ring", Quantity: 1},
			{ProductID: "prd-earrings", Quantity: 2},
		},
	}
}

func TestCreateOrderComputesTotal(t *testing.T) {
	svc, orders, _, _ := setup(t)

	order, err := svc.CreateOrder(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, order)

	// 45 + 2 * 18 (10% off 20.00)
	assert.True(t, dec("81.00").Equal(order.TotalAmount), "got %s", order.TotalAmount)
	assert.Equal(t, models.OrderStatusPendiente, order.Status)
	require.Len(t, order.Items, 2)

	ring := order.Items[0]
	assert.True(t, dec("45.00").Equal(ring.OriginalPrice))
	assert.True(t, dec("45.00").Equal(ring.FinalPrice))
	assert.Nil(t, ring.DiscountType)

	earrings := order.Items[1]
	assert.True(t, dec("20.00").Equal(earrings.OriginalPrice))
	assert.True(t, dec("18.00").Equal(earrings.FinalPrice))
	require.NotNil(t, earrings.DiscountType)
	assert.Equal(t, "percentage", *earrings.DiscountType)
	assert.True(t, earrings.DiscountValue.Valid)

	_, saved := orders.orders[order.ID]
	assert.True(t, saved)
}

func TestCreateOrderWritesOrderCreatedEvent(t *testing.T) {
	svc, orders, _, _ := setup(t)

	order, err := svc.CreateOrder(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, orders.messages, 1)
	assert.Equal(t, models.EventOrderCreated, orders.messages[0].EventType)
	assert.Equal(t, order.ID, orders.messages[0].AggregateID)
	assert.Equal(t, models.OutboxStatusPending, orders.messages[0].Status)
}

func TestCreateOrderSnapshotsContactAndShipping(t *testing.T) {
	svc, _, _, _ := setup(t)

	req := validRequest()
	req.CustomerPhone = "555-123-4567"
	req.Notes = "Envolver para regalo"
	req.ShippingAddress = &ShippingAddress{
		Address: "Calle 23 #456",
		City:    "La Habana",
		State:   "La Habana",
		ZipCode: "10400",
		Country: "Cuba",
	}

	order, err := svc.CreateOrder(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, order.CustomerPhone)
	assert.Equal(t, "555-123-4567", *order.CustomerPhone)
	require.NotNil(t, order.Notes)
	assert.Equal(t, "Envolver para regalo", *order.Notes)
	assert.True(t, order.HasShipping())
	assert.Equal(t, "La Habana", *order.ShippingCity)
}

func TestCreateOrderEmptyItemsFails(t *testing.T) {
	svc, orders, _, _ := setup(t)

	req := validRequest()
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, orders.orders)
	assert.Empty(t, orders.messages)
}

func TestCreateOrderUnknownProductFails(t *testing.T) {
	svc, orders, _, _ := setup(t)

	req := validRequest()
	req.Items = append(req.Items, CreateOrderItem{ProductID: "prd-missing", Quantity: 1})

	_, err := svc.CreateOrder(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, orders.orders, "no partial order may be written")
}

func TestCreateOrderInactiveProductFails(t *testing.T) {
	svc, orders, _, _ := setup(t)

	req := validRequest()
	req.Items = []CreateOrderItem{{ProductID: "prd-retired", Quantity: 1}}

	_, err := svc.CreateOrder(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, orders.orders)
}

func TestCreateOrderNonPositiveQuantityFails(t *testing.T) {
	svc, _, _, _ := setup(t)

	req := validRequest()
	req.Items[0].Quantity = 0

	_, err := svc.CreateOrder(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateOrderStatusOverwrites(t *testing.T) {
	svc, orders, _, _ := setup(t)

	order, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{
		models.OrderStatusEnviado,
		models.OrderStatusCancelado,
		// cancelled orders stay mutable for admin corrections
		models.OrderStatusEntregado,
		models.OrderStatusPendiente,
	} {
		updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, status, orders.orders[order.ID].Status)
	}
}

func TestUpdateOrderStatusWritesEvent(t *testing.T) {
	svc, orders, _, _ := setup(t)

	order, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusAceptado)
	require.NoError(t, err)

	require.Len(t, orders.messages, 2)
	assert.Equal(t, models.EventOrderStatusChanged, orders.messages[1].EventType)
}

func TestUpdateOrderStatusNoopWritesNoEvent(t *testing.T) {
	svc, orders, _, _ := setup(t)

	order, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusPendiente)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendiente, updated.Status)
	assert.Len(t, orders.messages, 1, "only the order_created event expected")
}

func TestUpdateOrderStatusUnknownLabelFails(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.UpdateOrderStatus(context.Background(), "ord-x", models.OrderStatus("shipped"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateOrderStatusMissingOrderFails(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.UpdateOrderStatus(context.Background(), "ord-missing", models.OrderStatusAceptado)

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	svc, orders, _, _ := setup(t)

	order, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))
	assert.Empty(t, orders.orders)

	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), order.ID), repository.ErrNotFound)
}
