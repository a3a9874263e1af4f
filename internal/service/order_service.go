package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/pricing"
	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// OrderStore persists orders. Implementations must write the order, its
// items and the outbox messages atomically.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order, msgs []*models.OutboxMessage) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.Order, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, msg *models.OutboxMessage) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
}

// ProductStore provides product lookups for checkout
type ProductStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
}

// DiscountStore resolves the applicable discount per product
type DiscountStore interface {
	ActiveForProducts(ctx context.Context, productIDs []string, at time.Time) (map[string]*models.Discount, error)
}

// OrderService handles order placement and lifecycle operations
type OrderService struct {
	orders    OrderStore
	products  ProductStore
	discounts DiscountStore
	logger    logger.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orders OrderStore, products ProductStore, discounts DiscountStore, logger logger.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		discounts: discounts,
		logger:    logger,
		now:       models.GetCurrentTime,
	}
}

// CreateOrderRequest is the checkout payload
type CreateOrderRequest struct {
	UserID          string            `json:"user_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone,omitempty"`
	ShippingAddress *ShippingAddress  `json:"shipping_address,omitempty"`
	Items           []CreateOrderItem `json:"items"`
	Notes           string            `json:"notes,omitempty"`
}

// ShippingAddress is the optional delivery destination snapshot
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// CreateOrderItem references a product and a quantity
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrder validates the checkout request, snapshots prices and
// persists the order, its items and the order-created event atomically.
// Nothing is written when validation fails.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.products.GetByIDs(ctx, productIDs)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range productIDs {
		p, ok := byID[id]
		if !ok || !p.IsActive {
			return nil, apperrors.NewInvalidInputError(fmt.Sprintf("product not found: %s", id))
		}
	}

	discounts, err := s.discounts.ActiveForProducts(ctx, productIDs, s.now())

	if err != nil {
		return nil, fmt.Errorf("failed to fetch discounts: %w", err)
	}

	order := models.NewOrder(req.UserID, req.CustomerName, req.CustomerEmail)

	if req.CustomerPhone != "" {
		phone := req.CustomerPhone
		order.CustomerPhone = &phone
	}

	if req.Notes != "" {
		notes := req.Notes
		order.Notes = &notes
	}

	if addr := req.ShippingAddress; addr != nil {
		order.ShippingAddr = &addr.Address
		order.ShippingCity = &addr.City
		order.ShippingState = &addr.State
		order.ShippingZip = &addr.ZipCode
		order.ShippingCtry = &addr.Country
	}

	total := decimal.Zero

	for _, reqItem := range req.Items {
		product := byID[reqItem.ProductID]
		discount := discounts[reqItem.ProductID]

		finalPrice := pricing.Resolve(product.Price, discount)

		item := &models.OrderItem{
			ProductID:     product.ID,
			Name:          product.Name,
			Image:         product.Image,
			Quantity:      reqItem.Quantity,
			OriginalPrice: product.Price.Round(2),
			FinalPrice:    finalPrice,
		}

		if discount != nil {
			discountType := string(discount.Type)
			item.DiscountType = &discountType
			item.DiscountValue = decimal.NewNullDecimal(discount.Value)
		}

		order.Items = append(order.Items, item)
		total = total.Add(item.Subtotal())
	}

	order.TotalAmount = total.Round(2)

	createdMsg, err := models.NewOrderCreatedEvent(order)

	if err != nil {
		return nil, fmt.Errorf("failed to build order created event: %w", err)
	}

	if err := s.orders.Create(ctx, order, []*models.OutboxMessage{createdMsg}); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		"orderID", order.ID,
		"userID", order.UserID,
		"items", len(order.Items),
		"total", order.TotalAmount)

	return order, nil
}

// UpdateOrderStatus overwrites the status of an order after validating
// the label against the closed status set and the transition table. The
// status change and its event are written in one transaction.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown order status: %q", newStatus))
	}

	order, err := s.orders.GetByID(ctx, orderID)

	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}

	if !order.Status.CanTransition(newStatus) {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, newStatus))
	}

	oldStatus := order.Status
	order.Status = newStatus

	statusMsg, err := models.NewOrderStatusChangedEvent(order, oldStatus)

	if err != nil {
		return nil, fmt.Errorf("failed to build status changed event: %w", err)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus, statusMsg); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		"orderID", orderID,
		"oldStatus", oldStatus,
		"newStatus", newStatus)

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetAllOrders retrieves orders with pagination
func (s *OrderService) GetAllOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	return s.orders.GetAll(ctx, limit, offset)
}

// GetOrdersByUser retrieves a customer's orders with pagination
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	return s.orders.GetByUserID(ctx, userID, limit, offset)
}

// DeleteOrder removes an order and its items
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// CountOrders counts all orders
func (s *OrderService) CountOrders(ctx context.Context) (int, error) {
	return s.orders.Count(ctx)
}

// CountByStatus returns per-status order counts
func (s *OrderService) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	return s.orders.CountByStatus(ctx)
}

func validateCreateOrder(req *CreateOrderRequest) error {
	if req.CustomerName == "" {
		return apperrors.NewInvalidInputError("customer_name is required")
	}

	if req.CustomerEmail == "" {
		return apperrors.NewInvalidInputError("customer_email is required")
	}

	if len(req.Items) == 0 {
		return apperrors.NewInvalidInputError("order must contain at least one item")
	}

	for _, item := range req.Items {
		if item.ProductID == "" {
			return apperrors.NewInvalidInputError("item product_id is required")
		}

		if item.Quantity <= 0 {
			return apperrors.NewInvalidInputError(
				fmt.Sprintf("item quantity must be positive for product %s", item.ProductID))
		}
	}

	return nil
}
