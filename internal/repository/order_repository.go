package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/RbroH99/les-sha-accesories/internal/database"
	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// OrderRepository handles database operations for orders and their line
// item snapshots.
type OrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *database.Database, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone,
	shipping_address, shipping_city, shipping_state, shipping_zip_code, shipping_country,
	total_amount, status, notes, created_at, updated_at`

// Create inserts the order, its item snapshots and the accompanying
// outbox messages in a single transaction, so a failure at any point
// leaves no partial order behind.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, msgs []*models.OutboxMessage) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	orderQuery := `
		INSERT INTO orders (id, user_id, customer_name, customer_email, customer_phone,
			shipping_address, shipping_city, shipping_state, shipping_zip_code, shipping_country,
			total_amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.UserID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ShippingAddr,
		order.ShippingCity,
		order.ShippingState,
		order.ShippingZip,
		order.ShippingCtry,
		order.TotalAmount,
		order.Status,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, image, quantity,
			original_price, final_price, discount_type, discount_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	for _, item := range order.Items {
		item.OrderID = order.ID

		err = tx.QueryRowContext(
			ctx,
			itemQuery,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Image,
			item.Quantity,
			item.OriginalPrice,
			item.FinalPrice,
			item.DiscountType,
			item.DiscountValue,
		).Scan(&item.ID)

		if err != nil {
			r.logger.Error("Failed to create order item", "error", err, "orderID", order.ID, "productID", item.ProductID)
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
	}

	for _, msg := range msgs {
		if err := createOutboxMessageInTx(ctx, tx, msg); err != nil {
			r.logger.Error("Failed to create outbox message", "error", err, "orderID", order.ID)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit order creation", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves an order and its items by ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order by ID", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	items, err := r.loadItems(ctx, []string{id})

	if err != nil {
		return nil, err
	}

	order.Items = items[id]
	return &order, nil
}

// GetAll retrieves orders with their items, newest first
func (r *OrderRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var orders []*models.Order
	err := r.db.DB.SelectContext(ctx, &orders, query, limit, offset)

	if err != nil {
		r.logger.Error("Failed to get orders", "error", err, "limit", limit, "offset", offset)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := r.loadItems(ctx, ids)

	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, nil
}

// GetByUserID retrieves all orders for a specific customer
func (r *OrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var orders []*models.Order
	err := r.db.DB.SelectContext(ctx, &orders, query, userID, limit, offset)

	if err != nil {
		r.logger.Error("Failed to get orders by user ID", "error", err, "userID", userID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := r.loadItems(ctx, ids)

	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, nil
}

// UpdateStatus overwrites the order status and records the status-change
// outbox message in the same transaction.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, msg *models.OutboxMessage) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.ExecContext(ctx, query, status, models.GetCurrentTime(), orderID)

	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "orderID", orderID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	if msg != nil {
		if err := createOutboxMessageInTx(ctx, tx, msg); err != nil {
			r.logger.Error("Failed to create outbox message", "error", err, "orderID", orderID)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// Delete removes an order; item snapshots cascade
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)

	if err != nil {
		r.logger.Error("Failed to delete order", "error", err, "orderID", id)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count counts the total number of orders
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders`)

	if err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return count, nil
}

// CountByStatus returns the number of orders in each status
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	rows, err := r.db.DB.QueryxContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)

	if err != nil {
		r.logger.Error("Failed to count orders by status", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer rows.Close()

	counts := make(map[models.OrderStatus]int)

	for rows.Next() {
		var status models.OrderStatus
		var count int

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
		}

		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return counts, nil
}

// loadItems fetches the item snapshots for the given order IDs in one query
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, image, quantity,
		       original_price, final_price, discount_type, discount_value
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`

	var items []*models.OrderItem
	err := r.db.DB.SelectContext(ctx, &items, query, pq.Array(orderIDs))

	if err != nil {
		r.logger.Error("Failed to load order items", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	byOrder := make(map[string][]*models.OrderItem, len(orderIDs))

	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	return byOrder, nil
}

func createOutboxMessageInTx(ctx context.Context, tx *sqlx.Tx, msg *models.OutboxMessage) error {
	query := `
		INSERT INTO outbox_messages (aggregate_type, aggregate_id, event_type, payload, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64

	err := tx.QueryRowContext(
		ctx,
		query,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.CreatedAt,
		msg.Status,
	).Scan(&id)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	msg.ID = id
	return nil
}
