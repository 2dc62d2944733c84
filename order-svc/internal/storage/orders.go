package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/lib/pq"
)

var ErrNoTransaction = errors.New("row lock requested outside a transaction")

const orderColumns = `o.id, o.customer_id, o.restaurant_id, o.status, o.total_amount, COALESCE(o.notes, ''),
	o.created_at, o.updated_at`

func scanOrder(row rowScanner, extra ...any) (*domain.Order, error) {
	var order domain.Order
	dest := []any{&order.ID, &order.CustomerID, &order.RestaurantID, &order.Status, &order.TotalAmount,
		&order.Notes, &order.CreatedAt, &order.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder inserts the order and its frozen items.
// Callers run it inside TxManager.RunInTx so both inserts commit together.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	q := r.conn(ctx)
	if err := q.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, restaurant_id, status, total_amount, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, created_at, updated_at`,
		order.CustomerID, order.RestaurantID, order.Status, order.TotalAmount, order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return mapError(err, "order")
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := q.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, recipe_id, quantity, unit_price, subtotal, notes)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			RETURNING id`,
			order.ID, item.RecipeID, item.Quantity, item.UnitPrice, item.Subtotal, item.Notes,
		).Scan(&item.ID); err != nil {
			return mapError(err, "order item")
		}
	}
	return nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id int) (*domain.Order, error) {
	return r.getOrder(ctx, "SELECT "+orderColumns+" FROM orders o WHERE o.id = $1", id)
}

// GetOrderForUpdate locks the order row until the surrounding transaction ends,
// serializing concurrent status changes of the same order.
func (r *PostgresRepository) GetOrderForUpdate(ctx context.Context, id int) (*domain.Order, error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); !ok {
		return nil, ErrNoTransaction
	}
	return r.getOrder(ctx, "SELECT "+orderColumns+" FROM orders o WHERE o.id = $1 FOR UPDATE", id)
}

func (r *PostgresRepository) getOrder(ctx context.Context, query string, id int) (*domain.Order, error) {
	order, err := scanOrder(r.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "order")
	}
	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id int, status domain.OrderStatus, notes *string) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE orders
		SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		WHERE id = $3`, status, notes, id)
	if err != nil {
		return mapError(err, "update order status")
	}
	return requireAffected(res, "order")
}

func (r *PostgresRepository) ListOrdersByCustomer(ctx context.Context, customerID int) ([]domain.Order, error) {
	return r.listOrders(ctx, true, `
		SELECT `+orderColumns+`, rest.name
		FROM orders o
		JOIN restaurants rest ON rest.id = o.restaurant_id
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC, o.id DESC`, customerID)
}

func (r *PostgresRepository) ListOrdersByRestaurant(ctx context.Context, restaurantID int, status *domain.OrderStatus) ([]domain.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders o WHERE o.restaurant_id = $1"
	args := []any{restaurantID}
	if status != nil {
		query += " AND o.status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	return r.listOrders(ctx, false, query, args...)
}

func (r *PostgresRepository) listOrders(ctx context.Context, withRestaurantName bool, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list orders")
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var restaurantName string
		var extra []any
		if withRestaurantName {
			extra = append(extra, &restaurantName)
		}
		order, err := scanOrder(rows, extra...)
		if err != nil {
			return nil, mapError(err, "scan order")
		}
		order.RestaurantName = restaurantName
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	result := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, *order)
	}
	return result, nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		order.Items = []domain.OrderItem{}
		byID[order.ID] = order
		ids = append(ids, int64(order.ID))
	}

	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT id, order_id, recipe_id, quantity, unit_price, subtotal, COALESCE(notes, '')
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return mapError(err, "load order items")
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.RecipeID, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.Notes); err != nil {
			return mapError(err, "scan order item")
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}
