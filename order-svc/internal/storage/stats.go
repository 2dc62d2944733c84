package storage

import (
	"context"
	"fmt"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

func (r *PostgresRepository) CountUsersByRole(ctx context.Context) (map[domain.SystemRole]int, error) {
	counts := map[domain.SystemRole]int{}
	err := r.countGrouped(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role", func(key string, n int) {
		counts[domain.SystemRole(key)] = n
	})
	return counts, err
}

func (r *PostgresRepository) CountRestaurantsByStatus(ctx context.Context) (map[domain.ApprovalStatus]int, error) {
	counts := map[domain.ApprovalStatus]int{}
	err := r.countGrouped(ctx, "SELECT approval_status, COUNT(*) FROM restaurants GROUP BY approval_status", func(key string, n int) {
		counts[domain.ApprovalStatus(key)] = n
	})
	return counts, err
}

func (r *PostgresRepository) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	counts := map[domain.OrderStatus]int{}
	err := r.countGrouped(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status", func(key string, n int) {
		counts[domain.OrderStatus(key)] = n
	})
	return counts, err
}

func (r *PostgresRepository) countGrouped(ctx context.Context, query string, add func(key string, n int)) error {
	rows, err := r.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		add(key, n)
	}
	return rows.Err()
}
