package storage

import (
	"context"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

func (r *PostgresRepository) FindMembership(ctx context.Context, userID, restaurantID int) (*domain.Membership, error) {
	var m domain.Membership
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT id, user_id, restaurant_id, role, created_at
		FROM memberships
		WHERE user_id = $1 AND restaurant_id = $2`, userID, restaurantID).
		Scan(&m.ID, &m.UserID, &m.RestaurantID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err, "membership")
	}
	return &m, nil
}

func (r *PostgresRepository) GetMembership(ctx context.Context, id int) (*domain.Membership, error) {
	var m domain.Membership
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT id, user_id, restaurant_id, role, created_at
		FROM memberships
		WHERE id = $1`, id).
		Scan(&m.ID, &m.UserID, &m.RestaurantID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err, "membership")
	}
	return &m, nil
}

// CreateMembership fails with domain.ErrConflict when the user already belongs to the restaurant.
func (r *PostgresRepository) CreateMembership(ctx context.Context, m *domain.Membership) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO memberships (user_id, restaurant_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		m.UserID, m.RestaurantID, m.Role,
	).Scan(&m.ID, &m.CreatedAt)
	return mapError(err, "membership")
}

func (r *PostgresRepository) ListMemberships(ctx context.Context, restaurantID int) ([]domain.Membership, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT m.id, m.user_id, m.restaurant_id, m.role, m.created_at,
			u.username, u.email, u.first_name, u.last_name
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.restaurant_id = $1
		ORDER BY m.created_at`, restaurantID)
	if err != nil {
		return nil, mapError(err, "list memberships")
	}
	defer rows.Close()

	memberships := []domain.Membership{}
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.RestaurantID, &m.Role, &m.CreatedAt,
			&m.Username, &m.Email, &m.FirstName, &m.LastName); err != nil {
			return nil, mapError(err, "scan membership")
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *PostgresRepository) UpdateMembershipRole(ctx context.Context, id int, role domain.OrgRole) error {
	res, err := r.conn(ctx).ExecContext(ctx, "UPDATE memberships SET role = $1 WHERE id = $2", role, id)
	if err != nil {
		return mapError(err, "update membership")
	}
	return requireAffected(res, "membership")
}

func (r *PostgresRepository) DeleteMembership(ctx context.Context, id int) error {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM memberships WHERE id = $1", id)
	if err != nil {
		return mapError(err, "delete membership")
	}
	return requireAffected(res, "membership")
}
