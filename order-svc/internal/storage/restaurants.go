package storage

import (
	"context"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

const restaurantColumns = `r.id, r.name, COALESCE(r.address, ''), COALESCE(r.phone, ''), COALESCE(r.cuisine_type, ''),
	COALESCE(r.description, ''), COALESCE(r.image_url, ''), r.approval_status, r.created_at, r.updated_at`

func scanRestaurant(row rowScanner) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := row.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.Phone, &rest.CuisineType,
		&rest.Description, &rest.ImageURL, &rest.ApprovalStatus, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *PostgresRepository) CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO restaurants (name, address, phone, cuisine_type, description, image_url, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		rest.Name, rest.Address, rest.Phone, rest.CuisineType, rest.Description, rest.ImageURL, rest.ApprovalStatus,
	).Scan(&rest.ID, &rest.CreatedAt, &rest.UpdatedAt)
	return mapError(err, "restaurant")
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.conn(ctx).QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants r WHERE r.id = $1", id))
	return rest, mapError(err, "restaurant")
}

// ListRestaurants returns every restaurant, or only those in status when it is set.
func (r *PostgresRepository) ListRestaurants(ctx context.Context, status *domain.ApprovalStatus) ([]domain.Restaurant, error) {
	query := "SELECT " + restaurantColumns + " FROM restaurants r"
	args := []any{}
	if status != nil {
		query += " WHERE r.approval_status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY r.created_at DESC"

	return r.queryRestaurants(ctx, query, args...)
}

func (r *PostgresRepository) ListRestaurantsForUser(ctx context.Context, userID int) ([]domain.Restaurant, error) {
	return r.queryRestaurants(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants r
		JOIN memberships m ON m.restaurant_id = r.id
		WHERE m.user_id = $1
		ORDER BY r.created_at DESC`, userID)
}

func (r *PostgresRepository) queryRestaurants(ctx context.Context, query string, args ...any) ([]domain.Restaurant, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list restaurants")
	}
	defer rows.Close()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, mapError(err, "scan restaurant")
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

func (r *PostgresRepository) UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		UPDATE restaurants
		SET name = $1, address = $2, phone = $3, cuisine_type = $4, description = $5, image_url = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING approval_status, created_at, updated_at`,
		rest.Name, rest.Address, rest.Phone, rest.CuisineType, rest.Description, rest.ImageURL, rest.ID,
	).Scan(&rest.ApprovalStatus, &rest.CreatedAt, &rest.UpdatedAt)
	return mapError(err, "restaurant")
}

func (r *PostgresRepository) UpdateApprovalStatus(ctx context.Context, id int, status domain.ApprovalStatus) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE restaurants SET approval_status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return mapError(err, "update approval status")
	}
	return requireAffected(res, "restaurant")
}

// DeleteRestaurant removes the restaurant; recipes, memberships and orders go with it.
func (r *PostgresRepository) DeleteRestaurant(ctx context.Context, id int) (int64, error) {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM restaurants WHERE id = $1", id)
	if err != nil {
		return 0, mapError(err, "delete restaurant")
	}
	return res.RowsAffected()
}
