package storage

import (
	"context"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/lib/pq"
)

const recipeColumns = `id, restaurant_id, title, COALESCE(description, ''), COALESCE(ingredients, ''),
	COALESCE(instructions, ''), prep_time, cook_time, servings, price, COALESCE(image_url, ''),
	is_available, created_at, updated_at`

func scanRecipe(row rowScanner) (*domain.Recipe, error) {
	var rec domain.Recipe
	err := row.Scan(&rec.ID, &rec.RestaurantID, &rec.Title, &rec.Description, &rec.Ingredients,
		&rec.Instructions, &rec.PrepTime, &rec.CookTime, &rec.Servings, &rec.Price, &rec.ImageURL,
		&rec.IsAvailable, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) CreateRecipe(ctx context.Context, rec *domain.Recipe) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO recipes (restaurant_id, title, description, ingredients, instructions,
			prep_time, cook_time, servings, price, image_url, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		rec.RestaurantID, rec.Title, rec.Description, rec.Ingredients, rec.Instructions,
		rec.PrepTime, rec.CookTime, rec.Servings, rec.Price, rec.ImageURL, rec.IsAvailable,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	return mapError(err, "recipe")
}

func (r *PostgresRepository) GetRecipe(ctx context.Context, restaurantID, recipeID int) (*domain.Recipe, error) {
	rec, err := scanRecipe(r.conn(ctx).QueryRowContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE id = $1 AND restaurant_id = $2", recipeID, restaurantID))
	return rec, mapError(err, "recipe")
}

func (r *PostgresRepository) ListRecipes(ctx context.Context, restaurantID int) ([]domain.Recipe, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE restaurant_id = $1 ORDER BY created_at DESC", restaurantID)
	if err != nil {
		return nil, mapError(err, "list recipes")
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, mapError(err, "scan recipe")
		}
		recipes = append(recipes, *rec)
	}
	return recipes, rows.Err()
}

// GetRecipesByIDs loads the recipes of one restaurant keyed by id.
// Ids belonging to other restaurants are absent from the result.
func (r *PostgresRepository) GetRecipesByIDs(ctx context.Context, restaurantID int, ids []int) (map[int]domain.Recipe, error) {
	wanted := make([]int64, 0, len(ids))
	for _, id := range ids {
		wanted = append(wanted, int64(id))
	}

	rows, err := r.conn(ctx).QueryContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE restaurant_id = $1 AND id = ANY($2)",
		restaurantID, pq.Array(wanted))
	if err != nil {
		return nil, mapError(err, "load recipes")
	}
	defer rows.Close()

	recipes := make(map[int]domain.Recipe, len(ids))
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, mapError(err, "scan recipe")
		}
		recipes[rec.ID] = *rec
	}
	return recipes, rows.Err()
}

func (r *PostgresRepository) UpdateRecipe(ctx context.Context, rec *domain.Recipe) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		UPDATE recipes
		SET title = $1, description = $2, ingredients = $3, instructions = $4, prep_time = $5,
			cook_time = $6, servings = $7, price = $8, image_url = $9, is_available = $10, updated_at = NOW()
		WHERE id = $11 AND restaurant_id = $12
		RETURNING created_at, updated_at`,
		rec.Title, rec.Description, rec.Ingredients, rec.Instructions, rec.PrepTime,
		rec.CookTime, rec.Servings, rec.Price, rec.ImageURL, rec.IsAvailable, rec.ID, rec.RestaurantID,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	return mapError(err, "recipe")
}

func (r *PostgresRepository) DeleteRecipe(ctx context.Context, restaurantID, recipeID int) (int64, error) {
	res, err := r.conn(ctx).ExecContext(ctx,
		"DELETE FROM recipes WHERE id = $1 AND restaurant_id = $2", recipeID, restaurantID)
	if err != nil {
		return 0, mapError(err, "delete recipe")
	}
	return res.RowsAffected()
}
