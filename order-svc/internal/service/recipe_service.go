package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

type RecipeServiceInterface interface {
	Create(ctx context.Context, principal *access.Principal, rec *domain.Recipe) error
	List(ctx context.Context, principal *access.Principal, restaurantID int) ([]domain.Recipe, error)
	Get(ctx context.Context, principal *access.Principal, restaurantID, recipeID int) (*domain.Recipe, error)
	Update(ctx context.Context, principal *access.Principal, rec *domain.Recipe) error
	Delete(ctx context.Context, principal *access.Principal, restaurantID, recipeID int) error
}

type RecipeService struct {
	recipes     RecipeRepository
	restaurants RestaurantRepository
	access      access.EvaluatorInterface
}

var _ RecipeServiceInterface = (*RecipeService)(nil)

func NewRecipeService(recipes RecipeRepository, restaurants RestaurantRepository, evaluator access.EvaluatorInterface) *RecipeService {
	return &RecipeService{recipes: recipes, restaurants: restaurants, access: evaluator}
}

func validateRecipe(rec *domain.Recipe) error {
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return fmt.Errorf("%w: recipe title is required", domain.ErrInvalidRequest)
	}
	if rec.PrepTime < 0 || rec.CookTime < 0 || rec.Servings < 0 {
		return fmt.Errorf("%w: times and servings cannot be negative", domain.ErrInvalidRequest)
	}
	return domain.ValidatePrice(rec.Price)
}

// canReadMenu lets any signed-in user browse an approved restaurant's menu.
func (s *RecipeService) canReadMenu(ctx context.Context, principal *access.Principal, restaurantID int) error {
	if err := requireActive(principal); err != nil {
		return err
	}
	rest, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	if rest.ApprovalStatus == domain.ApprovalApproved {
		return nil
	}
	return s.access.Require(ctx, principal, access.ReadRestaurant, restaurantID)
}

func (s *RecipeService) Create(ctx context.Context, principal *access.Principal, rec *domain.Recipe) error {
	if err := s.access.Require(ctx, principal, access.EditMenu, rec.RestaurantID); err != nil {
		return err
	}
	if err := validateRecipe(rec); err != nil {
		return err
	}
	return s.recipes.CreateRecipe(ctx, rec)
}

func (s *RecipeService) List(ctx context.Context, principal *access.Principal, restaurantID int) ([]domain.Recipe, error) {
	if err := s.canReadMenu(ctx, principal, restaurantID); err != nil {
		return nil, err
	}
	return s.recipes.ListRecipes(ctx, restaurantID)
}

func (s *RecipeService) Get(ctx context.Context, principal *access.Principal, restaurantID, recipeID int) (*domain.Recipe, error) {
	if err := s.canReadMenu(ctx, principal, restaurantID); err != nil {
		return nil, err
	}
	return s.recipes.GetRecipe(ctx, restaurantID, recipeID)
}

func (s *RecipeService) Update(ctx context.Context, principal *access.Principal, rec *domain.Recipe) error {
	if err := s.access.Require(ctx, principal, access.EditMenu, rec.RestaurantID); err != nil {
		return err
	}
	if err := validateRecipe(rec); err != nil {
		return err
	}
	return s.recipes.UpdateRecipe(ctx, rec)
}

func (s *RecipeService) Delete(ctx context.Context, principal *access.Principal, restaurantID, recipeID int) error {
	if err := s.access.Require(ctx, principal, access.EditMenu, restaurantID); err != nil {
		return err
	}
	affected, err := s.recipes.DeleteRecipe(ctx, restaurantID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("recipe %d: %w", recipeID, domain.ErrNotFound)
	}
	return nil
}
