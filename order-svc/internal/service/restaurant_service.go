package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

type RestaurantServiceInterface interface {
	Create(ctx context.Context, principal *access.Principal, rest *domain.Restaurant) error
	Register(ctx context.Context, principal *access.Principal, rest *domain.Restaurant) error
	List(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error)
	ListPublic(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error)
	ListMine(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error)
	ListPending(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error)
	Get(ctx context.Context, principal *access.Principal, id int) (*domain.Restaurant, error)
	Update(ctx context.Context, principal *access.Principal, rest *domain.Restaurant) error
	Delete(ctx context.Context, principal *access.Principal, id int) error
	Moderate(ctx context.Context, principal *access.Principal, id int, target domain.ApprovalStatus) (*domain.Restaurant, error)
}

type RestaurantService struct {
	restaurants RestaurantRepository
	memberships MembershipRepository
	tx          TxManager
	access      access.EvaluatorInterface
}

var _ RestaurantServiceInterface = (*RestaurantService)(nil)

func NewRestaurantService(restaurants RestaurantRepository, memberships MembershipRepository, tx TxManager, evaluator access.EvaluatorInterface) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, memberships: memberships, tx: tx, access: evaluator}
}

func validateRestaurant(rest *domain.Restaurant) error {
	rest.Name = strings.TrimSpace(rest.Name)
	if rest.Name == "" {
		return fmt.Errorf("%w: restaurant name is required", domain.ErrInvalidRequest)
	}
	if len(rest.Name) > 100 {
		return fmt.Errorf("%w: restaurant name must be at most 100 characters", domain.ErrInvalidRequest)
	}
	return nil
}

// Create is the superadmin path; the restaurant starts PENDING like any other.
func (s *RestaurantService) Create(ctx context.Context, principal *access.Principal, rest *domain.Restaurant) error {
	if err := s.access.Require(ctx, principal, access.CreateRestaurant, access.NoRestaurant); err != nil {
		return err
	}
	if err := validateRestaurant(rest); err != nil {
		return err
	}
	rest.ApprovalStatus = domain.ApprovalPending
	return s.restaurants.CreateRestaurant(ctx, rest)
}

// Register lets a restaurant owner submit a restaurant for approval.
// The owner becomes its RESTAURANT_ADMIN in the same transaction.
func (s *RestaurantService) Register(ctx context.Context, principal *access.Principal, rest *domain.Restaurant) error {
	if err := requireActive(principal); err != nil {
		return err
	}
	if principal.Role != domain.RoleRestaurantOwner {
		return fmt.Errorf("%w: only restaurant owners can register restaurants", domain.ErrForbidden)
	}
	if err := validateRestaurant(rest); err != nil {
		return err
	}
	return s.registerWithAdmin(ctx, principal.UserID, rest)
}

func (s *RestaurantService) registerWithAdmin(ctx context.Context, ownerID int, rest *domain.Restaurant) error {
	rest.ApprovalStatus = domain.ApprovalPending
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.restaurants.CreateRestaurant(ctx, rest); err != nil {
			return err
		}
		return s.memberships.CreateMembership(ctx, &domain.Membership{
			UserID:       ownerID,
			RestaurantID: rest.ID,
			Role:         domain.OrgRoleAdmin,
		})
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "[order-svc] restaurant registered", "restaurant_id", rest.ID, "owner_id", ownerID)
	return nil
}

func (s *RestaurantService) List(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}
	return s.restaurants.ListRestaurants(ctx, nil)
}

func (s *RestaurantService) ListPublic(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}
	approved := domain.ApprovalApproved
	return s.restaurants.ListRestaurants(ctx, &approved)
}

func (s *RestaurantService) ListMine(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}
	return s.restaurants.ListRestaurantsForUser(ctx, principal.UserID)
}

func (s *RestaurantService) ListPending(ctx context.Context, principal *access.Principal) ([]domain.Restaurant, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}
	pending := domain.ApprovalPending
	return s.restaurants.ListRestaurants(ctx, &pending)
}

// Get shows approved restaurants to everyone signed in; the rest need read_restaurant.
func (s *RestaurantService) Get(ctx context.Context, principal *access.Principal, id int) (*domain.Restaurant, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}
	rest, err := s.restaurants.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	if rest.ApprovalStatus == domain.ApprovalApproved {
		return rest, nil
	}
	if err := s.access.Require(ctx, principal, access.ReadRestaurant, id); err != nil {
		return nil, err
	}
	return rest, nil
}

func (s *RestaurantService) Update(ctx context.Context, principal *access.Principal, rest *domain.Restaurant) error {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, rest.ID); err != nil {
		return err
	}
	if err := validateRestaurant(rest); err != nil {
		return err
	}

	current, err := s.restaurants.GetRestaurant(ctx, rest.ID)
	if err != nil {
		return err
	}
	// approval status only moves through moderation
	rest.ApprovalStatus = current.ApprovalStatus
	return s.restaurants.UpdateRestaurant(ctx, rest)
}

func (s *RestaurantService) Delete(ctx context.Context, principal *access.Principal, id int) error {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, id); err != nil {
		return err
	}
	affected, err := s.restaurants.DeleteRestaurant(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("restaurant %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Moderate approves, rejects or suspends a restaurant. Approve and reject
// only apply to PENDING restaurants; suspension applies from any status.
func (s *RestaurantService) Moderate(ctx context.Context, principal *access.Principal, id int, target domain.ApprovalStatus) (*domain.Restaurant, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}
	if target != domain.ApprovalApproved && target != domain.ApprovalRejected && target != domain.ApprovalSuspended {
		return nil, fmt.Errorf("%w: cannot moderate to %q", domain.ErrInvalidRequest, target)
	}

	var moderated *domain.Restaurant
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rest, err := s.restaurants.GetRestaurant(ctx, id)
		if err != nil {
			return err
		}
		if target != domain.ApprovalSuspended && rest.ApprovalStatus != domain.ApprovalPending {
			return fmt.Errorf("%w: restaurant is %s, not pending", domain.ErrInvalidRequest, rest.ApprovalStatus)
		}
		if err := s.restaurants.UpdateApprovalStatus(ctx, id, target); err != nil {
			return err
		}
		rest.ApprovalStatus = target
		moderated = rest
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "[order-svc] restaurant moderated",
		"restaurant_id", id, "status", target, "moderator_id", principal.UserID)
	return moderated, nil
}
