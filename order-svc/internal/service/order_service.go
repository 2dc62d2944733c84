package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

type OrderServiceInterface interface {
	Create(ctx context.Context, principal *access.Principal, input domain.CreateOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, principal *access.Principal, orderID int, input domain.StatusUpdateInput) (*domain.Order, error)
	ListMine(ctx context.Context, principal *access.Principal) ([]domain.Order, error)
	ListForRestaurant(ctx context.Context, principal *access.Principal, restaurantID int, status *domain.OrderStatus) ([]domain.Order, error)
	Get(ctx context.Context, principal *access.Principal, orderID int) (*domain.Order, error)
	QRCode(ctx context.Context, principal *access.Principal, orderID int) ([]byte, error)
}

type OrderService struct {
	orders      OrderRepository
	restaurants RestaurantRepository
	recipes     RecipeRepository
	tx          TxManager
	access      access.EvaluatorInterface
	events      *Dispatcher
	qr          QRGenerator
}

var _ OrderServiceInterface = (*OrderService)(nil)

func NewOrderService(
	orders OrderRepository,
	restaurants RestaurantRepository,
	recipes RecipeRepository,
	tx TxManager,
	evaluator access.EvaluatorInterface,
	events *Dispatcher,
	qr QRGenerator,
) *OrderService {
	return &OrderService{
		orders:      orders,
		restaurants: restaurants,
		recipes:     recipes,
		tx:          tx,
		access:      evaluator,
		events:      events,
		qr:          qr,
	}
}

// requireActive rejects missing and suspended principals.
func requireActive(principal *access.Principal) error {
	if principal == nil {
		return domain.ErrUnauthenticated
	}
	if principal.Role == domain.RoleSuspended {
		return fmt.Errorf("%w: account is suspended", domain.ErrForbidden)
	}
	return nil
}

func (s *OrderService) Create(ctx context.Context, principal *access.Principal, input domain.CreateOrderInput) (*domain.Order, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}
	if principal.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers can place orders", domain.ErrForbidden)
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for recipe %d must be at least 1", domain.ErrInvalidRequest, item.RecipeID)
		}
		if item.Quantity > domain.MaxItemQuantity {
			return nil, fmt.Errorf("%w: quantity for recipe %d must be at most %d", domain.ErrInvalidRequest, item.RecipeID, domain.MaxItemQuantity)
		}
	}

	order := &domain.Order{
		CustomerID:   principal.UserID,
		RestaurantID: input.RestaurantID,
		Status:       domain.StatusPending,
		Notes:        input.Notes,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		restaurant, err := s.restaurants.GetRestaurant(ctx, input.RestaurantID)
		if err != nil {
			return err
		}
		if !restaurant.ApprovalStatus.Orderable() {
			return fmt.Errorf("%w: cannot order from this restaurant, it is not currently available", domain.ErrInvalidRequest)
		}
		if len(input.Items) == 0 {
			return fmt.Errorf("%w: order must contain at least one item", domain.ErrInvalidRequest)
		}
		order.RestaurantName = restaurant.Name

		ids := make([]int, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.RecipeID)
		}
		recipes, err := s.recipes.GetRecipesByIDs(ctx, restaurant.ID, ids)
		if err != nil {
			return err
		}

		order.Items = make([]domain.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			recipe, ok := recipes[item.RecipeID]
			if !ok {
				return fmt.Errorf("recipe %d in this restaurant: %w", item.RecipeID, domain.ErrNotFound)
			}
			if !recipe.IsAvailable {
				return fmt.Errorf("%w: %s is not available", domain.ErrInvalidRequest, recipe.Title)
			}
			order.Items = append(order.Items, domain.OrderItem{
				RecipeID:  recipe.ID,
				Quantity:  item.Quantity,
				UnitPrice: recipe.Price,
				Subtotal:  domain.LineSubtotal(recipe.Price, item.Quantity),
				Notes:     item.Notes,
			})
		}
		order.TotalAmount = domain.SumSubtotals(order.Items)
		if order.TotalAmount.GreaterThan(domain.MaxAmount) {
			return fmt.Errorf("%w: order total exceeds %s", domain.ErrInvalidRequest, domain.MaxAmount.StringFixed(2))
		}

		return s.orders.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "[order-svc] order created",
		"order_id", order.ID, "restaurant_id", order.RestaurantID, "customer_id", order.CustomerID,
		"total", order.TotalAmount.StringFixed(2))
	s.events.Send(domain.RestaurantChannel(order.RestaurantID), domain.EventNewOrder, order)
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, principal *access.Principal, orderID int, input domain.StatusUpdateInput) (*domain.Order, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidRequest, input.Status)
	}

	var updated *domain.Order
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.authorizeStatusChange(ctx, principal, order, input.Status); err != nil {
			return err
		}
		if err := order.Status.Transition(input.Status); err != nil {
			return err
		}
		if err := s.orders.UpdateOrderStatus(ctx, order.ID, input.Status, input.Notes); err != nil {
			return err
		}

		order.Status = input.Status
		if input.Notes != nil {
			order.Notes = *input.Notes
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "[order-svc] order status changed",
		"order_id", updated.ID, "status", updated.Status, "actor_id", principal.UserID)
	s.events.Send(domain.CustomerChannel(updated.CustomerID), domain.EventOrderUpdate, updated)
	return updated, nil
}

// authorizeStatusChange lets restaurant staff and superadmins drive the order,
// and lets the ordering customer cancel it while pending or confirm receipt.
func (s *OrderService) authorizeStatusChange(ctx context.Context, principal *access.Principal, order *domain.Order, target domain.OrderStatus) error {
	if principal.Role == domain.RoleSuperadmin {
		return nil
	}

	_, isStaff, err := s.access.StaffRole(ctx, principal, order.RestaurantID)
	if err != nil {
		return err
	}
	if isStaff {
		return nil
	}

	if order.CustomerID == principal.UserID {
		// only the restaurant cancels a paid order
		if target == domain.StatusCancelled && order.Status == domain.StatusPaid {
			return fmt.Errorf("%w: a paid order can only be cancelled by the restaurant", domain.ErrForbidden)
		}
		if target == domain.StatusCancelled || target == domain.StatusCompleted {
			return nil
		}
		return fmt.Errorf("%w: customers may only cancel a pending order or confirm receipt", domain.ErrForbidden)
	}

	return fmt.Errorf("order %d: %w", order.ID, domain.ErrNotFound)
}

func (s *OrderService) ListMine(ctx context.Context, principal *access.Principal) ([]domain.Order, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}
	if principal.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers can view their orders", domain.ErrForbidden)
	}
	return s.orders.ListOrdersByCustomer(ctx, principal.UserID)
}

func (s *OrderService) ListForRestaurant(ctx context.Context, principal *access.Principal, restaurantID int, status *domain.OrderStatus) ([]domain.Order, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidRequest, *status)
	}
	if err := s.access.Require(ctx, principal, access.ReadRestaurant, restaurantID); err != nil {
		return nil, err
	}
	return s.orders.ListOrdersByRestaurant(ctx, restaurantID, status)
}

// Get hides orders the principal may not see behind domain.ErrNotFound.
func (s *OrderService) Get(ctx context.Context, principal *access.Principal, orderID int) (*domain.Order, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if principal.Role == domain.RoleSuperadmin || order.CustomerID == principal.UserID {
		return order, nil
	}
	_, isStaff, err := s.access.StaffRole(ctx, principal, order.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !isStaff {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}

func (s *OrderService) QRCode(ctx context.Context, principal *access.Principal, orderID int) ([]byte, error) {
	order, err := s.Get(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}
	return s.qr.Generate(order.ID)
}
