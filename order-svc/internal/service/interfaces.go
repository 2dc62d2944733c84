package service

import (
	"context"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
	"github.com/derrickshema/recipe-manager/order-svc/internal/payment"
)

// Repositories return errors wrapping domain.ErrNotFound for missing rows
// and domain.ErrConflict for unique violations.

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id int, role domain.SystemRole) error
}

type RestaurantRepository interface {
	CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error)
	ListRestaurants(ctx context.Context, status *domain.ApprovalStatus) ([]domain.Restaurant, error)
	ListRestaurantsForUser(ctx context.Context, userID int) ([]domain.Restaurant, error)
	UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	UpdateApprovalStatus(ctx context.Context, id int, status domain.ApprovalStatus) error
	DeleteRestaurant(ctx context.Context, id int) (int64, error)
}

type MembershipRepository interface {
	access.MembershipFinder
	GetMembership(ctx context.Context, id int) (*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
	ListMemberships(ctx context.Context, restaurantID int) ([]domain.Membership, error)
	UpdateMembershipRole(ctx context.Context, id int, role domain.OrgRole) error
	DeleteMembership(ctx context.Context, id int) error
}

type RecipeRepository interface {
	CreateRecipe(ctx context.Context, rec *domain.Recipe) error
	GetRecipe(ctx context.Context, restaurantID, recipeID int) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, restaurantID int) ([]domain.Recipe, error)
	GetRecipesByIDs(ctx context.Context, restaurantID int, ids []int) (map[int]domain.Recipe, error)
	UpdateRecipe(ctx context.Context, rec *domain.Recipe) error
	DeleteRecipe(ctx context.Context, restaurantID, recipeID int) (int64, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id int) (*domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id int) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status domain.OrderStatus, notes *string) error
	ListOrdersByCustomer(ctx context.Context, customerID int) ([]domain.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID int, status *domain.OrderStatus) ([]domain.Order, error)
}

type StatsRepository interface {
	CountUsersByRole(ctx context.Context) (map[domain.SystemRole]int, error)
	CountRestaurantsByStatus(ctx context.Context) (map[domain.ApprovalStatus]int, error)
	CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier delivers an order event to a subscriber channel ("restaurant:1", "customer:7").
type Notifier interface {
	Notify(ctx context.Context, subscriber, eventType string, order *domain.Order) error
}

type SessionStore interface {
	Issue(ctx context.Context, userID int) (string, error)
	Resolve(ctx context.Context, token string) (int, error)
	Revoke(ctx context.Context, token string) error
}

type InvitationStore interface {
	Save(ctx context.Context, inv *domain.Invitation) error
	Get(ctx context.Context, token string) (*domain.Invitation, error)
}

type Mailer interface {
	SendInvitation(ctx context.Context, inv *domain.Invitation, restaurantName string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error)
}

type WebhookVerifier interface {
	Verify(payload []byte, signature string) (*payment.Event, error)
}

type EventMarker interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type QRGenerator interface {
	Generate(orderID int) ([]byte, error)
}
