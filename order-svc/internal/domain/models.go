package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            int        `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          SystemRole `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Restaurant struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	Phone          string         `json:"phone"`
	CuisineType    string         `json:"cuisine_type"`
	Description    string         `json:"description"`
	ImageURL       string         `json:"image_url"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Membership struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	RestaurantID int       `json:"restaurant_id"`
	Role         OrgRole   `json:"role"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Recipe struct {
	ID           int             `json:"id"`
	RestaurantID int             `json:"restaurant_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Ingredients  string          `json:"ingredients"`
	Instructions string          `json:"instructions"`
	PrepTime     int             `json:"prep_time"`
	CookTime     int             `json:"cook_time"`
	Servings     int             `json:"servings"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url"`
	IsAvailable  bool            `json:"is_available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Order struct {
	ID             int             `json:"id"`
	CustomerID     int             `json:"customer_id"`
	RestaurantID   int             `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name,omitempty"`
	Status         OrderStatus     `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"order_id"`
	RecipeID  int             `json:"recipe_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Notes     string          `json:"notes"`
}

// Invitation is a pending staff invitation, addressed by its token.
type Invitation struct {
	Token        string    `json:"token"`
	Purpose      string    `json:"purpose"`
	Email        string    `json:"email"`
	RestaurantID int       `json:"restaurant_id"`
	Role         OrgRole   `json:"role"`
	InvitedBy    int       `json:"invited_by"`
	ExpiresAt    time.Time `json:"expires_at"`
}

const InvitationPurpose = "staff_invitation"

type Stats struct {
	UsersByRole         map[SystemRole]int     `json:"users_by_role"`
	RestaurantsByStatus map[ApprovalStatus]int `json:"restaurants_by_status"`
	OrdersByStatus      map[OrderStatus]int    `json:"orders_by_status"`
	TotalUsers          int                    `json:"total_users"`
	TotalRestaurants    int                    `json:"total_restaurants"`
	TotalOrders         int                    `json:"total_orders"`
	PendingRestaurants  int                    `json:"pending_restaurants"`
	SuspendedUsers      int                    `json:"suspended_users"`
}

type OrderItemInput struct {
	RecipeID int    `json:"recipe_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type CreateOrderInput struct {
	RestaurantID int              `json:"restaurant_id"`
	Items        []OrderItemInput `json:"items"`
	Notes        string           `json:"notes"`
}

type StatusUpdateInput struct {
	Status OrderStatus `json:"status"`
	Notes  *string     `json:"notes"`
}

type RegisterInput struct {
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       SystemRole  `json:"role"`
	Restaurant *Restaurant `json:"restaurant,omitempty"`
}

// OrderEvent is the envelope pushed to live-update subscribers.
type OrderEvent struct {
	Type       string    `json:"type"`
	Subscriber string    `json:"subscriber"`
	Data       *Order    `json:"data"`
	SentAt     time.Time `json:"sent_at"`
}

const (
	EventNewOrder    = "new_order"
	EventOrderUpdate = "order_update"
)

func RestaurantChannel(restaurantID int) string {
	return fmt.Sprintf("restaurant:%d", restaurantID)
}

func CustomerChannel(customerID int) string {
	return fmt.Sprintf("customer:%d", customerID)
}
