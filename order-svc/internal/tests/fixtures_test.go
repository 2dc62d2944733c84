package tests

import (
	"context"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
	"github.com/derrickshema/recipe-manager/order-svc/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// inlineTx runs the unit of work without a database.
type inlineTx struct{ calls int }

func (tx *inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

var (
	superadmin = &access.Principal{UserID: 1, Username: "root", Email: "root@example.com", Role: domain.RoleSuperadmin}
	owner      = &access.Principal{UserID: 2, Username: "olga", Email: "olga@example.com", Role: domain.RoleRestaurantOwner}
	chef       = &access.Principal{UserID: 3, Username: "chef", Email: "chef@example.com", Role: domain.RoleCustomer}
	alice      = &access.Principal{UserID: 7, Username: "alice", Email: "alice@example.com", Role: domain.RoleCustomer}
	bob        = &access.Principal{UserID: 8, Username: "bob", Email: "bob@example.com", Role: domain.RoleCustomer}
	banned     = &access.Principal{UserID: 9, Username: "mallory", Email: "mallory@example.com", Role: domain.RoleSuspended}
)

const (
	pizzaPlace = 1
	sushiBar   = 2
)

// staffOf wires the membership table: olga administers the pizza place and chef works there.
func staffOf(m *mocks.MembershipRepository) {
	m.On("FindMembership", mock.Anything, owner.UserID, pizzaPlace).
		Return(&domain.Membership{ID: 1, UserID: owner.UserID, RestaurantID: pizzaPlace, Role: domain.OrgRoleAdmin}, nil).Maybe()
	m.On("FindMembership", mock.Anything, chef.UserID, pizzaPlace).
		Return(&domain.Membership{ID: 2, UserID: chef.UserID, RestaurantID: pizzaPlace, Role: domain.OrgRoleEmployee}, nil).Maybe()
	m.On("FindMembership", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrNotFound).Maybe()
}

func approvedPizzaPlace() *domain.Restaurant {
	return &domain.Restaurant{ID: pizzaPlace, Name: "Pizza Place", ApprovalStatus: domain.ApprovalApproved}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:             12,
		CustomerID:     alice.UserID,
		RestaurantID:   pizzaPlace,
		RestaurantName: "Pizza Place",
		Status:         domain.StatusPending,
		TotalAmount:    price("25.98"),
	}
}

func orderIn(status domain.OrderStatus) *domain.Order {
	order := pendingOrder()
	order.Status = status
	return order
}
