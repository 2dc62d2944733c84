package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

// NoRestaurant is passed when a capability is checked without a target restaurant.
const NoRestaurant = 0

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID   int
	Username string
	Email    string
	Role     domain.SystemRole
}

func PrincipalFromUser(user *domain.User) *Principal {
	return &Principal{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// MembershipFinder returns domain.ErrNotFound when the user has no membership.
type MembershipFinder interface {
	FindMembership(ctx context.Context, userID, restaurantID int) (*domain.Membership, error)
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

type EvaluatorInterface interface {
	Evaluate(ctx context.Context, principal *Principal, capability Capability, restaurantID int) (Decision, error)
	Require(ctx context.Context, principal *Principal, capability Capability, restaurantID int) error
	StaffRole(ctx context.Context, principal *Principal, restaurantID int) (domain.OrgRole, bool, error)
}

// Evaluator decides capabilities from the principal's system role and,
// when a restaurant is given, the principal's membership in it.
// Every call reads the membership store; nothing is cached.
type Evaluator struct {
	Memberships MembershipFinder
}

var _ EvaluatorInterface = (*Evaluator)(nil)

func NewEvaluator(memberships MembershipFinder) *Evaluator {
	return &Evaluator{Memberships: memberships}
}

func (e *Evaluator) Evaluate(ctx context.Context, principal *Principal, capability Capability, restaurantID int) (Decision, error) {
	if principal == nil {
		return deny("no principal"), domain.ErrUnauthenticated
	}

	if principal.Role == domain.RoleSuspended {
		return deny("account is suspended"), nil
	}

	rule, ok := capability.rule()
	if !ok {
		return deny(fmt.Sprintf("unknown capability %q", capability)), nil
	}

	for _, role := range rule.systemRoles {
		if principal.Role == role {
			return allow("system role " + string(role)), nil
		}
	}

	if len(rule.orgRoles) == 0 {
		return deny(fmt.Sprintf("%s requires a system role", capability)), nil
	}
	if restaurantID == NoRestaurant {
		return deny(fmt.Sprintf("%s requires a restaurant", capability)), nil
	}

	membership, err := e.Memberships.FindMembership(ctx, principal.UserID, restaurantID)
	if errors.Is(err, domain.ErrNotFound) {
		return deny("not a member of this restaurant"), nil
	}
	if err != nil {
		return deny("membership lookup failed"), fmt.Errorf("find membership: %w", err)
	}

	for _, role := range rule.orgRoles {
		if membership.Role == role {
			return allow("org role " + string(role)), nil
		}
	}
	return deny(fmt.Sprintf("org role %s cannot %s", membership.Role, capability)), nil
}

// Require turns a deny decision into domain.ErrForbidden.
func (e *Evaluator) Require(ctx context.Context, principal *Principal, capability Capability, restaurantID int) error {
	decision, err := e.Evaluate(ctx, principal, capability, restaurantID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", domain.ErrForbidden, decision.Reason)
	}
	return nil
}

// StaffRole reports the org role a non-suspended principal holds in the restaurant.
func (e *Evaluator) StaffRole(ctx context.Context, principal *Principal, restaurantID int) (domain.OrgRole, bool, error) {
	if principal == nil || principal.Role == domain.RoleSuspended {
		return "", false, nil
	}
	membership, err := e.Memberships.FindMembership(ctx, principal.UserID, restaurantID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find membership: %w", err)
	}
	return membership.Role, true, nil
}
