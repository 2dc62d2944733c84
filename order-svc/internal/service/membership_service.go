package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const invitationTTL = 7 * 24 * time.Hour

type MembershipServiceInterface interface {
	List(ctx context.Context, principal *access.Principal, restaurantID int) ([]domain.Membership, error)
	AddByEmail(ctx context.Context, principal *access.Principal, restaurantID int, email string, role domain.OrgRole) (*domain.Membership, error)
	UpdateRole(ctx context.Context, principal *access.Principal, restaurantID, membershipID int, role domain.OrgRole) (*domain.Membership, error)
	Remove(ctx context.Context, principal *access.Principal, restaurantID, membershipID int) error
	Invite(ctx context.Context, principal *access.Principal, restaurantID int, email string, role domain.OrgRole) (*domain.Invitation, error)
	AcceptInvitation(ctx context.Context, principal *access.Principal, token string) (*domain.Membership, error)
}

type MembershipService struct {
	memberships MembershipRepository
	users       UserRepository
	restaurants RestaurantRepository
	invitations InvitationStore
	mailer      Mailer
	access      access.EvaluatorInterface
	now         func() time.Time
}

var _ MembershipServiceInterface = (*MembershipService)(nil)

func NewMembershipService(
	memberships MembershipRepository,
	users UserRepository,
	restaurants RestaurantRepository,
	invitations InvitationStore,
	mailer Mailer,
	evaluator access.EvaluatorInterface,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		users:       users,
		restaurants: restaurants,
		invitations: invitations,
		mailer:      mailer,
		access:      evaluator,
		now:         time.Now,
	}
}

func (s *MembershipService) List(ctx context.Context, principal *access.Principal, restaurantID int) ([]domain.Membership, error) {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, restaurantID); err != nil {
		return nil, err
	}
	return s.memberships.ListMemberships(ctx, restaurantID)
}

func (s *MembershipService) AddByEmail(ctx context.Context, principal *access.Principal, restaurantID int, email string, role domain.OrgRole) (*domain.Membership, error) {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, restaurantID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRequest, role)
	}

	var user *domain.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.restaurants.GetRestaurant(gctx, restaurantID)
		return err
	})
	g.Go(func() error {
		found, err := s.users.GetUserByEmail(gctx, strings.TrimSpace(email))
		if err != nil {
			return fmt.Errorf("user with email %s: %w", email, err)
		}
		user = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	membership := &domain.Membership{UserID: user.ID, RestaurantID: restaurantID, Role: role}
	if err := s.memberships.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}
	membership.Username = user.Username
	membership.Email = user.Email
	membership.FirstName = user.FirstName
	membership.LastName = user.LastName
	return membership, nil
}

// membershipIn loads a membership and checks it belongs to the restaurant in the path.
func (s *MembershipService) membershipIn(ctx context.Context, restaurantID, membershipID int) (*domain.Membership, error) {
	membership, err := s.memberships.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership.RestaurantID != restaurantID {
		return nil, fmt.Errorf("membership %d: %w", membershipID, domain.ErrNotFound)
	}
	return membership, nil
}

func (s *MembershipService) UpdateRole(ctx context.Context, principal *access.Principal, restaurantID, membershipID int, role domain.OrgRole) (*domain.Membership, error) {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, restaurantID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRequest, role)
	}

	membership, err := s.membershipIn(ctx, restaurantID, membershipID)
	if err != nil {
		return nil, err
	}
	if err := s.memberships.UpdateMembershipRole(ctx, membershipID, role); err != nil {
		return nil, err
	}
	membership.Role = role
	return membership, nil
}

func (s *MembershipService) Remove(ctx context.Context, principal *access.Principal, restaurantID, membershipID int) error {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, restaurantID); err != nil {
		return err
	}

	membership, err := s.membershipIn(ctx, restaurantID, membershipID)
	if err != nil {
		return err
	}
	if membership.UserID == principal.UserID {
		return fmt.Errorf("%w: you cannot remove yourself from the restaurant", domain.ErrInvalidRequest)
	}
	return s.memberships.DeleteMembership(ctx, membershipID)
}

// Invite stores a seven-day invitation and queues the email. The invitation
// survives a mail failure so it can still be accepted with the token.
func (s *MembershipService) Invite(ctx context.Context, principal *access.Principal, restaurantID int, email string, role domain.OrgRole) (*domain.Invitation, error) {
	if err := s.access.Require(ctx, principal, access.ManageRestaurant, restaurantID); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidRequest)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRequest, role)
	}

	rest, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		Token:        uuid.NewString(),
		Purpose:      domain.InvitationPurpose,
		Email:        email,
		RestaurantID: restaurantID,
		Role:         role,
		InvitedBy:    principal.UserID,
		ExpiresAt:    s.now().Add(invitationTTL),
	}
	if err := s.invitations.Save(ctx, inv); err != nil {
		return nil, err
	}

	if err := s.mailer.SendInvitation(ctx, inv, rest.Name); err != nil {
		slog.WarnContext(ctx, "[order-svc] invitation email not queued",
			"restaurant_id", restaurantID, "email", email, "error", err)
	}
	return inv, nil
}

// AcceptInvitation joins the principal to the invited restaurant. The token is
// left in place; a second accept fails on the existing membership.
func (s *MembershipService) AcceptInvitation(ctx context.Context, principal *access.Principal, token string) (*domain.Membership, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}

	inv, err := s.invitations.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("invitation: %w", err)
	}
	if inv.Purpose != domain.InvitationPurpose {
		return nil, fmt.Errorf("%w: invalid invitation token", domain.ErrInvalidRequest)
	}
	if !strings.EqualFold(inv.Email, principal.Email) {
		return nil, fmt.Errorf("%w: this invitation was sent to a different email address", domain.ErrForbidden)
	}
	if _, err := s.restaurants.GetRestaurant(ctx, inv.RestaurantID); err != nil {
		return nil, err
	}

	membership := &domain.Membership{UserID: principal.UserID, RestaurantID: inv.RestaurantID, Role: inv.Role}
	if err := s.memberships.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "[order-svc] invitation accepted",
		"restaurant_id", inv.RestaurantID, "user_id", principal.UserID, "role", inv.Role)
	return membership, nil
}
