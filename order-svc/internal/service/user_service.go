package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

type UserServiceInterface interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*access.Principal, error)
	Me(ctx context.Context, principal *access.Principal) (*domain.User, error)
	ListUsers(ctx context.Context, principal *access.Principal) ([]domain.User, error)
	Suspend(ctx context.Context, principal *access.Principal, userID int) (*domain.User, error)
	Unsuspend(ctx context.Context, principal *access.Principal, userID int, restore domain.SystemRole) (*domain.User, error)
	Stats(ctx context.Context, principal *access.Principal) (*domain.Stats, error)
}

type UserService struct {
	users       UserRepository
	restaurants RestaurantRepository
	memberships MembershipRepository
	stats       StatsRepository
	tx          TxManager
	sessions    SessionStore
	hasher      PasswordHasher
	access      access.EvaluatorInterface
}

var _ UserServiceInterface = (*UserService)(nil)

func NewUserService(
	users UserRepository,
	restaurants RestaurantRepository,
	memberships MembershipRepository,
	stats StatsRepository,
	tx TxManager,
	sessions SessionStore,
	hasher PasswordHasher,
	evaluator access.EvaluatorInterface,
) *UserService {
	return &UserService{
		users:       users,
		restaurants: restaurants,
		memberships: memberships,
		stats:       stats,
		tx:          tx,
		sessions:    sessions,
		hasher:      hasher,
		access:      evaluator,
	}
}

// BcryptHasher hashes passwords with bcrypt at the given cost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username must be between 3 and 50 characters", domain.ErrInvalidRequest)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username may only contain letters, numbers and underscores", domain.ErrInvalidRequest)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", domain.ErrInvalidRequest)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case !upper:
		return fmt.Errorf("%w: password must contain at least one uppercase letter", domain.ErrInvalidRequest)
	case !lower:
		return fmt.Errorf("%w: password must contain at least one lowercase letter", domain.ErrInvalidRequest)
	case !digit:
		return fmt.Errorf("%w: password must contain at least one digit", domain.ErrInvalidRequest)
	case !special:
		return fmt.Errorf("%w: password must contain at least one special character", domain.ErrInvalidRequest)
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Role == "" {
		input.Role = domain.RoleCustomer
	}

	if err := ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidRequest)
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if !input.Role.SelfAssignable() {
		return nil, fmt.Errorf("%w: cannot register with role %q", domain.ErrInvalidRequest, input.Role)
	}
	if input.Restaurant != nil {
		if input.Role != domain.RoleRestaurantOwner {
			return nil, fmt.Errorf("%w: only restaurant owners can register a restaurant", domain.ErrInvalidRequest)
		}
		if err := validateRestaurant(input.Restaurant); err != nil {
			return nil, err
		}
	}

	if err := s.ensureAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		if input.Restaurant == nil {
			return nil
		}
		input.Restaurant.ApprovalStatus = domain.ApprovalPending
		if err := s.restaurants.CreateRestaurant(ctx, input.Restaurant); err != nil {
			return err
		}
		return s.memberships.CreateMembership(ctx, &domain.Membership{
			UserID:       user.ID,
			RestaurantID: input.Restaurant.ID,
			Role:         domain.OrgRoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "[order-svc] user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *UserService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return fmt.Errorf("%w: username already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Login never says whether the username or the password was wrong.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: incorrect username or password", domain.ErrUnauthenticated)
	}
	if err != nil {
		return "", err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", fmt.Errorf("%w: incorrect username or password", domain.ErrUnauthenticated)
	}
	return s.sessions.Issue(ctx, user.ID)
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves a bearer token to a principal. The user row is read on
// every call so role changes apply immediately.
func (s *UserService) Authenticate(ctx context.Context, token string) (*access.Principal, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return access.PrincipalFromUser(user), nil
}

func (s *UserService) Me(ctx context.Context, principal *access.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.users.GetUser(ctx, principal.UserID)
}

func (s *UserService) ListUsers(ctx context.Context, principal *access.Principal) ([]domain.User, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

func (s *UserService) Suspend(ctx context.Context, principal *access.Principal, userID int) (*domain.User, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch user.Role {
	case domain.RoleSuperadmin:
		return nil, fmt.Errorf("%w: cannot suspend another superadmin", domain.ErrForbidden)
	case domain.RoleSuspended:
		return nil, fmt.Errorf("%w: user is already suspended", domain.ErrInvalidRequest)
	}

	if err := s.users.UpdateUserRole(ctx, userID, domain.RoleSuspended); err != nil {
		return nil, err
	}
	user.Role = domain.RoleSuspended
	slog.InfoContext(ctx, "[order-svc] user suspended", "user_id", userID, "moderator_id", principal.UserID)
	return user, nil
}

func (s *UserService) Unsuspend(ctx context.Context, principal *access.Principal, userID int, restore domain.SystemRole) (*domain.User, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}
	if restore == "" {
		restore = domain.RoleCustomer
	}
	if !restore.SelfAssignable() {
		return nil, fmt.Errorf("%w: cannot restore role %q", domain.ErrInvalidRequest, restore)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleSuspended {
		return nil, fmt.Errorf("%w: user is not suspended", domain.ErrInvalidRequest)
	}

	if err := s.users.UpdateUserRole(ctx, userID, restore); err != nil {
		return nil, err
	}
	user.Role = restore
	slog.InfoContext(ctx, "[order-svc] user unsuspended", "user_id", userID, "role", restore)
	return user, nil
}

func (s *UserService) Stats(ctx context.Context, principal *access.Principal) (*domain.Stats, error) {
	if err := s.access.Require(ctx, principal, access.Moderate, access.NoRestaurant); err != nil {
		return nil, err
	}

	users, err := s.stats.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	restaurants, err := s.stats.CountRestaurantsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.stats.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		UsersByRole:         users,
		RestaurantsByStatus: restaurants,
		OrdersByStatus:      orders,
		PendingRestaurants:  restaurants[domain.ApprovalPending],
		SuspendedUsers:      users[domain.RoleSuspended],
	}
	for _, n := range users {
		stats.TotalUsers += n
	}
	for _, n := range restaurants {
		stats.TotalRestaurants += n
	}
	for _, n := range orders {
		stats.TotalOrders += n
	}
	return stats, nil
}
