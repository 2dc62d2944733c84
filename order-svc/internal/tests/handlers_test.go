package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	httpapi "github.com/derrickshema/recipe-manager/order-svc/internal/api/http"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
	"github.com/derrickshema/recipe-manager/order-svc/internal/mocks"
	"github.com/derrickshema/recipe-manager/order-svc/internal/payment"
	"github.com/derrickshema/recipe-manager/order-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// apiHarness serves the real router and services over mocked storage.
type apiHarness struct {
	users       *mocks.UserRepository
	restaurants *mocks.RestaurantRepository
	recipes     *mocks.RecipeRepository
	memberships *mocks.MembershipRepository
	orders      *mocks.OrderRepository
	stats       *mocks.StatsRepository
	sessions    *mocks.SessionStore
	invitations *mocks.InvitationStore
	mailer      *mocks.Mailer
	notifier    *mocks.Notifier
	gateway     *mocks.PaymentGateway
	verifier    *mocks.WebhookVerifier
	marker      *mocks.EventMarker
	events      *service.Dispatcher
	router      http.Handler
}

func newAPIHarness(t *testing.T) *apiHarness {
	h := &apiHarness{
		users:       mocks.NewUserRepository(t),
		restaurants: mocks.NewRestaurantRepository(t),
		recipes:     mocks.NewRecipeRepository(t),
		memberships: mocks.NewMembershipRepository(t),
		orders:      mocks.NewOrderRepository(t),
		stats:       mocks.NewStatsRepository(t),
		sessions:    mocks.NewSessionStore(t),
		invitations: mocks.NewInvitationStore(t),
		mailer:      mocks.NewMailer(t),
		notifier:    mocks.NewNotifier(t),
		gateway:     mocks.NewPaymentGateway(t),
		verifier:    mocks.NewWebhookVerifier(t),
		marker:      mocks.NewEventMarker(t),
	}
	staffOf(h.memberships)

	tx := &inlineTx{}
	evaluator := access.NewEvaluator(h.memberships)
	h.events = service.NewDispatcher(h.notifier)

	handler := httpapi.NewHandler(
		service.NewUserService(h.users, h.restaurants, h.memberships, h.stats, tx, h.sessions,
			service.BcryptHasher{Cost: bcrypt.MinCost}, evaluator),
		service.NewRestaurantService(h.restaurants, h.memberships, tx, evaluator),
		service.NewRecipeService(h.recipes, h.restaurants, evaluator),
		service.NewMembershipService(h.memberships, h.users, h.restaurants, h.invitations, h.mailer, evaluator),
		service.NewOrderService(h.orders, h.restaurants, h.recipes, tx, evaluator, h.events,
			service.PickupQRGenerator{FrontendURL: "http://localhost:5173"}),
		service.NewPaymentService(h.orders, tx, h.gateway, h.verifier, h.marker, h.events, "http://localhost:5173"),
	)
	h.router = httpapi.NewRouter(handler)
	return h
}

// signIn makes "tok-<username>" a valid bearer token for the principal.
func (h *apiHarness) signIn(p *access.Principal) string {
	token := "tok-" + p.Username
	h.sessions.On("Resolve", mock.Anything, token).Return(p.UserID, nil).Maybe()
	h.users.On("GetUser", mock.Anything, p.UserID).
		Return(&domain.User{ID: p.UserID, Username: p.Username, Email: p.Email, Role: p.Role}, nil).Maybe()
	return token
}

func (h *apiHarness) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func TestCreateOrderHandler(t *testing.T) {
	h := newAPIHarness(t)
	token := h.signIn(alice)
	h.restaurants.On("GetRestaurant", mock.Anything, pizzaPlace).Return(approvedPizzaPlace(), nil).Once()
	h.recipes.On("GetRecipesByIDs", mock.Anything, pizzaPlace, []int{5}).
		Return(map[int]domain.Recipe{5: {ID: 5, RestaurantID: pizzaPlace, Title: "Margherita", Price: price("12.99"), IsAvailable: true}}, nil).Once()
	h.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Order).ID = 12 }).
		Return(nil).Once()
	h.notifier.On("Notify", mock.Anything, "restaurant:1", domain.EventNewOrder, mock.Anything).Return(nil).Once()

	w := h.do("POST", "/api/orders", token, `{"restaurant_id":1,"items":[{"recipe_id":5,"quantity":2}]}`)
	h.events.Wait()

	require.Equal(t, http.StatusCreated, w.Code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 12, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "25.98", order.TotalAmount.StringFixed(2))
}

func TestOrderHandlersStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		as       *access.Principal
		body     string
		setup    func(h *apiHarness)
		wantCode int
	}{
		{
			name:     "anonymous order",
			method:   "POST",
			path:     "/api/orders",
			body:     `{"restaurant_id":1,"items":[{"recipe_id":5,"quantity":1}]}`,
			setup:    func(h *apiHarness) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed body",
			method:   "POST",
			path:     "/api/orders",
			as:       alice,
			body:     `{invalid}`,
			setup:    func(h *apiHarness) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "owner cannot order",
			method:   "POST",
			path:     "/api/orders",
			as:       owner,
			body:     `{"restaurant_id":1,"items":[{"recipe_id":5,"quantity":1}]}`,
			setup:    func(h *apiHarness) {},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "stranger reads order",
			method: "GET",
			path:   "/api/orders/12",
			as:     bob,
			setup: func(h *apiHarness) {
				h.orders.On("GetOrder", mock.Anything, 12).Return(pendingOrder(), nil).Once()
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:   "customer starts preparing",
			method: "PUT",
			path:   "/api/orders/12/status",
			as:     alice,
			body:   `{"status":"preparing"}`,
			setup: func(h *apiHarness) {
				h.orders.On("GetOrderForUpdate", mock.Anything, 12).Return(orderIn(domain.StatusPaid), nil).Once()
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "storage failure",
			method: "GET",
			path:   "/api/orders",
			as:     alice,
			setup: func(h *apiHarness) {
				h.orders.On("ListOrdersByCustomer", mock.Anything, alice.UserID).Return(nil, errors.New("db error")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:   "staff filters by status",
			method: "GET",
			path:   "/api/restaurants/1/orders?status=paid",
			as:     chef,
			setup: func(h *apiHarness) {
				paid := domain.StatusPaid
				h.orders.On("ListOrdersByRestaurant", mock.Anything, pizzaPlace, &paid).Return([]domain.Order{}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			h := newAPIHarness(t)
			token := ""
			if testCase.as != nil {
				token = h.signIn(testCase.as)
			}
			testCase.setup(h)

			w := h.do(testCase.method, testCase.path, token, testCase.body)

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestUpdateOrderStatusHandlerRejectsSkippedStep(t *testing.T) {
	h := newAPIHarness(t)
	token := h.signIn(owner)
	h.orders.On("GetOrderForUpdate", mock.Anything, 12).Return(pendingOrder(), nil).Once()

	w := h.do("PUT", "/api/orders/12/status", token, `{"status":"ready"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	detail := detailOf(t, w)
	assert.Contains(t, detail, "pending")
	assert.Contains(t, detail, "ready")
}

func TestUnknownTokenIsUnauthorized(t *testing.T) {
	h := newAPIHarness(t)
	h.sessions.On("Resolve", mock.Anything, "stale").Return(0, domain.ErrUnauthenticated).Once()

	w := h.do("GET", "/api/auth/me", "stale", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "could not validate credentials", detailOf(t, w))
}

func TestLoginHandler(t *testing.T) {
	h := newAPIHarness(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret12!"), bcrypt.MinCost)
	require.NoError(t, err)
	h.users.On("GetUserByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: alice.UserID, Username: "alice", PasswordHash: string(hash), Role: domain.RoleCustomer}, nil).Once()
	h.sessions.On("Issue", mock.Anything, alice.UserID).Return("tok-new", nil).Once()

	req := httptest.NewRequest("POST", "/api/auth/token", strings.NewReader("username=alice&password=Secret12!"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"tok-new","token_type":"bearer"}`, w.Body.String())
}

func TestModerateRestaurantHandler(t *testing.T) {
	h := newAPIHarness(t)
	token := h.signIn(superadmin)
	h.restaurants.On("GetRestaurant", mock.Anything, 3).
		Return(&domain.Restaurant{ID: 3, Name: "Taco Stand", ApprovalStatus: domain.ApprovalPending}, nil).Once()
	h.restaurants.On("UpdateApprovalStatus", mock.Anything, 3, domain.ApprovalApproved).Return(nil).Once()

	w := h.do("POST", "/api/restaurants/3/approve", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approval_status":"approved"`)

	w = h.do("POST", "/api/restaurants/3/approve", h.signIn(owner), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAcceptInvitationHandlerConflict(t *testing.T) {
	h := newAPIHarness(t)
	token := h.signIn(bob)
	h.invitations.On("Get", mock.Anything, "inv-1").Return(&domain.Invitation{
		Token: "inv-1", Purpose: domain.InvitationPurpose, Email: "BOB@example.com", RestaurantID: pizzaPlace, Role: domain.OrgRoleEmployee,
	}, nil).Twice()
	h.restaurants.On("GetRestaurant", mock.Anything, pizzaPlace).Return(approvedPizzaPlace(), nil).Twice()
	h.memberships.On("CreateMembership", mock.Anything, mock.Anything).Return(nil).Once()
	h.memberships.On("CreateMembership", mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()

	w := h.do("POST", "/api/invitations/accept", token, `{"token":"inv-1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = h.do("POST", "/api/invitations/accept", token, `{"token":"inv-1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderQRCodeHandler(t *testing.T) {
	h := newAPIHarness(t)
	token := h.signIn(alice)
	h.orders.On("GetOrder", mock.Anything, 12).Return(pendingOrder(), nil).Once()

	w := h.do("GET", "/api/orders/12/qrcode", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestCheckoutHandler(t *testing.T) {
	h := newAPIHarness(t)
	token := h.signIn(alice)
	h.orders.On("GetOrder", mock.Anything, 12).Return(pendingOrder(), nil).Once()
	h.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(&payment.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil).Once()

	w := h.do("POST", "/api/payments/checkout/12", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"cs_1","checkout_url":"https://checkout.stripe.com/c/cs_1"}`, w.Body.String())
}

func TestPaymentWebhookHandler(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *apiHarness)
		wantCode int
		wantBody string
	}{
		{
			name: "verified and reconciled",
			setup: func(h *apiHarness) {
				h.verifier.On("Verify", []byte(`{"id":"evt_1"}`), "t=1,v1=abc").
					Return(&payment.Event{ID: "evt_1", Kind: payment.EventSucceeded, OrderID: 12}, nil).Once()
				h.marker.On("Seen", mock.Anything, "evt_1").Return(false, nil).Once()
				h.marker.On("Mark", mock.Anything, "evt_1").Return(nil).Once()
				h.orders.On("GetOrderForUpdate", mock.Anything, 12).Return(pendingOrder(), nil).Once()
				h.orders.On("UpdateOrderStatus", mock.Anything, 12, domain.StatusPaid, (*string)(nil)).Return(nil).Once()
				h.notifier.On("Notify", mock.Anything, "customer:7", domain.EventOrderUpdate, mock.Anything).Return(nil).Once()
				h.notifier.On("Notify", mock.Anything, "restaurant:1", domain.EventOrderUpdate, mock.Anything).Return(nil).Once()
			},
			wantCode: http.StatusOK,
			wantBody: `{"status":"success"}`,
		},
		{
			name: "bad signature",
			setup: func(h *apiHarness) {
				h.verifier.On("Verify", mock.Anything, "t=1,v1=abc").
					Return(nil, domain.ErrInvalidRequest).Once()
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			h := newAPIHarness(t)
			testCase.setup(h)

			req := httptest.NewRequest("POST", "/api/payments/webhook", strings.NewReader(`{"id":"evt_1"}`))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			w := httptest.NewRecorder()
			h.router.ServeHTTP(w, req)
			h.events.Wait()

			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantBody != "" {
				assert.JSONEq(t, testCase.wantBody, w.Body.String())
			}
		})
	}
}

func TestAdminStatsHandler(t *testing.T) {
	h := newAPIHarness(t)
	h.stats.On("CountUsersByRole", mock.Anything).Return(map[domain.SystemRole]int{domain.RoleCustomer: 2}, nil).Once()
	h.stats.On("CountRestaurantsByStatus", mock.Anything).Return(map[domain.ApprovalStatus]int{}, nil).Once()
	h.stats.On("CountOrdersByStatus", mock.Anything).Return(map[domain.OrderStatus]int{}, nil).Once()

	w := h.do("GET", "/api/admin/stats", h.signIn(superadmin), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_users":2`)

	w = h.do("GET", "/api/admin/stats", h.signIn(alice), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
