package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
	"github.com/derrickshema/recipe-manager/order-svc/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Users       service.UserServiceInterface
	Restaurants service.RestaurantServiceInterface
	Recipes     service.RecipeServiceInterface
	Memberships service.MembershipServiceInterface
	Orders      service.OrderServiceInterface
	Payments    service.PaymentServiceInterface
}

func NewHandler(
	users service.UserServiceInterface,
	restaurants service.RestaurantServiceInterface,
	recipes service.RecipeServiceInterface,
	memberships service.MembershipServiceInterface,
	orders service.OrderServiceInterface,
	payments service.PaymentServiceInterface,
) *Handler {
	return &Handler{
		Users:       users,
		Restaurants: restaurants,
		Recipes:     recipes,
		Memberships: memberships,
		Orders:      orders,
		Payments:    payments,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.authenticate)

	api.HandleFunc("/auth/register", h.register).Methods("POST")
	api.HandleFunc("/auth/token", h.login).Methods("POST")
	api.HandleFunc("/auth/logout", h.logout).Methods("POST")
	api.HandleFunc("/auth/me", h.me).Methods("GET")

	api.HandleFunc("/restaurants", h.createRestaurant).Methods("POST")
	api.HandleFunc("/restaurants", h.getRestaurants).Methods("GET")
	api.HandleFunc("/restaurants/register", h.registerRestaurant).Methods("POST")
	api.HandleFunc("/restaurants/public", h.getPublicRestaurants).Methods("GET")
	api.HandleFunc("/restaurants/my", h.getMyRestaurants).Methods("GET")
	api.HandleFunc("/restaurants/pending", h.getPendingRestaurants).Methods("GET")
	api.HandleFunc("/restaurants/{id:[0-9]+}", h.getRestaurant).Methods("GET")
	api.HandleFunc("/restaurants/{id:[0-9]+}", h.updateRestaurant).Methods("PUT")
	api.HandleFunc("/restaurants/{id:[0-9]+}", h.deleteRestaurant).Methods("DELETE")
	api.HandleFunc("/restaurants/{id:[0-9]+}/{action:approve|reject|suspend}", h.moderateRestaurant).Methods("POST")

	api.HandleFunc("/restaurants/{id:[0-9]+}/memberships", h.getMemberships).Methods("GET")
	api.HandleFunc("/restaurants/{id:[0-9]+}/memberships", h.addMembership).Methods("POST")
	api.HandleFunc("/restaurants/{id:[0-9]+}/memberships/{membershipId:[0-9]+}", h.updateMembership).Methods("PUT")
	api.HandleFunc("/restaurants/{id:[0-9]+}/memberships/{membershipId:[0-9]+}", h.deleteMembership).Methods("DELETE")
	api.HandleFunc("/restaurants/{id:[0-9]+}/invitations", h.inviteStaff).Methods("POST")
	api.HandleFunc("/invitations/accept", h.acceptInvitation).Methods("POST")

	api.HandleFunc("/restaurants/{id:[0-9]+}/recipes", h.createRecipe).Methods("POST")
	api.HandleFunc("/restaurants/{id:[0-9]+}/recipes", h.getRecipes).Methods("GET")
	api.HandleFunc("/restaurants/{id:[0-9]+}/recipes/{recipeId:[0-9]+}", h.getRecipe).Methods("GET")
	api.HandleFunc("/restaurants/{id:[0-9]+}/recipes/{recipeId:[0-9]+}", h.updateRecipe).Methods("PUT")
	api.HandleFunc("/restaurants/{id:[0-9]+}/recipes/{recipeId:[0-9]+}", h.deleteRecipe).Methods("DELETE")

	api.HandleFunc("/orders", h.createOrder).Methods("POST")
	api.HandleFunc("/orders", h.getMyOrders).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}", h.getOrder).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}/status", h.updateOrderStatus).Methods("PUT")
	api.HandleFunc("/orders/{id:[0-9]+}/qrcode", h.getOrderQRCode).Methods("GET")
	api.HandleFunc("/restaurants/{id:[0-9]+}/orders", h.getRestaurantOrders).Methods("GET")

	api.HandleFunc("/payments/checkout/{id:[0-9]+}", h.createCheckout).Methods("POST")
	api.HandleFunc("/payments/webhook", h.paymentWebhook).Methods("POST")

	api.HandleFunc("/admin/stats", h.getStats).Methods("GET")
	api.HandleFunc("/admin/users", h.getUsers).Methods("GET")
	api.HandleFunc("/admin/users/{id:[0-9]+}/suspend", h.suspendUser).Methods("POST")
	api.HandleFunc("/admin/users/{id:[0-9]+}/unsuspend", h.unsuspendUser).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// login accepts the OAuth2 password form as well as a JSON body.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		creds.Username = r.FormValue("username")
		creds.Password = r.FormValue("password")
	} else if err := decodeJSON(r, &creds); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.Users.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.Users.Logout(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Me(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Users.Stats(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) getUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) suspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.Suspend(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) unsuspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		RestoreRole domain.SystemRole `json:"restore_role"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	user, err := h.Users.Unsuspend(r.Context(), principalFrom(r), id, body.RestoreRole)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
