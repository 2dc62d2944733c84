package httpapi

import (
	"net/http"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/gorilla/mux"
)

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var rest domain.Restaurant
	if err := decodeJSON(r, &rest); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Restaurants.Create(r.Context(), principalFrom(r), &rest); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rest)
}

func (h *Handler) registerRestaurant(w http.ResponseWriter, r *http.Request) {
	var rest domain.Restaurant
	if err := decodeJSON(r, &rest); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Restaurants.Register(r.Context(), principalFrom(r), &rest); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rest)
}

func (h *Handler) getRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.List(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getPublicRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.ListPublic(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getMyRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.ListMine(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getPendingRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.ListPending(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rest, err := h.Restaurants.Get(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rest domain.Restaurant
	if err := decodeJSON(r, &rest); err != nil {
		writeError(w, r, err)
		return
	}
	rest.ID = id
	if err := h.Restaurants.Update(r.Context(), principalFrom(r), &rest); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Restaurants.Delete(r.Context(), principalFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var moderationTargets = map[string]domain.ApprovalStatus{
	"approve": domain.ApprovalApproved,
	"reject":  domain.ApprovalRejected,
	"suspend": domain.ApprovalSuspended,
}

func (h *Handler) moderateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	target := moderationTargets[mux.Vars(r)["action"]]
	rest, err := h.Restaurants.Moderate(r.Context(), principalFrom(r), id, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

type membershipRequest struct {
	Email string         `json:"email"`
	Role  domain.OrgRole `json:"role"`
}

func (h *Handler) getMemberships(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	memberships, err := h.Memberships.List(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberships)
}

func (h *Handler) addMembership(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req membershipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	membership, err := h.Memberships.AddByEmail(r.Context(), principalFrom(r), id, req.Email, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (h *Handler) updateMembership(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	membershipID, err := pathInt(r, "membershipId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req membershipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	membership, err := h.Memberships.UpdateRole(r.Context(), principalFrom(r), id, membershipID, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

func (h *Handler) deleteMembership(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	membershipID, err := pathInt(r, "membershipId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Memberships.Remove(r.Context(), principalFrom(r), id, membershipID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) inviteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req membershipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.Memberships.Invite(r.Context(), principalFrom(r), id, req.Email, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Invitation sent to " + inv.Email,
		"expires_at": inv.ExpiresAt,
	})
}

func (h *Handler) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	membership, err := h.Memberships.AcceptInvitation(r.Context(), principalFrom(r), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (h *Handler) createRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec := domain.Recipe{IsAvailable: true}
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	rec.RestaurantID = id
	if err := h.Recipes.Create(r.Context(), principalFrom(r), &rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) getRecipes(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipes, err := h.Recipes.List(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipeID, err := pathInt(r, "recipeId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.Recipes.Get(r.Context(), principalFrom(r), id, recipeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipeID, err := pathInt(r, "recipeId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rec domain.Recipe
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	rec.ID = recipeID
	rec.RestaurantID = id
	if err := h.Recipes.Update(r.Context(), principalFrom(r), &rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipeID, err := pathInt(r, "recipeId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Recipes.Delete(r.Context(), principalFrom(r), id, recipeID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
