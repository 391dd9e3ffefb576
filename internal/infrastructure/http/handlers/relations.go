package handlers

import (
	"context"
	"net/http"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
)

type addRecipeFunc func(ctx context.Context, viewer shared.Viewer, recipeID int64) (*recipe.Summary, error)

type removeFunc func(ctx context.Context, viewer shared.Viewer, id int64) error

// AddFavorite handles POST /api/recipes/{id}/favorite
func (h *APIHandlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addToRecipe(w, r, h.services.Relations.AddFavorite)
}

// RemoveFavorite handles DELETE /api/recipes/{id}/favorite
func (h *APIHandlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.services.Relations.RemoveFavorite)
}

// AddToShoppingCart handles POST /api/recipes/{id}/shopping_cart
func (h *APIHandlers) AddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	h.addToRecipe(w, r, h.services.Relations.AddToShoppingCart)
}

// RemoveFromShoppingCart handles DELETE /api/recipes/{id}/shopping_cart
func (h *APIHandlers) RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.services.Relations.RemoveFromShoppingCart)
}

// Subscribe handles POST /api/users/{id}/subscribe
func (h *APIHandlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	recipesLimit, err := queryInt(r.URL.Query(), "recipes_limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sub, err := h.services.Relations.Subscribe(r.Context(), viewerOf(r), id, recipesLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, subscriptionResponse(*sub))
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe
func (h *APIHandlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.services.Relations.Unsubscribe)
}

// ListSubscriptions handles GET /api/users/subscriptions
func (h *APIHandlers) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := pagination(query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	recipesLimit, err := queryInt(query, "recipes_limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.services.Relations.ListSubscriptions(r.Context(), viewerOf(r), params, recipesLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	results := make([]SubscriptionResponse, len(list.Subscriptions))
	for i, sub := range list.Subscriptions {
		results[i] = subscriptionResponse(sub)
	}
	h.writeJSON(w, http.StatusOK, pageResponse(r, list.Total, list.Page, list.Limit, results))
}

func (h *APIHandlers) addToRecipe(w http.ResponseWriter, r *http.Request, add addRecipeFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := add(r.Context(), viewerOf(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, summaryResponse(*summary))
}

func (h *APIHandlers) remove(w http.ResponseWriter, r *http.Request, remove removeFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := remove(r.Context(), viewerOf(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
