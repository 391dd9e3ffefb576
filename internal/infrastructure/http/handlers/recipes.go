package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/application/errmap"
	"github.com/alchemorsel/foodgram/internal/domain/recipe"
)

// ListRecipes handles GET /api/recipes
func (h *APIHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := recipe.ParseFilter(query)
	if err != nil {
		h.writeError(w, r, errmap.Repository("parse filter", err))
		return
	}
	params, err := pagination(query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.services.Recipes.ListRecipes(r.Context(), viewerOf(r), filter, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	results := make([]RecipeResponse, len(list.Recipes))
	for i, view := range list.Recipes {
		results[i] = recipeResponse(view)
	}
	h.writeJSON(w, http.StatusOK, pageResponse(r, list.Total, list.Page, list.Limit, results))
}

// GetRecipe handles GET /api/recipes/{id}
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.services.Recipes.GetRecipe(r.Context(), viewerOf(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, recipeResponse(view))
}

// CreateRecipe handles POST /api/recipes
func (h *APIHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.services.Recipes.CreateRecipe(r.Context(), viewerOf(r), req.Draft())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/recipes/"+strconv.FormatInt(view.ID, 10))
	h.writeJSON(w, http.StatusCreated, recipeResponse(view))
}

// UpdateRecipe handles PATCH /api/recipes/{id}. The body replaces the
// recipe as a whole, lists included.
func (h *APIHandlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req RecipeRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.services.Recipes.UpdateRecipe(r.Context(), viewerOf(r), id, req.Draft())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, recipeResponse(view))
}

// DeleteRecipe handles DELETE /api/recipes/{id}
func (h *APIHandlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.services.Recipes.DeleteRecipe(r.Context(), viewerOf(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
func (h *APIHandlers) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	doc, err := h.services.Shopping.DownloadShoppingList(r.Context(), viewerOf(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.Debug("Failed to write shopping list", zap.Error(err))
	}
}
