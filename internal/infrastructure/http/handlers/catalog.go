package handlers

import "net/http"

// ListTags handles GET /api/tags
func (h *APIHandlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.services.Catalog.ListTags(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tagResponses(tags))
}

// GetTag handles GET /api/tags/{id}
func (h *APIHandlers) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tag, err := h.services.Catalog.GetTag(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tagResponse(*tag))
}

// ListIngredients handles GET /api/ingredients?name=<prefix>
func (h *APIHandlers) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.services.Catalog.SearchIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ingredientResponses(ingredients))
}

// GetIngredient handles GET /api/ingredients/{id}
func (h *APIHandlers) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ingredient, err := h.services.Catalog.GetIngredient(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ingredientResponse(*ingredient))
}
