package handlers

import (
	"net/http"
	"strconv"

	"github.com/alchemorsel/foodgram/internal/ports/inbound"
)

// Register handles POST /api/users
func (h *APIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.services.Users.Register(r.Context(), inbound.RegisterCommand{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/users/"+strconv.FormatInt(profile.ID, 10))
	h.writeJSON(w, http.StatusCreated, RegisteredUserResponse{
		Email:     profile.Email,
		ID:        profile.ID,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	})
}

// Me handles GET /api/users/me
func (h *APIHandlers) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.services.Users.Me(r.Context(), viewerOf(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userResponse(*profile))
}

// GetUser handles GET /api/users/{id}
func (h *APIHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.services.Users.GetProfile(r.Context(), viewerOf(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userResponse(*profile))
}
