// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/render"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// Services groups the use cases the API exposes
type Services struct {
	Recipes   inbound.RecipeService
	Relations inbound.RelationService
	Shopping  inbound.ShoppingListService
	Users     inbound.UserService
	Catalog   inbound.CatalogService
}

// APIHandlers handles REST API requests
type APIHandlers struct {
	services Services
	logger   *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(services Services, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		services: services,
		logger:   logger.Named("api"),
	}
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	render.JSON(w, status, body)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	render.Error(w, r, h.logger, err)
}

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewNotFoundError("Resource")
	}
	return id, nil
}

// queryInt parses an optional non-negative integer query parameter
func queryInt(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewFieldValidationError(name, name+" must be a non-negative integer")
	}
	return n, nil
}

func pagination(query url.Values) (inbound.PaginationParams, error) {
	page, err := queryInt(query, "page")
	if err != nil {
		return inbound.PaginationParams{}, err
	}
	limit, err := queryInt(query, "limit")
	if err != nil {
		return inbound.PaginationParams{}, err
	}
	return inbound.PaginationParams{Page: page, Limit: limit}, nil
}

// pageResponse builds next and previous links from the request URL
func pageResponse(r *http.Request, total int64, page, limit int, results interface{}) PageResponse {
	resp := PageResponse{Count: total, Results: results}
	if page > 1 {
		prev := pageURL(r, page-1, limit)
		resp.Previous = &prev
	}
	if int64(page*limit) < total {
		next := pageURL(r, page+1, limit)
		resp.Next = &next
	}
	return resp
}

func pageURL(r *http.Request, page, limit int) string {
	u := *r.URL
	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	u.RawQuery = query.Encode()
	return u.RequestURI()
}

func viewerOf(r *http.Request) shared.Viewer {
	return middleware.ViewerFromContext(r.Context())
}
