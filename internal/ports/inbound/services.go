// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases that the application exposes to the transport layer.
// Every operation receives the acting viewer explicitly.
package inbound

import (
	"context"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	"github.com/alchemorsel/foodgram/internal/domain/user"
)

// RecipeService defines recipe use cases
type RecipeService interface {
	CreateRecipe(ctx context.Context, viewer shared.Viewer, draft recipe.Draft) (*recipe.View, error)
	UpdateRecipe(ctx context.Context, viewer shared.Viewer, recipeID int64, draft recipe.Draft) (*recipe.View, error)
	DeleteRecipe(ctx context.Context, viewer shared.Viewer, recipeID int64) error
	GetRecipe(ctx context.Context, viewer shared.Viewer, recipeID int64) (*recipe.View, error)
	ListRecipes(ctx context.Context, viewer shared.Viewer, filter recipe.Filter, params PaginationParams) (*RecipeList, error)
}

// RelationService defines favorite, shopping cart and follow use cases
type RelationService interface {
	AddFavorite(ctx context.Context, viewer shared.Viewer, recipeID int64) (*recipe.Summary, error)
	RemoveFavorite(ctx context.Context, viewer shared.Viewer, recipeID int64) error
	AddToShoppingCart(ctx context.Context, viewer shared.Viewer, recipeID int64) (*recipe.Summary, error)
	RemoveFromShoppingCart(ctx context.Context, viewer shared.Viewer, recipeID int64) error
	Subscribe(ctx context.Context, viewer shared.Viewer, authorID int64, recipesLimit int) (*Subscription, error)
	Unsubscribe(ctx context.Context, viewer shared.Viewer, authorID int64) error
	ListSubscriptions(ctx context.Context, viewer shared.Viewer, params PaginationParams, recipesLimit int) (*SubscriptionList, error)
}

// ShoppingListService exports the aggregated shopping list
type ShoppingListService interface {
	DownloadShoppingList(ctx context.Context, viewer shared.Viewer) (*shopping.Document, error)
}

// UserService defines account use cases
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*user.Profile, error)
	GetProfile(ctx context.Context, viewer shared.Viewer, userID int64) (*user.Profile, error)
	Me(ctx context.Context, viewer shared.Viewer) (*user.Profile, error)
}

// CatalogService exposes tags and ingredients
type CatalogService interface {
	ListTags(ctx context.Context) ([]recipe.Tag, error)
	GetTag(ctx context.Context, id int64) (*recipe.Tag, error)
	SearchIngredients(ctx context.Context, namePrefix string) ([]recipe.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*recipe.Ingredient, error)
	ImportIngredients(ctx context.Context, rows []IngredientRow) (*ImportReport, error)
	ImportTags(ctx context.Context, rows []TagRow) (*ImportReport, error)
}

// RegisterCommand carries registration input
type RegisterCommand struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// Normalize clamps the page to 1.. and the limit to 1..maxLimit, using
// defaultLimit when none was given.
func (p PaginationParams) Normalize(defaultLimit, maxLimit int) PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the zero-based offset of the page.
func (p PaginationParams) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// RecipeList represents a page of recipes
type RecipeList struct {
	Recipes []*recipe.View
	Total   int64
	Page    int
	Limit   int
}

// Subscription is a followed author with a preview of their recipes
type Subscription struct {
	Author       user.Profile
	Recipes      []recipe.Summary
	RecipesCount int64
}

// SubscriptionList represents a page of subscriptions
type SubscriptionList struct {
	Subscriptions []Subscription
	Total         int64
	Page          int
	Limit         int
}

// IngredientRow is one raw record of an ingredient import
type IngredientRow struct {
	Name            string
	MeasurementUnit string
}

// TagRow is one raw record of a tag import
type TagRow struct {
	Name  string
	Color string
	Slug  string
}

// ImportReport summarizes a catalog import
type ImportReport struct {
	Read    int
	Created int
	Skipped int
	Invalid []string
}
