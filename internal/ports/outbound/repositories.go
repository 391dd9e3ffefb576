// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	"github.com/alchemorsel/foodgram/internal/domain/user"
)

// Page selects a slice of an ordered listing. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// RecipeRepository defines the interface for recipe persistence.
// Create and Update write the recipe row and its full association sets in
// one transaction.
type RecipeRepository interface {
	Create(ctx context.Context, r *recipe.Recipe) error
	Update(ctx context.Context, r *recipe.Recipe) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*recipe.Recipe, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// Read models annotated for viewer
	GetView(ctx context.Context, id int64, viewer shared.Viewer) (*recipe.View, error)
	List(ctx context.Context, criteria recipe.Criteria, viewer shared.Viewer, page Page) ([]*recipe.View, int64, error)
	GetSummary(ctx context.Context, id int64) (*recipe.Summary, error)

	// Summaries of the given authors' recipes ordered by id, at most limit
	// per author when limit > 0, plus per-author totals.
	SummariesByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]recipe.Summary, map[int64]int64, error)
}

// IngredientRepository provides the ingredient catalog
type IngredientRepository interface {
	FindByID(ctx context.Context, id int64) (*recipe.Ingredient, error)
	FindByIDs(ctx context.Context, ids []int64) ([]recipe.Ingredient, error)
	SearchByPrefix(ctx context.Context, prefix string) ([]recipe.Ingredient, error)
	// Import inserts the entries that do not exist yet and reports how many were created.
	Import(ctx context.Context, items []recipe.Ingredient) (int, error)
}

// TagRepository provides the tag catalog
type TagRepository interface {
	List(ctx context.Context) ([]recipe.Tag, error)
	FindByID(ctx context.Context, id int64) (*recipe.Tag, error)
	FindByIDs(ctx context.Context, ids []int64) ([]recipe.Tag, error)
	Import(ctx context.Context, items []recipe.Tag) (int, error)
}

// RelationRepository stores favorites, cart entries and follows.
// Add reports an existing pair as *relation.DuplicateRelationError, including
// when a concurrent writer wins the race; Remove reports a missing pair as
// *relation.NotFoundError.
type RelationRepository interface {
	Add(ctx context.Context, rel relation.Relation) error
	Remove(ctx context.Context, kind relation.Kind, userID, targetID int64) error
	Exists(ctx context.Context, kind relation.Kind, userID, targetID int64) (bool, error)
	// FollowedAmong returns which of candidateIDs userID follows.
	FollowedAmong(ctx context.Context, userID int64, candidateIDs []int64) (map[int64]bool, error)
}

// ShoppingListRepository runs the cart aggregate query
type ShoppingListRepository interface {
	// CartRows returns the viewer's cart ingredients grouped by name and unit
	// with summed amounts.
	CartRows(ctx context.Context, userID int64) ([]shopping.Row, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ListFollowing returns the users followed by userID ordered by id.
	ListFollowing(ctx context.Context, userID int64, page Page) ([]*user.User, int64, error)
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// EventPublisher delivers domain events to in-process subscribers
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent)
}
