package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// MockRecipeRepository is a mock implementation of outbound.RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeRepository) GetView(ctx context.Context, id int64, viewer shared.Viewer) (*recipe.View, error) {
	args := m.Called(ctx, id, viewer)
	if v := args.Get(0); v != nil {
		return v.(*recipe.View), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, criteria recipe.Criteria, viewer shared.Viewer, page outbound.Page) ([]*recipe.View, int64, error) {
	args := m.Called(ctx, criteria, viewer, page)
	views, _ := args.Get(0).([]*recipe.View)
	return views, args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) GetSummary(ctx context.Context, id int64) (*recipe.Summary, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*recipe.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) SummariesByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]recipe.Summary, map[int64]int64, error) {
	args := m.Called(ctx, authorIDs, limit)
	summaries, _ := args.Get(0).(map[int64][]recipe.Summary)
	counts, _ := args.Get(1).(map[int64]int64)
	return summaries, counts, args.Error(2)
}

// MockIngredientRepository is a mock implementation of outbound.IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) FindByID(ctx context.Context, id int64) (*recipe.Ingredient, error) {
	args := m.Called(ctx, id)
	if i := args.Get(0); i != nil {
		return i.(*recipe.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIngredientRepository) FindByIDs(ctx context.Context, ids []int64) ([]recipe.Ingredient, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]recipe.Ingredient)
	return items, args.Error(1)
}

func (m *MockIngredientRepository) SearchByPrefix(ctx context.Context, prefix string) ([]recipe.Ingredient, error) {
	args := m.Called(ctx, prefix)
	items, _ := args.Get(0).([]recipe.Ingredient)
	return items, args.Error(1)
}

func (m *MockIngredientRepository) Import(ctx context.Context, items []recipe.Ingredient) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

// MockTagRepository is a mock implementation of outbound.TagRepository
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) List(ctx context.Context) ([]recipe.Tag, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]recipe.Tag)
	return tags, args.Error(1)
}

func (m *MockTagRepository) FindByID(ctx context.Context, id int64) (*recipe.Tag, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*recipe.Tag), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTagRepository) FindByIDs(ctx context.Context, ids []int64) ([]recipe.Tag, error) {
	args := m.Called(ctx, ids)
	tags, _ := args.Get(0).([]recipe.Tag)
	return tags, args.Error(1)
}

func (m *MockTagRepository) Import(ctx context.Context, items []recipe.Tag) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

// MockRelationRepository is a mock implementation of outbound.RelationRepository
type MockRelationRepository struct {
	mock.Mock
}

func (m *MockRelationRepository) Add(ctx context.Context, rel relation.Relation) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *MockRelationRepository) Remove(ctx context.Context, kind relation.Kind, userID, targetID int64) error {
	args := m.Called(ctx, kind, userID, targetID)
	return args.Error(0)
}

func (m *MockRelationRepository) Exists(ctx context.Context, kind relation.Kind, userID, targetID int64) (bool, error) {
	args := m.Called(ctx, kind, userID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationRepository) FollowedAmong(ctx context.Context, userID int64, candidateIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, candidateIDs)
	followed, _ := args.Get(0).(map[int64]bool)
	return followed, args.Error(1)
}

// MockShoppingListRepository is a mock implementation of outbound.ShoppingListRepository
type MockShoppingListRepository struct {
	mock.Mock
}

func (m *MockShoppingListRepository) CartRows(ctx context.Context, userID int64) ([]shopping.Row, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]shopping.Row)
	return rows, args.Error(1)
}

// MockUserRepository is a mock implementation of outbound.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListFollowing(ctx context.Context, userID int64, page outbound.Page) ([]*user.User, int64, error) {
	args := m.Called(ctx, userID, page)
	users, _ := args.Get(0).([]*user.User)
	return users, args.Get(1).(int64), args.Error(2)
}

// MockCacheRepository is a mock implementation of outbound.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) {
	m.Called(ctx, events)
}

var (
	_ outbound.RecipeRepository       = (*MockRecipeRepository)(nil)
	_ outbound.IngredientRepository   = (*MockIngredientRepository)(nil)
	_ outbound.TagRepository          = (*MockTagRepository)(nil)
	_ outbound.RelationRepository     = (*MockRelationRepository)(nil)
	_ outbound.ShoppingListRepository = (*MockShoppingListRepository)(nil)
	_ outbound.UserRepository         = (*MockUserRepository)(nil)
	_ outbound.CacheRepository        = (*MockCacheRepository)(nil)
	_ outbound.EventPublisher         = (*MockEventPublisher)(nil)
)
